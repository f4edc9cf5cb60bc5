package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

type style string

const (
	styleReset style = "\033[0m"
	styleError style = "\033[1;31m"
	styleHint  style = "\033[36m"
)

// detailWidth is the column at which Detail text is wrapped.
const detailWidth = 70

var useColor = true

// SetColor turns ANSI styling of Format and Print on or off and returns
// the previous setting.
func SetColor(on bool) (previous bool) {
	previous, useColor = useColor, on
	return previous
}

func paint(s style, text string) string {
	if !useColor {
		return text
	}
	return string(s) + text + string(styleReset)
}

// Format renders the error as a multi-line block for terminals.
func (e *Error) Format() string {
	var b strings.Builder

	heading := "ERROR:"
	if e.Code != "" {
		heading = "ERROR " + e.Code + ":"
	}
	fmt.Fprintf(&b, "\n%s %s\n\n", paint(styleError, heading), e.Message)

	if lines := wrapText(e.Detail, detailWidth); len(lines) > 0 {
		for _, line := range lines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteByte('\n')
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  caused by: %v\n\n", e.Wrapped)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s %s\n\n", paint(styleHint, "Hint:"), e.Suggestion)
	}
	return b.String()
}

// wrapText splits text into lines of at most width bytes, breaking at
// spaces. A single word longer than width gets a line of its own.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := []string{words[0]}
	for _, word := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(word) > width {
			lines = append(lines, word)
			continue
		}
		*last += " " + word
	}
	return lines
}

// Print writes err to w. Coded errors, including wrapped ones, use Format.
func Print(w io.Writer, err error) {
	var e *Error
	if stderrors.As(err, &e) {
		io.WriteString(w, e.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %v\n\n", paint(styleError, "ERROR:"), err)
}
