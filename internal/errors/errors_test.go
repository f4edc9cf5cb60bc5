package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewFromRegistry(t *testing.T) {
	err := New("S001")
	if err.Category != CategoryScope {
		t.Fatalf("Category = %q, want %q", err.Category, CategoryScope)
	}
	if err.Message != "Store used outside provider" {
		t.Fatalf("Message = %q", err.Message)
	}
	if err.Suggestion == "" {
		t.Fatal("registered suggestion not copied")
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("X999")
	if err.Message != "Unknown error" || err.Code != "X999" {
		t.Fatalf("New(X999) = %+v", err)
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"code only", New("S002"), "S002: No such tracked field"},
		{"detail", New("S002").WithDetail(`field "x"`), `S002: No such tracked field (field "x")`},
		{"wrapped", New("C002").Wrap(fmt.Errorf("boom")), "C002: Config file could not be read: boom"},
		{"uncoded", Newf(CategoryCLI, "bad %s", "flag"), "bad flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("render: %w", New("S001").WithDetail("x"))
	if !stderrors.Is(err, New("S001")) {
		t.Fatal("errors.Is did not match same code")
	}
	if stderrors.Is(err, New("S002")) {
		t.Fatal("errors.Is matched a different code")
	}
	if CodeOf(err) != "S001" {
		t.Fatalf("CodeOf = %q", CodeOf(err))
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Fatal("CodeOf(plain) should be empty")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "C001") != nil {
		t.Fatal("FromError(nil) != nil")
	}
	orig := New("S001")
	if got := FromError(fmt.Errorf("wrap: %w", orig), "C001"); got != orig {
		t.Fatal("FromError did not return the wrapped *Error")
	}
	plain := fmt.Errorf("plain")
	got := FromError(plain, "C001")
	if got.Code != "C001" || !stderrors.Is(got, plain) {
		t.Fatalf("FromError(plain) = %+v", got)
	}
}

func TestFormat(t *testing.T) {
	defer SetColor(SetColor(false))

	out := New("S001").WithDetail(`store "demo" used by ABC`).Format()
	for _, want := range []string{"ERROR S001: Store used outside provider", `store "demo" used by ABC`, "Hint: "} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestPrint(t *testing.T) {
	defer SetColor(SetColor(false))

	var buf bytes.Buffer
	Print(&buf, fmt.Errorf("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Fatalf("Print(plain) = %q", buf.String())
	}
	buf.Reset()
	Print(&buf, New("P002"))
	if !strings.Contains(buf.String(), "P002") {
		t.Fatalf("Print(coded) = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Fatalf("line %q longer than 20", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Fatal("wrapText(\"\") should be nil")
	}
}

func TestCodesSorted(t *testing.T) {
	codes := Codes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("Codes() not sorted: %v", codes)
		}
	}
	if _, ok := Lookup("S001"); !ok {
		t.Fatal("Lookup(S001) missing")
	}
}
