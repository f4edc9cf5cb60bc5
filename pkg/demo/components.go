package demo

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/vango-dev/sigstore/pkg/host"
)

// App returns the root component: it provides the demo store built from
// args and lays out the demo.
func (d *Definitions) App(args Args) host.Component {
	return host.Named("App", func(n *host.Node) string {
		d.Demo.Provide(n, args)
		return `<main class="demo">` +
			n.Child("name", d.name()) +
			n.Child("time", d.time()) +
			n.Child("abc", d.abc()) +
			`</main>` +
			n.Child("logs", d.logPanel())
	})
}

func (d *Definitions) name() host.Component {
	return host.Named("Name", func(n *host.Node) string {
		s := d.Demo.Bind(n)
		s.Store.Log("Rendered Name")
		name := NameField.Get(s.Signals)
		return `<div class="name">` +
			n.Child("provider", d.Names.Provider(struct{}{}, d.nameDisplay())) +
			`<label>Change the name: <input data-action="setName" value="` + html.EscapeString(name) + `"></label>` +
			`</div>`
	})
}

func (d *Definitions) nameDisplay() host.Component {
	return host.Named("NameDisplay", func(n *host.Node) string {
		s := d.Names.Bind(n)
		return "<h1>Hello, " + html.EscapeString(ShowedNameField.Get(s.Signals)) + "</h1>"
	})
}

func (d *Definitions) time() host.Component {
	return host.Named("Time", func(n *host.Node) string {
		s := d.Demo.Bind(n)
		s.Store.Log("Rendered Time")
		now := CurrentTimeField.Get(s.Signals)
		return "<div>Current time: " + now.Format("15:04:05") + "</div>"
	})
}

func (d *Definitions) abc() host.Component {
	return host.Named("ABC", func(n *host.Node) string {
		s := d.Demo.Bind(n)
		s.Store.Log("Rendered ABC")

		var shown string
		if ShowBorCField.Get(s.Signals) == "b" {
			shown = fmt.Sprintf(`<div class="b">Value of B: %d</div>`, BField.Get(s.Signals))
		} else {
			shown = fmt.Sprintf(`<div class="c">Value of C: %d</div>`, CField.Get(s.Signals))
		}
		return `<div class="abc">` +
			`<button data-action="randomA">Random A</button>` +
			`<button data-action="randomEverything">Random All</button>` +
			`<button data-action="randomB">Random B</button>` +
			`<button data-action="randomC">Random C</button>` +
			fmt.Sprintf(`<div class="a">Value of A: %d</div>`, AField.Get(s.Signals)) +
			shown +
			`</div>`
	})
}

// logPanel renders the log without logging itself.
func (d *Definitions) logPanel() host.Component {
	return host.Named("LogPanel", func(n *host.Node) string {
		s := d.Demo.Bind(n)
		logs := LogsField.Get(s.Signals)

		var b strings.Builder
		b.WriteString(`<ul id="logs">`)
		for i, entry := range logs {
			class := ""
			if strings.Contains(entry.Message, "ABC") {
				class = ` class="highlight"`
			}
			opacity := math.Min(math.Pow(math.Max(float64(i+12-len(logs)), 1)/10, 0.9), 1)
			fmt.Fprintf(&b, `<li data-seq="%d"%s style="opacity:%.2f">%s</li>`,
				entry.Seq, class, opacity, html.EscapeString(entry.Message))
		}
		b.WriteString(`</ul>`)
		return b.String()
	})
}
