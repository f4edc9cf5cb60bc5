package host

import "fmt"

// Component renders a node's markup. Children are mounted with Node.Child
// and their markup is spliced into the parent output.
type Component interface {
	Render(n *Node) string
}

// Func adapts a render function into a Component.
type Func func(n *Node) string

// Render calls f.
func (f Func) Render(n *Node) string {
	return f(n)
}

type namedFunc struct {
	name string
	fn   Func
}

func (c namedFunc) Render(n *Node) string { return c.fn(n) }
func (c namedFunc) Name() string          { return c.name }

// Named wraps fn in a Component reporting name in patches, logs and metrics.
func Named(name string, fn func(n *Node) string) Component {
	return namedFunc{name: name, fn: fn}
}

// componentName returns the display name of c.
func componentName(c Component) string {
	if named, ok := c.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", c)
}
