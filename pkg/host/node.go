package host

import (
	"fmt"
	"strings"
)

// Node is a mounted component instance. It owns its children, ambient
// values, hook slots and unmount cleanups.
type Node struct {
	id    string
	key   string
	name  string
	depth int

	tree      *Tree
	parent    *Node
	children  []*Node
	component Component

	// values are ambient values provided to this node's subtree.
	values map[any]any

	// slots hold per-mount hook state, indexed by call order within render.
	slots   []any
	slotIdx int

	cleanups []func()
	commits  []func()

	// seen collects children referenced during the current render pass.
	seen      map[*Node]bool
	rendering bool

	html    string
	dirty   bool
	renders int
	mounted bool
}

func newNode(tree *Tree, parent *Node, key string, c Component) *Node {
	n := &Node{
		id:        tree.nextNodeID(),
		key:       key,
		name:      componentName(c),
		tree:      tree,
		parent:    parent,
		component: c,
		mounted:   true,
	}
	if parent != nil {
		n.depth = parent.depth + 1
		parent.children = append(parent.children, n)
	}
	return n
}

// ID returns the node's DOM identifier, unique within its tree.
func (n *Node) ID() string { return n.id }

// Key returns the key the parent mounted this node under.
func (n *Node) Key() string { return n.key }

// Name returns the component name.
func (n *Node) Name() string { return n.name }

// Depth returns the distance from the root (root is 0).
func (n *Node) Depth() int { return n.depth }

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Tree returns the tree the node belongs to.
func (n *Node) Tree() *Tree { return n.tree }

// Children returns a copy of the mounted children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Renders returns how many times the node has rendered.
func (n *Node) Renders() int { return n.renders }

// Mounted reports whether the node is still part of its tree.
func (n *Node) Mounted() bool { return n.mounted }

// Rendering reports whether the node's render function is running.
func (n *Node) Rendering() bool { return n.rendering }

// Provide publishes value under key to this node and its descendants.
// A descendant providing the same key shadows it for its own subtree.
func (n *Node) Provide(key, value any) {
	if !n.mounted {
		return
	}
	if n.values == nil {
		n.values = make(map[any]any)
	}
	n.values[key] = value
}

// Lookup returns the value provided under key by the nearest node on the
// path from n to the root, n included.
func (n *Node) Lookup(key any) (any, bool) {
	for cur := n; cur != nil; cur = cur.parent {
		if v, ok := cur.values[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Path returns the chain of component names from the root to n.
func (n *Node) Path() []string {
	var path []string
	for cur := n; cur != nil; cur = cur.parent {
		path = append(path, cur.name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// UseSlot returns the value stored in the next hook slot and true, or nil
// and false on the first render to reach this slot. The caller must then
// store the initial value with SetSlot.
func (n *Node) UseSlot() (any, bool) {
	idx := n.slotIdx
	n.slotIdx++
	if idx < len(n.slots) {
		return n.slots[idx], true
	}
	return nil, false
}

// SetSlot stores the value for the slot most recently returned empty by UseSlot.
func (n *Node) SetSlot(value any) {
	n.slots = append(n.slots, value)
}

// UseRef returns per-mount state. init runs on the first render only.
func UseRef[T any](n *Node, init func() T) T {
	if v, ok := n.UseSlot(); ok {
		ref, ok := v.(T)
		if !ok {
			panic(fmt.Sprintf("host: hook slot type mismatch in %s: have %T", n.name, v))
		}
		return ref
	}
	ref := init()
	n.SetSlot(ref)
	return ref
}

// AfterCommit registers fn to run once after the current render pass has
// been committed. Callbacks of children run before those of their parents.
func (n *Node) AfterCommit(fn func()) {
	n.commits = append(n.commits, fn)
}

// OnUnmount registers fn to run when the node is removed from the tree.
// Cleanups run in reverse registration order after the children unmounted.
func (n *Node) OnUnmount(fn func()) {
	if !n.mounted {
		fn()
		return
	}
	n.cleanups = append(n.cleanups, fn)
}

// Invalidate requests a re-render of n. Requests coalesce until the node
// renders again.
func (n *Node) Invalidate() {
	if !n.mounted {
		return
	}
	n.tree.schedule(n)
}

// Child mounts c under key, or re-renders the child previously mounted
// under key, and returns a placeholder for its markup. Must be called
// during n's render.
func (n *Node) Child(key string, c Component) string {
	if !n.rendering {
		panic(fmt.Sprintf("host: Child(%q) called outside render of %s", key, n.name))
	}

	var child *Node
	for _, existing := range n.children {
		if existing.key == key {
			child = existing
			break
		}
	}
	if child == nil {
		child = newNode(n.tree, n, key, c)
	} else {
		child.component = c
	}
	n.seen[child] = true
	child.render()
	return placeholder(child)
}

// HTML returns the node's current markup with every child expanded.
func (n *Node) HTML() string {
	if len(n.children) == 0 {
		return n.html
	}
	pairs := make([]string, 0, 2*len(n.children))
	for _, child := range n.children {
		pairs = append(pairs, placeholder(child), wrap(child))
	}
	return strings.NewReplacer(pairs...).Replace(n.html)
}

func placeholder(n *Node) string {
	return "<!--node:" + n.id + "-->"
}

func wrap(n *Node) string {
	return `<div id="` + n.id + `" data-component="` + n.name + `">` + n.HTML() + `</div>`
}

// render runs the component and reconciles children.
func (n *Node) render() {
	if !n.mounted {
		return
	}

	n.rendering = true
	n.dirty = false
	n.slotIdx = 0
	n.seen = make(map[*Node]bool)
	n.commits = nil
	html := func() string {
		defer func() { n.rendering = false }()
		return n.component.Render(n)
	}()

	var stale []*Node
	for _, child := range n.children {
		if !n.seen[child] {
			stale = append(stale, child)
		}
	}
	for i := len(stale) - 1; i >= 0; i-- {
		stale[i].unmount()
	}
	n.seen = nil

	n.html = html
	n.renders++
	n.tree.rendered(n)
}

// unmount disposes children first, then runs cleanups in reverse order.
func (n *Node) unmount() {
	if !n.mounted {
		return
	}
	n.mounted = false

	children := n.children
	n.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].unmount()
	}

	cleanups := n.cleanups
	n.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.values = nil
	n.commits = nil
	n.tree.unmounted(n)
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}
