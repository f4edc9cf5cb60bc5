package host

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
)

// ErrRenderLoop is returned by Flush when nodes keep invalidating each
// other for more than maxFlushRounds passes.
var ErrRenderLoop = errors.New("host: render loop detected")

// ErrUnmounted is returned when a flush is requested on an unmounted tree.
var ErrUnmounted = errors.New("host: tree is not mounted")

const maxFlushRounds = 50

// Patch describes the new markup of a node re-rendered on its own.
type Patch struct {
	NodeID    string `json:"node"`
	Component string `json:"component"`
	HTML      string `json:"html"`
}

// Observer receives render lifecycle notifications.
type Observer interface {
	NodeRendered(n *Node)
	NodeUnmounted(n *Node)
}

// Option configures a Tree.
type Option func(*Tree)

// WithObserver installs an Observer.
func WithObserver(o Observer) Option {
	return func(t *Tree) { t.observer = o }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Tree) { t.logger = l }
}

// WithPatchSink receives a Patch for every node rendered by Flush.
func WithPatchSink(fn func(Patch)) Option {
	return func(t *Tree) { t.onPatch = fn }
}

// WithOnNeedsFlush is called whenever a node is newly scheduled, so the
// owner of the tree can queue a Flush.
func WithOnNeedsFlush(fn func()) Option {
	return func(t *Tree) { t.onNeedsFlush = fn }
}

// Tree tracks the mounted nodes of one root component and the nodes that
// need re-rendering.
type Tree struct {
	root      *Node
	component Component

	dirty    []*Node
	dirtySet map[*Node]bool
	commits  []func()
	ids      uint64
	flushing bool

	observer     Observer
	logger       *slog.Logger
	onPatch      func(Patch)
	onNeedsFlush func()
}

// NewTree creates a tree for root. Nothing renders until Mount.
func NewTree(root Component, opts ...Option) *Tree {
	t := &Tree{
		component: root,
		dirtySet:  make(map[*Node]bool),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Mount renders the root for the first time, commits, and returns the
// full markup. Mounting a mounted tree returns its current markup.
func (t *Tree) Mount() string {
	if t.root != nil && t.root.mounted {
		return t.HTML()
	}
	t.root = newNode(t, nil, "", t.component)
	t.root.render()
	t.commit()
	t.logger.Debug("tree mounted", "root", t.root.name, "id", t.root.id)
	return t.HTML()
}

// Root returns the root node, or nil before Mount.
func (t *Tree) Root() *Node {
	return t.root
}

// HTML returns the markup of the whole tree.
func (t *Tree) HTML() string {
	if t.root == nil {
		return ""
	}
	return wrap(t.root)
}

// Pending reports whether any node awaits re-rendering.
func (t *Tree) Pending() bool {
	return len(t.dirty) > 0
}

// Flush re-renders every invalidated node, shallowest first, then runs the
// commit callbacks of the pass. Nodes already re-rendered by an ancestor in
// the same pass are skipped. It returns the number of nodes flushed.
// A Flush requested while one is running returns immediately; the running
// flush picks up the new work.
func (t *Tree) Flush() (int, error) {
	if t.root == nil || !t.root.mounted {
		return 0, ErrUnmounted
	}
	if t.flushing {
		return 0, nil
	}
	t.flushing = true
	defer func() { t.flushing = false }()

	flushed := 0
	for round := 0; len(t.dirty) > 0; round++ {
		if round >= maxFlushRounds {
			t.dirty = nil
			clear(t.dirtySet)
			return flushed, ErrRenderLoop
		}

		slices.SortStableFunc(t.dirty, func(a, b *Node) int {
			return a.depth - b.depth
		})
		dirty := t.dirty
		t.dirty = nil
		clear(t.dirtySet)

		for _, n := range dirty {
			if !n.mounted || !n.dirty {
				continue
			}
			n.render()
			flushed++
			if t.onPatch != nil {
				t.onPatch(Patch{NodeID: n.id, Component: n.name, HTML: n.HTML()})
			}
		}
		t.commit()
	}
	return flushed, nil
}

// Unmount removes every node, running all unmount cleanups.
func (t *Tree) Unmount() {
	if t.root == nil {
		return
	}
	t.root.unmount()
	t.dirty = nil
	clear(t.dirtySet)
	t.commits = nil
	t.logger.Debug("tree unmounted")
}

// Find returns the first mounted node, in depth-first order, for which
// match returns true.
func (t *Tree) Find(match func(*Node) bool) *Node {
	if t.root == nil {
		return nil
	}
	var walk func(n *Node) *Node
	walk = func(n *Node) *Node {
		if match(n) {
			return n
		}
		for _, c := range n.children {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(t.root)
}

// FindByName returns the first node rendering the named component.
func (t *Tree) FindByName(name string) *Node {
	return t.Find(func(n *Node) bool { return n.name == name })
}

func (t *Tree) schedule(n *Node) {
	n.dirty = true
	if t.dirtySet[n] {
		return
	}
	t.dirtySet[n] = true
	t.dirty = append(t.dirty, n)
	if t.onNeedsFlush != nil {
		t.onNeedsFlush()
	}
}

// rendered queues the node's commit callbacks. Children finish rendering
// before their parent, so their callbacks are queued first.
func (t *Tree) rendered(n *Node) {
	t.commits = append(t.commits, n.commits...)
	n.commits = nil
	if t.observer != nil {
		t.observer.NodeRendered(n)
	}
}

func (t *Tree) unmounted(n *Node) {
	delete(t.dirtySet, n)
	if t.observer != nil {
		t.observer.NodeUnmounted(n)
	}
}

func (t *Tree) commit() {
	for len(t.commits) > 0 {
		commits := t.commits
		t.commits = nil
		for _, fn := range commits {
			fn()
		}
	}
}

func (t *Tree) nextNodeID() string {
	t.ids++
	return "n" + strconv.FormatUint(t.ids, 10)
}
