package sigstore

import (
	"fmt"

	"github.com/vango-dev/sigstore/pkg/host"
)

// ScopeState is the lifecycle state of a provider's scope.
type ScopeState int

const (
	ScopeUnmounted ScopeState = iota
	ScopeActivating
	ScopeActive
	ScopeDeactivating
)

// String returns a human-readable name for the state.
func (s ScopeState) String() string {
	switch s {
	case ScopeUnmounted:
		return "unmounted"
	case ScopeActivating:
		return "activating"
	case ScopeActive:
		return "active"
	case ScopeDeactivating:
		return "deactivating"
	default:
		return fmt.Sprintf("ScopeState(%d)", int(s))
	}
}

// Factory builds a store instance. It runs once per provider mount and
// must not call hooks on n.
type Factory[A any, S Instance] func(n *host.Node, args A) S

// Definition is a store type that can be provided to subtrees.
type Definition[A any, S Instance] struct {
	name    string
	factory Factory[A, S]
	opts    options

	// key identifies the definition among a node's ambient values.
	key *Definition[A, S]
}

// Define declares a store. name appears in errors, logs and metrics.
func Define[A any, S Instance](name string, factory Factory[A, S], opts ...Option) *Definition[A, S] {
	d := &Definition[A, S]{
		name:    name,
		factory: factory,
		opts:    buildOptions(opts),
	}
	d.key = d
	return d
}

// Name returns the store name.
func (d *Definition[A, S]) Name() string {
	return d.name
}

// Scope is one provider mount of a Definition: the store instance shared
// with the provider's subtree, and the sessions bound to it.
type Scope[S Instance] struct {
	store    string
	state    ScopeState
	instance S
	node     *host.Node
	sessions map[*Session]struct{}
	opts     options
}

// State returns the lifecycle state.
func (s *Scope[S]) State() ScopeState {
	return s.state
}

// Instance returns the store instance built for this mount.
func (s *Scope[S]) Instance() S {
	return s.instance
}

// Node returns the provider node.
func (s *Scope[S]) Node() *host.Node {
	return s.node
}

// Sessions returns how many live sessions are bound to the scope.
func (s *Scope[S]) Sessions() int {
	return len(s.sessions)
}

func (s *Scope[S]) add(sess *Session) {
	if s.state != ScopeActive {
		return
	}
	s.sessions[sess] = struct{}{}
	sess.attach(s)
}

func (s *Scope[S]) remove(sess *Session) {
	delete(s.sessions, sess)
}

// deactivate disposes every session still bound to the scope.
func (s *Scope[S]) deactivate() {
	if s.state != ScopeActive {
		return
	}
	s.state = ScopeDeactivating
	for sess := range s.sessions {
		sess.Dispose()
	}
	clear(s.sessions)
	s.state = ScopeUnmounted

	s.opts.logger.Debug("store scope deactivated", "store", s.store, "node", s.node.ID())
	if s.opts.observer != nil {
		s.opts.observer.ScopeDeactivated(s.store)
	}
}

// Provide activates the store for n's subtree and returns the instance.
// The factory runs on the first render of n only; later renders return the
// same instance and ignore args. The scope deactivates when n unmounts.
//
// Provide is a hook: call it unconditionally from the provider's render.
func (d *Definition[A, S]) Provide(n *host.Node, args A) S {
	scope := host.UseRef(n, func() *Scope[S] {
		scope := &Scope[S]{
			store:    d.name,
			state:    ScopeActivating,
			node:     n,
			sessions: make(map[*Session]struct{}),
			opts:     d.opts,
		}
		scope.instance = d.factory(n, args)
		scope.state = ScopeActive
		n.OnUnmount(scope.deactivate)

		d.opts.logger.Debug("store scope activated", "store", d.name, "node", n.ID())
		if d.opts.observer != nil {
			d.opts.observer.ScopeActivated(d.name)
		}
		return scope
	})
	n.Provide(d.key, scope)
	return scope.instance
}

// Provider returns a component that provides the store built from args
// and renders children inside its scope.
func (d *Definition[A, S]) Provider(args A, children ...host.Component) host.Component {
	return host.Named(d.name+".Provider", func(n *host.Node) string {
		d.Provide(n, args)
		out := ""
		for i, child := range children {
			out += n.Child(fmt.Sprint(i), child)
		}
		return out
	})
}

// ScopeOf returns the nearest scope of d enclosing n.
func (d *Definition[A, S]) ScopeOf(n *host.Node) (*Scope[S], error) {
	v, ok := n.Lookup(d.key)
	if !ok {
		return nil, newScopeError(d.name, n.Path(), false)
	}
	scope := v.(*Scope[S])
	if scope.state != ScopeActive {
		return nil, newScopeError(d.name, n.Path(), true)
	}
	return scope, nil
}

// Lookup returns the instance of the nearest enclosing provider, or a
// *ScopeError when there is none.
func (d *Definition[A, S]) Lookup(n *host.Node) (S, error) {
	scope, err := d.ScopeOf(n)
	if err != nil {
		var zero S
		return zero, err
	}
	return scope.instance, nil
}

// Use is Lookup for render functions: it panics with the *ScopeError.
func (d *Definition[A, S]) Use(n *host.Node) S {
	s, err := d.Lookup(n)
	if err != nil {
		panic(err)
	}
	return s
}

// Bound is a store instance as seen by one render pass: the instance with
// its untracked fields and actions, and a tracked view of its cells.
type Bound[S Instance] struct {
	Store   S
	Signals *View
}

// TryBind looks up the enclosing store and subscribes n to the cells it
// reads through the returned view during this pass. The lookup happens
// before any hook state is touched, so a *ScopeError leaves n unchanged.
func (d *Definition[A, S]) TryBind(n *host.Node) (Bound[S], error) {
	scope, err := d.ScopeOf(n)
	if err != nil {
		return Bound[S]{}, err
	}

	opts := []Option{WithName(n.Name()), WithLogger(d.opts.logger)}
	if d.opts.observer != nil {
		opts = append(opts, WithObserver(d.opts.observer))
	}
	sess := useSession(n, scope.instance.Reactor(), opts)
	scope.add(sess)

	return Bound[S]{
		Store:   scope.instance,
		Signals: sess.Begin(scope.instance.Signals()),
	}, nil
}

// Bind is TryBind for render functions: it panics with the *ScopeError.
//
// Bind is a hook: call it unconditionally, in the same order, on every render.
func (d *Definition[A, S]) Bind(n *host.Node) Bound[S] {
	b, err := d.TryBind(n)
	if err != nil {
		panic(err)
	}
	return b
}
