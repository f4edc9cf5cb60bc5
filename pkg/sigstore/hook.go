package sigstore

import "github.com/vango-dev/sigstore/pkg/host"

// UseSignalState returns a tracked view of cells for the render pass of n.
// n re-renders when, and only when, a cell it read through the view during
// its latest committed pass changes.
//
// Re-render requests are labelled with the component name unless opts
// carry a WithName of their own.
//
// It is a hook: call it unconditionally, in the same order, on every render.
func UseSignalState(n *host.Node, reactor Reactor, cells Cells, opts ...Option) *View {
	opts = append([]Option{WithName(n.Name())}, opts...)
	s := useSession(n, reactor, opts)
	return s.Begin(cells)
}

func useSession(n *host.Node, reactor Reactor, opts []Option) *Session {
	s := host.UseRef(n, func() *Session {
		s := NewSession(reactor, n.Invalidate, opts...)
		n.OnUnmount(s.Dispose)
		return s
	})
	n.AfterCommit(s.Commit)
	return s
}
