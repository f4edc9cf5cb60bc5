package sigstore

// sessionSet is whoever must forget a session once it is disposed.
type sessionSet interface {
	remove(s *Session)
}

// Session subscribes one consumer to the cells it read during its latest
// render pass.
//
// Each pass calls Begin to get a fresh View, and Commit once the pass has
// committed. Commit disposes the previous subscription before arming a new
// effect over exactly the recorded cells. The effect's establishing run
// never calls rerender; every later run calls it once.
type Session struct {
	reactor  Reactor
	rerender func()
	opts     options

	// pending is the accessed set of the latest uncommitted pass.
	pending *Recorder

	// cells and dispose describe the live subscription.
	cells   []Cell
	dispose func()

	fires    int
	disposed bool
	set      sessionSet
}

// NewSession returns a session that calls rerender on the reactor's
// notifications. rerender runs untracked.
func NewSession(reactor Reactor, rerender func(), opts ...Option) *Session {
	return &Session{
		reactor:  reactor,
		rerender: rerender,
		opts:     buildOptions(opts),
	}
}

// Begin starts a render pass over cells and returns the view to read
// through. A pass that is never committed leaves the current subscription
// in place.
func (s *Session) Begin(cells Cells) *View {
	s.pending = NewRecorder()
	return NewView(cells, s.pending)
}

// Commit replaces the live subscription with one over the cells recorded
// since the last Begin. It must run after the render pass finished reading.
func (s *Session) Commit() {
	if s.disposed || s.pending == nil {
		return
	}
	rec := s.pending
	s.pending = nil

	s.unsubscribe()

	cells := rec.Cells()
	if len(cells) == 0 {
		return
	}

	armed := false
	s.cells = cells
	s.dispose = s.reactor.Effect(func() {
		for _, c := range cells {
			c.Read()
		}
		if !armed {
			armed = true
			return
		}
		s.fire()
	})
	if s.opts.observer != nil {
		s.opts.observer.SubscriptionEstablished(len(cells))
	}
}

// Dispose stops the live subscription for good. It is safe to call more
// than once.
func (s *Session) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.pending = nil
	s.unsubscribe()
	if s.set != nil {
		set := s.set
		s.set = nil
		set.remove(s)
	}
}

// Active reports whether a subscription is live.
func (s *Session) Active() bool {
	return s.dispose != nil
}

// Disposed reports whether Dispose was called.
func (s *Session) Disposed() bool {
	return s.disposed
}

// Subscribed returns the cells of the live subscription.
func (s *Session) Subscribed() []Cell {
	out := make([]Cell, len(s.cells))
	copy(out, s.cells)
	return out
}

// Fires returns how many re-renders the session has requested.
func (s *Session) Fires() int {
	return s.fires
}

// attach records the set that tracks this session, leaving any previous one.
func (s *Session) attach(set sessionSet) {
	if s.set == set {
		return
	}
	if s.set != nil {
		s.set.remove(s)
	}
	s.set = set
}

func (s *Session) fire() {
	if s.disposed {
		return
	}
	s.fires++
	if s.opts.observer != nil {
		s.opts.observer.RerenderRequested(s.opts.name)
	}
	s.reactor.Untracked(s.rerender)
}

func (s *Session) unsubscribe() {
	if s.dispose == nil {
		return
	}
	dispose := s.dispose
	s.dispose = nil
	s.cells = nil
	dispose()
	if s.opts.observer != nil {
		s.opts.observer.SubscriptionDisposed()
	}
}
