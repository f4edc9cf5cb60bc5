package reactive

// Effect is a reactive side effect. It runs once when created and again
// whenever a cell it read during its previous run changes.
type Effect struct {
	id uint64
	rt *Runtime

	fn      func() Cleanup
	cleanup Cleanup

	sources dependencies

	ran      bool
	running  bool
	disposed bool
}

var _ Listener = (*Effect)(nil)

// CreateEffect creates an effect on rt and runs it immediately.
//
// Example:
//
//	e := CreateEffect(rt, func() Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return func() { fmt.Println("cleanup") }
//	})
func CreateEffect(rt *Runtime, fn func() Cleanup) *Effect {
	e := &Effect{
		id: nextID(),
		rt: rt,
		fn: fn,
	}
	e.run()
	return e
}

// OnUpdate creates an effect that calls callback only when the cells read
// by deps change, never on the initial run.
func OnUpdate(rt *Runtime, deps func(), callback func()) *Effect {
	first := true
	return CreateEffect(rt, func() Cleanup {
		deps()
		if first {
			first = false
			return nil
		}
		rt.Untracked(callback)
		return nil
	})
}

// MarkDirty re-runs the effect if a source changed since the last run.
// A memo source whose recomputed value is equal does not count.
// Implements Listener.
func (e *Effect) MarkDirty() {
	if e.disposed || e.ran && !e.sources.changed() {
		return
	}
	e.run()
}

// ID implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

// Disposed reports whether Dispose has been called.
func (e *Effect) Disposed() bool {
	return e.disposed
}

// Dispose runs the last cleanup and unsubscribes from every source.
// Calling Dispose more than once is a no-op.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	e.sources.release(e)
	e.sources = nil
}

func (e *Effect) run() {
	if e.disposed || e.running {
		return
	}
	e.running = true
	defer func() { e.running = false }()

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	e.sources.release(e)

	old := e.rt.setListener(e)
	defer e.rt.setListener(old)

	e.ran = true
	e.cleanup = e.fn()
}

func (e *Effect) addSource(source *cellBase) {
	e.sources.add(source)
}
