package reactive

import "errors"

// ErrFlushLimit is the panic value raised when effects keep re-triggering
// each other past maxFlushRounds.
var ErrFlushLimit = errors.New("reactive: effect flush limit exceeded (circular writes?)")

const maxFlushRounds = 100

// Runtime holds the tracking state of one logical thread.
type Runtime struct {
	// listener is what currently records dependencies. nil means reads
	// are untracked.
	listener Listener

	// batchDepth counts nested Batch calls.
	batchDepth int

	// pending accumulates listeners to notify when the outermost batch ends.
	pending []Listener

	// flushing is set while pending listeners are being notified.
	flushing bool
}

// NewRuntime creates an empty runtime.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// setListener swaps the current listener and returns the previous one.
func (rt *Runtime) setListener(l Listener) Listener {
	old := rt.listener
	rt.listener = l
	return old
}

// WithListener runs fn with l recording every cell read.
func (rt *Runtime) WithListener(l Listener, fn func()) {
	old := rt.setListener(l)
	defer rt.setListener(old)
	fn()
}

// Untracked runs fn without recording reads as dependencies.
func (rt *Runtime) Untracked(fn func()) {
	rt.WithListener(nil, fn)
}

// Tracking reports whether a listener is currently recording reads.
func (rt *Runtime) Tracking() bool {
	return rt.listener != nil
}

// Batch groups writes so that every affected listener is notified once,
// after the outermost batch returns. Batches nest.
//
// If fn panics the queued notifications are kept and delivered by the
// next batch that completes.
func (rt *Runtime) Batch(fn func()) {
	rt.batchDepth++
	completed := false
	defer func() {
		rt.batchDepth--
		if completed && rt.batchDepth == 0 {
			rt.flush()
		}
	}()
	fn()
	completed = true
}

// Effect runs fn now and again whenever a cell it read changes.
// The returned function disposes the effect and may be called repeatedly.
func (rt *Runtime) Effect(fn func()) (dispose func()) {
	e := CreateEffect(rt, func() Cleanup {
		fn()
		return nil
	})
	return e.Dispose
}

// queue defers a notification until the current batch ends.
func (rt *Runtime) queue(l Listener) {
	rt.pending = append(rt.pending, l)
}

// flush delivers queued notifications. Listeners that write cells while
// being notified queue more work, which is drained in later rounds.
func (rt *Runtime) flush() {
	if rt.flushing {
		return
	}
	rt.flushing = true
	defer func() { rt.flushing = false }()

	for round := 0; len(rt.pending) > 0; round++ {
		if round >= maxFlushRounds {
			rt.pending = nil
			panic(ErrFlushLimit)
		}

		updates := rt.pending
		rt.pending = nil

		seen := make(map[uint64]bool, len(updates))
		for _, l := range updates {
			id := l.ID()
			if seen[id] {
				continue
			}
			seen[id] = true
			l.MarkDirty()
		}
	}
}
