package reactive

import "sync/atomic"

// Listener is anything that can be notified when a dependency changes.
// Implemented by memos and effects.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	MarkDirty()

	// ID returns a unique identifier used for deduplication.
	ID() uint64
}

// Cleanup is returned by effects and runs before the next run and on dispose.
type Cleanup func()

// Cell is the type-erased view of a Signal or Memo.
// Two Cell values with the same ID are the same dependency.
type Cell interface {
	ID() uint64

	// Read returns the current value, tracking it like Get.
	Read() any
}

// sourceTracker is implemented by listeners that remember their sources
// so they can unsubscribe before re-running.
type sourceTracker interface {
	addSource(source *cellBase)
}

var globalIDCounter uint64

// nextID returns the next unique ID for a reactive primitive.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
