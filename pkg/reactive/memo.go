package reactive

// Memo is a cached derived cell. It computes lazily on first read and
// recomputes on the next read after any of its sources changed.
//
// A source change marks the memo stale and tells its dependents to check
// it. The memo's version only advances when the recomputed value differs
// from the cached one, so dependents of an unchanged memo do not re-run.
type Memo[T any] struct {
	base    cellBase
	compute func() T
	value   T

	// equal decides whether a recomputed value is a change. nil uses
	// defaultEquals.
	equal func(T, T) bool

	// computed is set after the first computation.
	computed bool

	// stale is set when a source may have changed since the last computation.
	stale bool

	sources dependencies

	// computing guards against a memo that reads itself.
	computing bool
}

var (
	_ Cell        = (*Memo[int])(nil)
	_ Listener    = (*Memo[int])(nil)
	_ invalidator = (*Memo[int])(nil)
)

// NewMemo creates a memo owned by rt. compute does not run until the first read.
func NewMemo[T any](rt *Runtime, compute func() T) *Memo[T] {
	m := &Memo[T]{
		base:    newCellBase(rt),
		compute: compute,
	}
	m.base.refresh = m.refresh
	return m
}

// WithEquals configures a custom equality function and returns m.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.equal = fn
	return m
}

// Get returns the memo's value, recomputing if needed, and subscribes the
// current listener.
func (m *Memo[T]) Get() T {
	m.refresh()
	m.base.track()
	return m.value
}

// Peek returns the value without subscribing. It still recomputes when stale.
func (m *Memo[T]) Peek() T {
	m.refresh()
	return m.value
}

// Read implements Cell.
func (m *Memo[T]) Read() any {
	return m.Get()
}

// ID returns the unique identifier for this memo.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

// MarkDirty implements Listener.
func (m *Memo[T]) MarkDirty() {
	m.invalidate()
}

// SubscriberCount returns how many listeners currently depend on m.
func (m *Memo[T]) SubscriberCount() int {
	return m.base.subscriberCount()
}

// Version returns a counter that increases whenever the memo's value
// changes.
func (m *Memo[T]) Version() uint64 {
	m.refresh()
	return m.base.version
}

func (m *Memo[T]) invalidate() {
	if !m.computed || m.stale {
		return
	}
	m.stale = true
	m.base.notifySubscribers()
}

// refresh recomputes the memo if it was never computed, or if it is stale
// and one of its sources really changed.
func (m *Memo[T]) refresh() {
	if m.computing {
		return
	}
	if m.computed && !m.stale {
		return
	}
	if m.computed && !m.sources.changed() {
		m.stale = false
		return
	}
	m.recompute()
}

func (m *Memo[T]) addSource(source *cellBase) {
	m.sources.add(source)
}

func (m *Memo[T]) recompute() {
	m.computing = true
	defer func() { m.computing = false }()

	m.sources.release(m)

	old := m.base.rt.setListener(m)
	defer m.base.rt.setListener(old)

	next := m.compute()
	if !m.computed || !m.equals(m.value, next) {
		m.value = next
		m.base.version++
	}
	m.computed = true
	m.stale = false
}

func (m *Memo[T]) equals(a, b T) bool {
	if m.equal != nil {
		return m.equal(a, b)
	}
	return defaultEquals(a, b)
}
