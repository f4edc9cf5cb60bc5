package reactive

// Signal is a mutable reactive cell.
// Reading it with Get while an effect or memo runs subscribes that listener
// to later writes.
type Signal[T any] struct {
	base  cellBase
	value T

	// equal decides whether a write changes the value. nil uses defaultEquals.
	equal func(T, T) bool
}

var _ Cell = (*Signal[int])(nil)

// NewSignal creates a signal owned by rt.
func NewSignal[T any](rt *Runtime, initial T) *Signal[T] {
	return &Signal[T]{
		base:  newCellBase(rt),
		value: initial,
	}
}

// Get returns the current value and subscribes the current listener.
func (s *Signal[T]) Get() T {
	s.base.track()
	return s.value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	return s.value
}

// Read implements Cell.
func (s *Signal[T]) Read() any {
	return s.Get()
}

// Set stores value and notifies dependents when it differs from the
// current value.
func (s *Signal[T]) Set(value T) {
	if s.equals(s.value, value) {
		return
	}
	s.value = value
	s.base.version++
	s.base.rt.Batch(s.base.notifySubscribers)
}

// Update replaces the value with fn(current).
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.value))
}

// WithEquals configures a custom equality function and returns s.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

// Runtime returns the runtime the signal belongs to.
func (s *Signal[T]) Runtime() *Runtime {
	return s.base.rt
}

// SubscriberCount returns how many listeners currently depend on s.
func (s *Signal[T]) SubscriberCount() int {
	return s.base.subscriberCount()
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}
