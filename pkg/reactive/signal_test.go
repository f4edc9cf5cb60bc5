package reactive

import "testing"

// testListener records notifications without re-reading anything.
type testListener struct {
	id    uint64
	dirty int
}

func newTestListener() *testListener {
	return &testListener{id: nextID()}
}

func (l *testListener) MarkDirty() { l.dirty++ }
func (l *testListener) ID() uint64 { return l.id }

func TestSignalGetSet(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 1)

	if got := s.Get(); got != 1 {
		t.Fatalf("Get() = %d, want 1", got)
	}
	s.Set(2)
	if got := s.Peek(); got != 2 {
		t.Fatalf("Peek() = %d, want 2", got)
	}
	s.Update(func(n int) int { return n * 10 })
	if got := s.Get(); got != 20 {
		t.Fatalf("Get() after Update = %d, want 20", got)
	}
}

func TestSignalTracksOnlyWithListener(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, "x")

	_ = s.Get()
	if n := s.SubscriberCount(); n != 0 {
		t.Fatalf("untracked read subscribed %d listeners", n)
	}

	l := newTestListener()
	rt.WithListener(l, func() {
		_ = s.Get()
		_ = s.Get()
	})
	if n := s.SubscriberCount(); n != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", n)
	}

	s.Set("y")
	if l.dirty != 1 {
		t.Fatalf("listener notified %d times, want 1", l.dirty)
	}
}

func TestSignalEqualWriteDoesNotNotify(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 3)
	l := newTestListener()
	rt.WithListener(l, func() { _ = s.Get() })

	s.Set(3)
	if l.dirty != 0 {
		t.Fatalf("equal write notified %d times", l.dirty)
	}
}

func TestSignalWithEquals(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, []int{1}).WithEquals(func(a, b []int) bool { return len(a) == len(b) })
	l := newTestListener()
	rt.WithListener(l, func() { _ = s.Get() })

	s.Set([]int{2})
	if l.dirty != 0 {
		t.Fatalf("custom-equal write notified %d times", l.dirty)
	}
	s.Set([]int{1, 2})
	if l.dirty != 1 {
		t.Fatalf("notified %d times, want 1", l.dirty)
	}
}

func TestSignalPeekDoesNotTrack(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)
	l := newTestListener()
	rt.WithListener(l, func() { _ = s.Peek() })

	if n := s.SubscriberCount(); n != 0 {
		t.Fatalf("Peek subscribed %d listeners", n)
	}
}

func TestUntracked(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)
	l := newTestListener()
	rt.WithListener(l, func() {
		rt.Untracked(func() { _ = s.Get() })
		if !rt.Tracking() {
			t.Error("listener not restored after Untracked")
		}
	})

	if n := s.SubscriberCount(); n != 0 {
		t.Fatalf("Untracked read subscribed %d listeners", n)
	}
}

func TestNewSignalNilRuntimePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil runtime")
		}
	}()
	NewSignal[int](nil, 0)
}
