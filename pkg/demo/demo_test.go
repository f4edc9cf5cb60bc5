package demo

import (
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/sigstore/internal/errors"
	"github.com/vango-dev/sigstore/pkg/host"
	"github.com/vango-dev/sigstore/pkg/reactive"
)

var start = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// sequence returns a Rand that yields vals in order, then repeats the last.
func sequence(vals ...int) func(int) int {
	i := 0
	return func(n int) int {
		v := vals[min(i, len(vals)-1)]
		i++
		return v % n
	}
}

type harness struct {
	t     *testing.T
	defs  *Definitions
	tree  *host.Tree
	store *Store
}

func newHarness(t *testing.T, rand func(int) int) *harness {
	t.Helper()
	defs := NewDefinitions()
	tree := host.NewTree(defs.App(Args{
		Runtime:     reactive.NewRuntime(),
		InitialName: "Solid",
		Now:         start,
		Rand:        rand,
	}))
	tree.Mount()
	return &harness{
		t:     t,
		defs:  defs,
		tree:  tree,
		store: defs.Demo.Use(tree.FindByName("ABC")),
	}
}

func (h *harness) flush() {
	h.t.Helper()
	if _, err := h.tree.Flush(); err != nil {
		h.t.Fatalf("Flush() error: %v", err)
	}
}

func (h *harness) renders() map[string]int {
	counts := map[string]int{}
	for _, name := range []string{"App", "Name", "NameDisplay", "Time", "ABC", "LogPanel"} {
		if n := h.tree.FindByName(name); n != nil {
			counts[name] = n.Renders()
		}
	}
	return counts
}

// expectRerendered checks which components rendered since before.
func (h *harness) expectRerendered(before map[string]int, want ...string) {
	h.t.Helper()
	after := h.renders()
	rerendered := map[string]bool{}
	for _, name := range want {
		rerendered[name] = true
	}
	for name, n := range after {
		got := n - before[name]
		if rerendered[name] && got != 1 {
			h.t.Errorf("%s rendered %d times, want 1", name, got)
		}
		if !rerendered[name] && got != 0 {
			h.t.Errorf("%s rendered %d times, want 0", name, got)
		}
	}
}

func TestMount(t *testing.T) {
	h := newHarness(t, sequence(0))

	for name, n := range h.renders() {
		if n != 1 {
			t.Errorf("%s rendered %d times on mount, want 1", name, n)
		}
	}
	if h.tree.Pending() {
		t.Fatal("mount left re-renders pending")
	}

	html := h.tree.HTML()
	for _, want := range []string{
		"Hello, React",
		`value="Solid"`,
		"Current time: 03:04:05",
		"Value of A: 1",
		"Value of C: 3",
		"Rendered Name",
		"Rendered ABC",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML() missing %q", want)
		}
	}
	if strings.Contains(html, "Value of B") {
		t.Error("B shown while a is odd")
	}

	logs := h.store.Logs.Peek()
	var messages []string
	for _, e := range logs {
		messages = append(messages, e.Message)
	}
	if got := strings.Join(messages, ","); got != "Rendered Name,Rendered Time,Rendered ABC" {
		t.Fatalf("logs = %s", got)
	}
}

func TestHiddenValueDoesNotRerender(t *testing.T) {
	h := newHarness(t, sequence(4, 7))

	before := h.renders()
	h.store.RandomB()
	h.flush()
	h.expectRerendered(before)

	before = h.renders()
	h.store.RandomC()
	h.flush()
	h.expectRerendered(before, "ABC", "LogPanel")
	if !strings.Contains(h.tree.HTML(), "Value of C: 7") {
		t.Fatalf("HTML() = %s", h.tree.HTML())
	}
}

func TestSwitchingShownValue(t *testing.T) {
	h := newHarness(t, sequence(2, 8, 9))

	before := h.renders()
	h.store.RandomA()
	h.flush()
	h.expectRerendered(before, "ABC", "LogPanel")
	if !strings.Contains(h.tree.HTML(), "Value of B: 2") {
		t.Fatalf("HTML() = %s", h.tree.HTML())
	}

	before = h.renders()
	h.store.RandomB()
	h.flush()
	h.expectRerendered(before, "ABC", "LogPanel")

	before = h.renders()
	h.store.RandomC()
	h.flush()
	h.expectRerendered(before)
}

func TestRandomEverythingRendersOnce(t *testing.T) {
	h := newHarness(t, sequence(5, 6, 7))

	n := h.tree.FindByName("ABC")
	before := n.Renders()
	h.store.RandomEverything()
	if !h.tree.Pending() {
		t.Fatal("RandomEverything did not schedule ABC")
	}
	h.flush()

	if n.Renders() != before+1 {
		t.Fatalf("ABC renders = %d, want %d", n.Renders(), before+1)
	}
	if !strings.Contains(h.tree.HTML(), "Value of A: 5") || !strings.Contains(h.tree.HTML(), "Value of C: 7") {
		t.Fatalf("HTML() = %s", h.tree.HTML())
	}
}

func TestNameChanges(t *testing.T) {
	h := newHarness(t, sequence(0))

	before := h.renders()
	h.store.SetName("Vue <3")
	h.flush()
	h.expectRerendered(before, "Name", "NameDisplay", "LogPanel")
	if !strings.Contains(h.tree.HTML(), "Hello, Vue &lt;3") {
		t.Fatalf("HTML() = %s", h.tree.HTML())
	}

	h.store.SetName("Solid")
	h.flush()
	if !strings.Contains(h.tree.HTML(), "Hello, React") {
		t.Fatalf("HTML() = %s", h.tree.HTML())
	}
	if h.defs.Builds() != 1 {
		t.Fatalf("Builds() = %d, want 1", h.defs.Builds())
	}
}

func TestTickRerendersTimeOnly(t *testing.T) {
	h := newHarness(t, sequence(0))

	before := h.renders()
	h.store.Tick(start.Add(time.Second))
	h.flush()

	h.expectRerendered(before, "Time", "LogPanel")
	if !strings.Contains(h.tree.HTML(), "Current time: 03:04:06") {
		t.Fatalf("HTML() = %s", h.tree.HTML())
	}
}

func TestLogIsBounded(t *testing.T) {
	rt := reactive.NewRuntime()
	s := NewStore(Args{Runtime: rt, LogLimit: 3})

	for _, msg := range []string{"one", "two", "three", "four", "five"} {
		s.Log(msg)
	}

	logs := s.Logs.Peek()
	if len(logs) != 3 {
		t.Fatalf("len(logs) = %d, want 3", len(logs))
	}
	if logs[0].Seq != 2 || logs[0].Message != "three" || logs[2].Message != "five" {
		t.Fatalf("logs = %+v", logs)
	}
}

func TestLogDoesNotSubscribe(t *testing.T) {
	rt := reactive.NewRuntime()
	s := NewStore(Args{Runtime: rt})

	runs := 0
	dispose := rt.Effect(func() {
		runs++
		s.Log("from effect")
	})
	defer dispose()

	s.Log("outside")
	if runs != 1 {
		t.Fatalf("effect ran %d times, want 1", runs)
	}
}

func TestDispatch(t *testing.T) {
	rt := reactive.NewRuntime()
	s := NewStore(Args{Runtime: rt, Rand: sequence(6)})

	tests := []struct {
		action string
		value  string
		check  func() bool
	}{
		{"setName", "Go", func() bool { return s.Name.Peek() == "Go" }},
		{"randomA", "", func() bool { return s.A.Peek() == 6 }},
		{"randomB", "", func() bool { return s.B.Peek() == 6 }},
		{"randomC", "", func() bool { return s.C.Peek() == 6 }},
		{"randomEverything", "", func() bool { return s.ShowBorC.Peek() == "b" }},
	}
	for _, tt := range tests {
		if err := s.Dispatch(tt.action, tt.value); err != nil {
			t.Fatalf("Dispatch(%q) error: %v", tt.action, err)
		}
		if !tt.check() {
			t.Errorf("Dispatch(%q) had no effect", tt.action)
		}
	}

	err := s.Dispatch("explode", "")
	if code := errors.CodeOf(err); code != "P002" {
		t.Fatalf("Dispatch(explode) error = %v, want P002", err)
	}
}

func TestUnmountReleasesSubscriptions(t *testing.T) {
	h := newHarness(t, sequence(0))
	h.tree.Unmount()

	// Name and a stay subscribed by the memos derived from them.
	s := h.store
	count := s.CurrentTime.SubscriberCount() + s.B.SubscriberCount() + s.C.SubscriberCount() +
		s.ShowBorC.SubscriberCount() + s.Logs.SubscriberCount()
	if count != 0 {
		t.Fatalf("%d subscriptions survived unmount", count)
	}
}
