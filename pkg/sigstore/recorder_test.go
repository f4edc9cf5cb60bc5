package sigstore

import (
	"errors"
	"testing"

	ierrors "github.com/vango-dev/sigstore/internal/errors"
	"github.com/vango-dev/sigstore/pkg/reactive"
)

func TestRecorderIdempotent(t *testing.T) {
	rt := reactive.NewRuntime()
	a := reactive.NewSignal(rt, 1)
	b := reactive.NewSignal(rt, 2)

	rec := NewRecorder()
	rec.Record(a)
	rec.Record(a)
	rec.Record(b)

	if rec.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rec.Len())
	}
	if !rec.Has(a) || !rec.Has(b) {
		t.Fatal("Has() missing a recorded cell")
	}
	cells := rec.Cells()
	if cells[0].ID() != a.ID() || cells[1].ID() != b.ID() {
		t.Fatal("Cells() not in first-read order")
	}
}

func TestViewRecordsReads(t *testing.T) {
	rt := reactive.NewRuntime()
	a := reactive.NewSignal(rt, 1)
	b := reactive.NewSignal(rt, "two")
	cells := Cells{"a": a, "b": b}

	rec := NewRecorder()
	v := NewView(cells, rec)

	got, err := v.Get("b")
	if err != nil {
		t.Fatalf("Get(b) error: %v", err)
	}
	if got != "two" {
		t.Fatalf("Get(b) = %v, want two", got)
	}
	if rec.Has(a) {
		t.Fatal("unread field a was recorded")
	}
	if !rec.Has(b) {
		t.Fatal("read field b was not recorded")
	}
	if !v.Has("a") || v.Has("zzz") {
		t.Fatal("Has() wrong")
	}
	if rec.Has(a) {
		t.Fatal("Has() recorded a read")
	}
	if keys := v.Keys(); len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("Keys() = %v", keys)
	}
}

func TestViewReadIsUntrackedOutsideEffects(t *testing.T) {
	rt := reactive.NewRuntime()
	a := reactive.NewSignal(rt, 1)
	v := NewView(Cells{"a": a}, NewRecorder())

	_ = v.Must("a")
	if n := a.SubscriberCount(); n != 0 {
		t.Fatalf("render-time read subscribed %d listeners", n)
	}
}

func TestViewUnknownField(t *testing.T) {
	rt := reactive.NewRuntime()
	rec := NewRecorder()
	v := NewView(Cells{"a": reactive.NewSignal(rt, 1)}, rec)

	_, err := v.Get("missing")
	if !errors.Is(err, ErrLookup) {
		t.Fatalf("Get(missing) error = %v, want ErrLookup", err)
	}
	var le *LookupError
	if !errors.As(err, &le) || le.Field != "missing" {
		t.Fatalf("errors.As LookupError failed: %v", err)
	}
	if len(le.Known) != 1 || le.Known[0] != "a" {
		t.Fatalf("Known = %v", le.Known)
	}
	if code := ierrors.CodeOf(err); code != "S002" {
		t.Fatalf("code = %q, want S002", code)
	}
	if rec.Len() != 0 {
		t.Fatal("failed read was recorded")
	}
}

func TestViewMustPanics(t *testing.T) {
	v := NewView(Cells{}, NewRecorder())
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, ErrLookup) {
			t.Fatalf("recover() = %v, want LookupError", err)
		}
	}()
	v.Must("nope")
}

func TestFieldTyped(t *testing.T) {
	rt := reactive.NewRuntime()
	cells := Cells{
		"count": reactive.NewSignal(rt, 3),
		"name":  reactive.NewSignal(rt, "x"),
	}
	v := NewView(cells, NewRecorder())

	count := NewField[int]("count")
	if got := count.Get(v); got != 3 {
		t.Fatalf("count.Get = %d, want 3", got)
	}
	if count.Name() != "count" {
		t.Fatalf("Name() = %q", count.Name())
	}

	wrong := NewField[int]("name")
	_, err := wrong.Lookup(v)
	var le *LookupError
	if !errors.As(err, &le) || le.Want != "int" || le.Have != "string" {
		t.Fatalf("Lookup type mismatch error = %v", err)
	}
	if code := ierrors.CodeOf(err); code != "S004" {
		t.Fatalf("code = %q, want S004", code)
	}

	missing := NewField[string]("missing")
	defer func() {
		if recover() == nil {
			t.Fatal("Get on missing field did not panic")
		}
	}()
	missing.Get(v)
}
