package sigstore

// Recorder is the accessed set of one render pass: every distinct cell read
// through a View, in first-read order.
type Recorder struct {
	seen  map[uint64]bool
	cells []Cell
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{seen: make(map[uint64]bool)}
}

// Record adds c. Recording the same cell twice is a no-op.
func (r *Recorder) Record(c Cell) {
	id := c.ID()
	if r.seen[id] {
		return
	}
	r.seen[id] = true
	r.cells = append(r.cells, c)
}

// Has reports whether c was recorded.
func (r *Recorder) Has(c Cell) bool {
	return r.seen[c.ID()]
}

// Len returns the number of distinct cells recorded.
func (r *Recorder) Len() int {
	return len(r.cells)
}

// Cells returns a copy of the recorded cells.
func (r *Recorder) Cells() []Cell {
	out := make([]Cell, len(r.cells))
	copy(out, r.cells)
	return out
}

// View is a read-only projection of a store's cells that records every
// field it is asked for. A View belongs to a single render pass; reading it
// after the pass has committed records into a set nobody subscribes to.
type View struct {
	cells Cells
	rec   *Recorder
}

// NewView returns a view over cells recording into rec.
func NewView(cells Cells, rec *Recorder) *View {
	return &View{cells: cells, rec: rec}
}

// Get records the cell named key and returns its current value.
// Unknown keys return a *LookupError.
func (v *View) Get(key string) (any, error) {
	c, ok := v.cells[key]
	if !ok {
		return nil, newLookupError(key, v.cells.Keys())
	}
	v.rec.Record(c)
	return c.Read(), nil
}

// Must is Get for fields the caller knows exist; it panics with a
// *LookupError otherwise.
func (v *View) Must(key string) any {
	val, err := v.Get(key)
	if err != nil {
		panic(err)
	}
	return val
}

// Has reports whether key is a tracked field. It does not record anything.
func (v *View) Has(key string) bool {
	_, ok := v.cells[key]
	return ok
}

// Keys returns the tracked field names in sorted order.
func (v *View) Keys() []string {
	return v.cells.Keys()
}

// Recorded returns the recorder backing the view.
func (v *View) Recorded() *Recorder {
	return v.rec
}
