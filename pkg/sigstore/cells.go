package sigstore

import "sort"

// Cell is a reactive cell as seen by the bridge. Read must be a tracked
// read: called from inside an effect, it subscribes that effect.
// Cells with equal IDs are the same dependency.
type Cell interface {
	ID() uint64
	Read() any
}

// Reactor is the reactive runtime capability the bridge needs.
type Reactor interface {
	// Batch coalesces writes made by fn into one round of notifications.
	Batch(fn func())

	// Effect runs fn now and whenever a cell it read changes. The returned
	// function stops it and must be safe to call more than once.
	Effect(fn func()) (dispose func())

	// Untracked runs fn without recording reads.
	Untracked(fn func())
}

// Cells is the trackable surface of a store: field name to cell.
type Cells map[string]Cell

// Keys returns the field names in sorted order.
func (c Cells) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Instance is what a store factory builds: the cells to track plus the
// reactor they belong to. Store types embed Base to satisfy it and add any
// untracked fields and actions next to it.
type Instance interface {
	Signals() Cells
	Reactor() Reactor
}

// Base implements Instance.
type Base struct {
	cells   Cells
	reactor Reactor
}

// NewBase bundles cells created on reactor.
func NewBase(reactor Reactor, cells Cells) Base {
	return Base{cells: cells, reactor: reactor}
}

// Signals returns the store's cells.
func (b Base) Signals() Cells { return b.cells }

// Reactor returns the runtime the cells belong to.
func (b Base) Reactor() Reactor { return b.reactor }
