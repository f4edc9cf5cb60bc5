package reactive

import "reflect"

// cellBase provides subscriber management shared by Signal and Memo.
type cellBase struct {
	id   uint64
	rt   *Runtime
	subs []Listener

	// version increases every time the cell's value changes.
	version uint64

	// refresh brings a stale memo up to date. nil for signals.
	refresh func()
}

func newCellBase(rt *Runtime) cellBase {
	if rt == nil {
		panic("reactive: nil runtime")
	}
	return cellBase{id: nextID(), rt: rt}
}

// subscribe adds a listener, deduplicating by ID.
func (c *cellBase) subscribe(l Listener) {
	lid := l.ID()
	for _, existing := range c.subs {
		if existing.ID() == lid {
			return
		}
	}
	c.subs = append(c.subs, l)
}

// unsubscribe removes a listener. Order of subs is not preserved.
func (c *cellBase) unsubscribe(l Listener) {
	lid := l.ID()
	for i, existing := range c.subs {
		if existing.ID() == lid {
			c.subs[i] = c.subs[len(c.subs)-1]
			c.subs = c.subs[:len(c.subs)-1]
			return
		}
	}
}

// track subscribes the runtime's current listener, if any.
func (c *cellBase) track() {
	l := c.rt.listener
	if l == nil {
		return
	}
	c.subscribe(l)
	if st, ok := l.(sourceTracker); ok {
		st.addSource(c)
	}
}

// notifySubscribers must run inside a batch. Memos are marked stale right
// away so that no effect can observe an outdated derived value; everything
// else is queued until the batch ends. A queued effect only re-runs if one
// of its sources has a new version by then.
func (c *cellBase) notifySubscribers() {
	subs := make([]Listener, len(c.subs))
	copy(subs, c.subs)

	for _, sub := range subs {
		if inv, ok := sub.(invalidator); ok {
			inv.invalidate()
			continue
		}
		c.rt.queue(sub)
	}
}

func (c *cellBase) subscriberCount() int {
	return len(c.subs)
}

// dependency is a source together with the version seen when it was read.
type dependency struct {
	cell    *cellBase
	version uint64
}

type dependencies []dependency

func (d *dependencies) add(c *cellBase) {
	for _, dep := range *d {
		if dep.cell == c {
			return
		}
	}
	*d = append(*d, dependency{cell: c, version: c.version})
}

// changed refreshes stale memo sources and reports whether any source moved
// past the version recorded when it was read.
func (d dependencies) changed() bool {
	for _, dep := range d {
		if dep.cell.refresh != nil {
			dep.cell.refresh()
		}
		if dep.cell.version != dep.version {
			return true
		}
	}
	return false
}

// release unsubscribes l from every source and forgets them.
func (d *dependencies) release(l Listener) {
	for _, dep := range *d {
		dep.cell.unsubscribe(l)
	}
	*d = (*d)[:0]
}

// invalidator is implemented by memos.
type invalidator interface {
	invalidate()
}

// defaultEquals uses == for common comparable types and reflect.DeepEqual
// for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case int32:
		return av == any(b).(int32)
	case uint:
		return av == any(b).(uint)
	case uint64:
		return av == any(b).(uint64)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
