// Package reactive provides the fine-grained reactive cells that sigstore
// stores are built from.
//
// Dependencies are tracked at runtime: reading a cell while an effect or
// memo is running subscribes that effect or memo to the cell.
//
// # Core Types
//
// Signal[T] is a mutable cell:
//
//	rt := reactive.NewRuntime()
//	count := reactive.NewSignal(rt, 0)
//	value := count.Get() // tracked read
//	count.Set(5)         // notifies dependents
//
// Memo[T] is a cached derived cell:
//
//	doubled := reactive.NewMemo(rt, func() int { return count.Get() * 2 })
//
// Effect re-runs whenever a cell it read during its last run changes:
//
//	e := reactive.CreateEffect(rt, func() reactive.Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return nil
//	})
//	defer e.Dispose()
//
// # Batching
//
// Writes inside Batch are coalesced; every affected effect runs once after
// the outermost batch returns:
//
//	rt.Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})
//
// # Threading
//
// A Runtime and every cell created from it are confined to one goroutine.
// Writes originating elsewhere (timers, sockets) must be handed to the
// goroutine that owns the runtime.
package reactive
