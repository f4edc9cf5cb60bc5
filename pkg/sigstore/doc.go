// Package sigstore lets a component render function read any subset of
// reactive cells and re-render only when one of the cells it actually read
// changes.
//
// A store is defined once, built once per provider mount, and shared with
// the provider's subtree:
//
//	type counterStore struct {
//	    sigstore.Base
//	    Inc func()
//	}
//
//	var Counter = sigstore.Define("counter", func(n *host.Node, rt *reactive.Runtime) *counterStore {
//	    count := reactive.NewSignal(rt, 0)
//	    return &counterStore{
//	        Base: sigstore.NewBase(rt, sigstore.Cells{"count": count}),
//	        Inc:  func() { count.Update(func(v int) int { return v + 1 }) },
//	    }
//	})
//
//	var count = sigstore.NewField[int]("count")
//
//	func Display(n *host.Node) string {
//	    s := Counter.Bind(n)
//	    return strconv.Itoa(count.Get(s.Signals))
//	}
//
// Every render pass gets a fresh View. The cells read through it are
// recorded, and after the pass commits the previous subscription is
// replaced by one effect over exactly those cells. The effect's first run
// only arms it; later runs ask the host to re-render the component.
//
// Misuse is reported loudly: Use and Bind panic with a *ScopeError when no
// provider encloses the component, and Field.Get panics with a
// *LookupError for undeclared fields. TryBind and Lookup return the errors
// instead.
package sigstore
