// Package errors provides coded, actionable error messages for sigstore.
//
// Every error carries a code from the registry (e.g. "S001") that maps to a
// short message, a longer explanation and a hint on how to fix the misuse:
//
//	err := errors.New("S001").
//	    WithDetail(`store "demo" looked up from component ABC`).
//	    WithSuggestion("Render ABC inside demo.Provider(...)")
//
//	fmt.Println(err.Format())
//	// ERROR S001: Store used outside provider
//	//
//	//   store "demo" looked up from component ABC
//	//
//	//   Hint: Render ABC inside demo.Provider(...)
//
// # Categories
//
//   - scope: store lookups outside an active provider
//   - lookup: tracked-view reads of undeclared fields
//   - config: invalid configuration
//   - protocol: malformed client messages
//   - cli: command-line usage errors
package errors
