package sigstore

import (
	"errors"
	"fmt"
	"strings"

	ierrors "github.com/vango-dev/sigstore/internal/errors"
)

var (
	// ErrScope matches every *ScopeError with errors.Is.
	ErrScope = errors.New("sigstore: used outside provider")

	// ErrLookup matches every *LookupError with errors.Is.
	ErrLookup = errors.New("sigstore: no such tracked field")
)

// ScopeError reports a store lookup from a component that no active
// provider of that store encloses.
type ScopeError struct {
	// Store is the name of the store definition.
	Store string

	// Path lists component names from the root to the caller.
	Path []string

	// Inactive is set when a provider was found but has been unmounted.
	Inactive bool

	coded *ierrors.Error
}

func newScopeError(store string, path []string, inactive bool) *ScopeError {
	code := "S001"
	if inactive {
		code = "S003"
	}
	caller := "<none>"
	if len(path) > 0 {
		caller = path[len(path)-1]
	}
	return &ScopeError{
		Store:    store,
		Path:     path,
		Inactive: inactive,
		coded: ierrors.New(code).
			WithDetailf("store %q used from %s", store, strings.Join(path, " > ")).
			WithSuggestion(fmt.Sprintf("Render %s inside %s.Provider.", caller, store)),
	}
}

func (e *ScopeError) Error() string {
	caller := "<none>"
	if len(e.Path) > 0 {
		caller = e.Path[len(e.Path)-1]
	}
	if e.Inactive {
		return fmt.Sprintf("sigstore: store %q used by %s after its provider was unmounted", e.Store, caller)
	}
	return fmt.Sprintf("sigstore: store %q used by %s outside provider", e.Store, caller)
}

// Is reports whether target is ErrScope.
func (e *ScopeError) Is(target error) bool {
	return target == ErrScope
}

// Unwrap returns the coded error carrying the fix suggestion.
func (e *ScopeError) Unwrap() error {
	return e.coded
}

// LookupError reports a tracked-view read of a field the store does not
// declare, or of a field whose value has another type than expected.
type LookupError struct {
	Field string

	// Known lists the declared fields.
	Known []string

	// Want and Have are set for type mismatches.
	Want string
	Have string

	coded *ierrors.Error
}

func newLookupError(field string, known []string) *LookupError {
	return &LookupError{
		Field: field,
		Known: known,
		coded: ierrors.New("S002").WithDetailf("field %q, store declares %s", field, strings.Join(known, ", ")),
	}
}

func newFieldTypeError(field, want, have string) *LookupError {
	return &LookupError{
		Field: field,
		Want:  want,
		Have:  have,
		coded: ierrors.New("S004").WithDetailf("field %q holds %s, read as %s", field, have, want),
	}
}

func (e *LookupError) Error() string {
	if e.Want != "" {
		return fmt.Sprintf("sigstore: tracked field %q holds %s, not %s", e.Field, e.Have, e.Want)
	}
	return fmt.Sprintf("sigstore: no such tracked field %q", e.Field)
}

// Is reports whether target is ErrLookup.
func (e *LookupError) Is(target error) bool {
	return target == ErrLookup
}

// Unwrap returns the coded error carrying the fix suggestion.
func (e *LookupError) Unwrap() error {
	return e.coded
}
