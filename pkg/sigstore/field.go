package sigstore

import "fmt"

// Field is a typed name of a tracked store field. Declaring fields next to
// the store definition gives consumers plain typed values:
//
//	var name = sigstore.NewField[string]("name")
//	greeting := "Hello, " + name.Get(view)
type Field[T any] struct {
	name string
}

// NewField declares a field of type T stored under name.
func NewField[T any](name string) Field[T] {
	return Field[T]{name: name}
}

// Name returns the field name.
func (f Field[T]) Name() string {
	return f.name
}

// Lookup reads the field through v, recording it.
func (f Field[T]) Lookup(v *View) (T, error) {
	var zero T
	raw, err := v.Get(f.name)
	if err != nil {
		return zero, err
	}
	val, ok := raw.(T)
	if !ok && raw != nil {
		return zero, newFieldTypeError(f.name, fmt.Sprintf("%T", zero), fmt.Sprintf("%T", raw))
	}
	return val, nil
}

// Get reads the field through v. It panics with a *LookupError when the
// store has no such field or the cell holds another type.
func (f Field[T]) Get(v *View) T {
	val, err := f.Lookup(v)
	if err != nil {
		panic(err)
	}
	return val
}
