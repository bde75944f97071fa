package options

import "fmt"

// Option represents a functional option for configuring any type T.
type Option[T any] interface {
	apply(T) error
}

// Func is a generic functional option that wraps a function.
type Func[T any] struct {
	name      string
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	if err := f.applyFunc(target); err != nil {
		return fmt.Errorf("option %s: %w", f.name, err)
	}

	return nil
}

// New creates a named functional option from a function that may fail.
// The name prefixes the error returned by fn.
func New[T any](name string, fn func(T) error) *Func[T] {
	return &Func[T]{name: name, applyFunc: fn}
}

// NoError creates a named functional option from a function that cannot fail.
func NoError[T any](name string, fn func(T)) *Func[T] {
	return &Func[T]{
		name: name,
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies options to target in order and stops at the first error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
