// Package opt provides a small generic optional value. An unset Opt is the
// "not supplied" sentinel used by the entity builders: a field is emitted
// into a record only when its Opt is set.
package opt

// Opt holds a value of type T that may or may not be present.
type Opt[T any] struct {
	value T
	set   bool
}

// Some returns a set Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// None returns an unset Opt.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// FromPtr returns Some(*p) for a non-nil pointer and None otherwise. Decoders
// that produce nil pointers for absent attributes use this to cross over.
func FromPtr[T any](p *T) Opt[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// IsSet reports whether a value is present.
func (o Opt[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// Or returns the value if present, otherwise fallback.
func (o Opt[T]) Or(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}
