// Package predicate provides reusable predicates over component values for ecs.Check.
//
// A predicate is any value with a Test(*T) bool method. Predicates must be pure functions of the
// value they're given.
package predicate

import "cmp"

// Predicate reports whether a value satisfies a condition. It has the same method set as
// ecs.Predicate, so every predicate here can be passed to ecs.Check. This package doesn't import ecs
// so that ecs can use it in its own tests.
type Predicate[T any] interface {
	Test(value *T) bool
}

// Func adapts a function to a Predicate.
type Func[T any] func(value *T) bool

func (f Func[T]) Test(value *T) bool {
	return f(value)
}

// Equals matches values equal to want.
func Equals[T comparable](want T) Predicate[T] {
	return Func[T](func(v *T) bool { return *v == want })
}

// GreaterThan matches values strictly greater than bound.
func GreaterThan[T cmp.Ordered](bound T) Predicate[T] {
	return Func[T](func(v *T) bool { return *v > bound })
}

// LessThan matches values strictly less than bound.
func LessThan[T cmp.Ordered](bound T) Predicate[T] {
	return Func[T](func(v *T) bool { return *v < bound })
}

// Between matches values in the closed interval [lo, hi].
func Between[T cmp.Ordered](lo, hi T) Predicate[T] {
	return Func[T](func(v *T) bool { return *v >= lo && *v <= hi })
}

// Field applies p to the field of T returned by get.
//
// Example:
//
//	predicate.Field(func(h *Health) *int { return &h.Value }, predicate.LessThan(10))
func Field[T, V any](get func(*T) *V, p Predicate[V]) Predicate[T] {
	return Func[T](func(v *T) bool { return p.Test(get(v)) })
}

// Not negates p.
func Not[T any](p Predicate[T]) Predicate[T] {
	return Func[T](func(v *T) bool { return !p.Test(v) })
}

// And matches values that satisfy every predicate. An empty And matches everything.
func And[T any](ps ...Predicate[T]) Predicate[T] {
	return Func[T](func(v *T) bool {
		for _, p := range ps {
			if !p.Test(v) {
				return false
			}
		}
		return true
	})
}

// Or matches values that satisfy at least one predicate. An empty Or matches nothing.
func Or[T any](ps ...Predicate[T]) Predicate[T] {
	return Func[T](func(v *T) bool {
		for _, p := range ps {
			if p.Test(v) {
				return true
			}
		}
		return false
	})
}
