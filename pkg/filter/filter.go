// Package filter provides generic boolean predicate combinators with
// short-circuit evaluation. It is the host framework role predicates
// participate in; the combinators know nothing about roles.
package filter

// Predicate decides whether a value matches.
type Predicate[T any] interface {
	Match(v T) bool
}

// Func adapts a plain function to a Predicate.
type Func[T any] func(T) bool

// Match implements Predicate.
func (f Func[T]) Match(v T) bool { return f(v) }

type andPredicate[T any] struct{ preds []Predicate[T] }

func (p andPredicate[T]) Match(v T) bool {
	for _, pred := range p.preds {
		if !pred.Match(v) {
			return false
		}
	}
	return true
}

// And matches when every predicate matches. Evaluation stops at the first
// non-match.
func And[T any](preds ...Predicate[T]) Predicate[T] {
	return andPredicate[T]{preds: preds}
}

type orPredicate[T any] struct{ preds []Predicate[T] }

func (p orPredicate[T]) Match(v T) bool {
	for _, pred := range p.preds {
		if pred.Match(v) {
			return true
		}
	}
	return false
}

// Or matches when any predicate matches. Evaluation stops at the first
// match.
func Or[T any](preds ...Predicate[T]) Predicate[T] {
	return orPredicate[T]{preds: preds}
}

type notPredicate[T any] struct{ pred Predicate[T] }

func (p notPredicate[T]) Match(v T) bool { return !p.pred.Match(v) }

// Not negates a predicate.
func Not[T any](pred Predicate[T]) Predicate[T] {
	return notPredicate[T]{pred: pred}
}

// True matches everything.
func True[T any]() Predicate[T] {
	return Func[T](func(T) bool { return true })
}

// False matches nothing.
func False[T any]() Predicate[T] {
	return Func[T](func(T) bool { return false })
}
