package convert

// Predicate describes when a correction applies: either unconditionally,
// or iff the XOR of a set of prior measurement outcomes is 1.
//
// Only the flat XOR-of-outcomes form ever occurs in this domain, so the
// model is a tagged variant rather than a boolean expression tree. The
// engine constructs predicates from command domains and otherwise treats
// them as opaque; each backend interprets them in its own idiom.
type Predicate[O any] struct {
	outcomes []O
}

// Unconditional returns the predicate that always applies.
func Unconditional[O any]() Predicate[O] {
	return Predicate[O]{}
}

// XorOf returns the predicate that applies iff the XOR of the given
// outcomes is 1. The outcome order is preserved; the engine resolves
// domains in ascending node order so equal domains build equal predicates.
// An empty argument list degenerates to Unconditional.
func XorOf[O any](outcomes ...O) Predicate[O] {
	if len(outcomes) == 0 {
		return Unconditional[O]()
	}
	return Predicate[O]{outcomes: outcomes}
}

// IsUnconditional reports whether the predicate always applies.
func (p Predicate[O]) IsUnconditional() bool { return len(p.outcomes) == 0 }

// Outcomes returns the outcome handles whose XOR gates the correction.
// Empty for unconditional predicates. The returned slice must not be
// mutated.
func (p Predicate[O]) Outcomes() []O { return p.outcomes }
