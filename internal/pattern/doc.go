// Package pattern defines the measurement-based quantum computation (MBQC)
// pattern model: an ordered command stream over integer qubit nodes, plus
// the validation pass that every conversion requires as a precondition.
//
// ARCHITECTURE:
//
// A Pattern is immutable after construction. It carries the declared input
// and output node lists and the command stream. Commands form a sealed
// union (marker method pattern) so backend-facing code can type-switch
// exhaustively:
//
//	switch c := cmd.(type) {
//	case pattern.PrepareCmd:
//	case pattern.EntangleCmd:
//	case pattern.MeasureCmd:
//	case pattern.CorrectXCmd:
//	case pattern.CorrectZCmd:
//	case pattern.CliffordCmd:
//	}
//
// VALIDATION CONTRACT:
//
// Validate checks the stream-order invariants once, before conversion:
//   - a node is prepared or declared as input before any other reference
//   - a node is measured at most once
//   - measurement/correction domains only name already-measured nodes
//   - every declared output node still owns a live wire at stream end
//   - Clifford indices are within [0,24)
//
// Validation is a prerequisite contract, not a repeated runtime check: the
// conversion engine enforces its own state-machine preconditions but
// assumes a validated pattern for its wire-conservation guarantees.
package pattern
