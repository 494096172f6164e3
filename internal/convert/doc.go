// Package convert implements the MBQC pattern conversion engine: a single
// forward pass over a validated command stream that drives a target
// backend through the capability interface.
//
// ARCHITECTURE:
//
// Single-Pass Fold:
// The engine consumes the command stream once, in order, in one goroutine.
// There is no parallelism, no suspension point, and no background work.
// Conversion is a pure function of the validated pattern and the chosen
// backend: converting the same pattern twice produces structurally
// identical output. Determinism is a hard invariant, not an optimization.
//
// Wire Move Semantics:
// Engine state is a node→wire map plus a node→outcome map. Wires follow
// exclusive ownership: every consuming operation invalidates its input
// wire(s) and returns fresh ones, realized as an arena of slots indexed by
// node — consuming clears the slot, producing writes a fresh one. Outcome
// handles are immutable once produced and may be read by any number of
// later predicates.
//
// Backend Polymorphism:
// Three structurally incompatible conditional-correction encodings exist
// across the targets (explicit branch, custom conditional node, native
// condition attribute). The engine never branches on "which backend": it
// builds a Predicate (unconditional, or XOR of outcome handles) and
// delegates its interpretation entirely to the Backend implementation.
// Backends are selected at the call site, never via a hierarchy.
//
// FAILURE POLICY:
//
// Fail-fast with no partial output. Any contract violation or backend
// failure transitions the engine to Failed with a positioned
// *pattern.Error; no commands after the failing one are processed, and
// there is no retry. Callers needing partial results re-run on a
// corrected pattern.
package convert
