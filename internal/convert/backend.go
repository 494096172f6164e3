package convert

import (
	"github.com/roach88/weft/internal/clifford"
	"github.com/roach88/weft/internal/pattern"
)

// Backend is the target capability interface: the full contract a target
// representation implements. The engine calls only this surface, and each
// backend implements it exactly once.
//
// W is the backend's wire handle type (the live handle for a node's
// qubit) and O its outcome handle type (a measurement result). Both are
// opaque to the engine; it moves them between slots and hands them back.
type Backend[W, O any] interface {
	// AcquireInput allocates the wire for the next declared input node.
	// The engine calls it once per input, in declared order, before the
	// command stream. Inputs arrive in their given state: no basis
	// change is applied.
	AcquireInput() (W, error)

	// Prepare allocates a fresh wire in the plus state (initial basis
	// state plus the standard basis-change).
	Prepare() (W, error)

	// Entangle applies the symmetric CZ correlation, consuming both input
	// wires and returning fresh ones in the same order.
	Entangle(a, b W) (W, W, error)

	// RotateAndMeasure applies the plane-specific basis rotation, then
	// measures in the computational basis. The input wire is consumed.
	// When the backend keeps a collapsed qubit alive it returns the
	// post-measurement wire and keep=true; otherwise keep=false and the
	// returned wire is the zero value and must not be used.
	//
	// Basis changes: XY rotates by -angle about Z then applies H; YZ
	// rotates by -angle about X; XZ rotates by angle about Y. A near-zero
	// angle skips the rotation.
	RotateAndMeasure(w W, p pattern.Plane, angle float64) (outcome O, post W, keep bool, err error)

	// ApplyUnary applies a primitive gate (one of X, Z, H, S), consuming
	// and replacing the wire.
	ApplyUnary(g clifford.Gate, w W) (W, error)

	// ConditionalApply applies a Pauli correction (X or Z) gated by the
	// predicate. An unconditional predicate must behave exactly as
	// ApplyUnary; otherwise the backend encodes "apply iff the XOR of the
	// named outcomes is 1" in its own idiom.
	ConditionalApply(g clifford.Gate, pr Predicate[O], w W) (W, error)

	// Finalize receives the output wires in declared output order,
	// followed by the outcome handles of measured non-output nodes in
	// ascending node order, and completes the target representation.
	Finalize(outputs []W, outcomes []O) error
}

// Observer receives one event per processed command. It exists for
// conversion tracing (the trace store records the stream it sees); the
// engine works identically with a nil observer.
type Observer interface {
	// Command is invoked after a command has been fully emitted.
	Command(pos int, cmd pattern.Command)

	// Finalized is invoked once after a successful Finalize, with the
	// counts of output wires and classical outcomes.
	Finalized(outputs, outcomes int)
}
