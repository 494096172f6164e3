package pattern

import (
	"fmt"
	"slices"
	"strings"
)

// NodeID identifies a qubit node within a pattern.
// IDs are opaque integers, unique within a pattern.
type NodeID int

// Plane identifies the measurement plane of a Measure command.
type Plane string

const (
	// PlaneXY measures in the XY plane: Rz(-angle) basis change, then H,
	// then a computational-basis measurement.
	PlaneXY Plane = "XY"

	// PlaneYZ measures in the YZ plane: Rx(-angle), then measurement.
	PlaneYZ Plane = "YZ"

	// PlaneXZ measures in the XZ plane: Ry(angle), then measurement.
	PlaneXZ Plane = "XZ"
)

// ValidPlanes defines the allowed measurement planes.
var ValidPlanes = map[Plane]bool{
	PlaneXY: true,
	PlaneYZ: true,
	PlaneXZ: true,
}

// CliffordOrder is the size of the single-qubit Clifford group modulo
// global phase. Clifford command indices must lie in [0, CliffordOrder).
const CliffordOrder = 24

// Command represents a single MBQC pattern command.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the conversion engine.
type Command interface {
	commandNode() // Marker method - seals interface to this package

	// Pos-independent human form, used by inspection and error messages.
	String() string
}

// PrepareCmd initializes a fresh node in the plus state.
type PrepareCmd struct {
	Node NodeID
}

func (PrepareCmd) commandNode() {}

func (c PrepareCmd) String() string { return fmt.Sprintf("N(%d)", c.Node) }

// EntangleCmd applies a symmetric CZ correlation between two live nodes.
type EntangleCmd struct {
	A, B NodeID
}

func (EntangleCmd) commandNode() {}

func (c EntangleCmd) String() string { return fmt.Sprintf("E(%d,%d)", c.A, c.B) }

// MeasureCmd measures a node in a plane-dependent basis.
//
// Domain lists previously measured nodes whose outcomes are XORed to
// determine a sign flip on the measurement basis. The command produces a
// boolean outcome bound to Node; the node's wire is consumed.
type MeasureCmd struct {
	Node   NodeID
	Plane  Plane
	Angle  float64
	Domain []NodeID
}

func (MeasureCmd) commandNode() {}

func (c MeasureCmd) String() string {
	return fmt.Sprintf("M(%d,%s,%g,%s)", c.Node, c.Plane, c.Angle, formatDomain(c.Domain))
}

// CorrectXCmd applies a Pauli X correction to a node's wire, conditioned
// on the XOR of the outcomes named in Domain. An empty domain means the
// correction applies unconditionally.
type CorrectXCmd struct {
	Node   NodeID
	Domain []NodeID
}

func (CorrectXCmd) commandNode() {}

func (c CorrectXCmd) String() string {
	return fmt.Sprintf("X(%d,%s)", c.Node, formatDomain(c.Domain))
}

// CorrectZCmd applies a Pauli Z correction to a node's wire, conditioned
// on the XOR of the outcomes named in Domain.
type CorrectZCmd struct {
	Node   NodeID
	Domain []NodeID
}

func (CorrectZCmd) commandNode() {}

func (c CorrectZCmd) String() string {
	return fmt.Sprintf("Z(%d,%s)", c.Node, formatDomain(c.Domain))
}

// CliffordCmd applies the single-qubit Clifford group element Index to a
// node's wire. Index must lie in [0, CliffordOrder).
type CliffordCmd struct {
	Node  NodeID
	Index int
}

func (CliffordCmd) commandNode() {}

func (c CliffordCmd) String() string { return fmt.Sprintf("C(%d,%d)", c.Node, c.Index) }

// Pattern is an ordered MBQC command stream over named qubit nodes.
//
// Inputs and Outputs list the declared input/output node identifiers in
// order. A Pattern is read-only after construction; the conversion engine
// never mutates it.
type Pattern struct {
	Inputs   []NodeID
	Outputs  []NodeID
	Commands []Command
}

// New constructs a Pattern. The slices are copied to keep the pattern
// immutable against later caller mutation.
func New(inputs, outputs []NodeID, commands []Command) *Pattern {
	p := &Pattern{
		Inputs:   make([]NodeID, len(inputs)),
		Outputs:  make([]NodeID, len(outputs)),
		Commands: make([]Command, len(commands)),
	}
	copy(p.Inputs, inputs)
	copy(p.Outputs, outputs)
	copy(p.Commands, commands)
	return p
}

// MeasuredNonOutputs returns the nodes measured by the stream that are not
// declared outputs, in ascending node order. These become the classical
// outputs of the converted representation.
func (p *Pattern) MeasuredNonOutputs() []NodeID {
	outputs := make(map[NodeID]bool, len(p.Outputs))
	for _, n := range p.Outputs {
		outputs[n] = true
	}
	seen := make(map[NodeID]bool)
	var measured []NodeID
	for _, cmd := range p.Commands {
		m, ok := cmd.(MeasureCmd)
		if !ok || outputs[m.Node] || seen[m.Node] {
			continue
		}
		seen[m.Node] = true
		measured = append(measured, m.Node)
	}
	slices.Sort(measured)
	return measured
}

// String renders the pattern in the compact stream notation used by
// inspection output and test failures.
func (p *Pattern) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "inputs=%v outputs=%v\n", p.Inputs, p.Outputs)
	for i, cmd := range p.Commands {
		fmt.Fprintf(&b, "[%d] %s\n", i, cmd)
	}
	return b.String()
}

func formatDomain(domain []NodeID) string {
	if len(domain) == 0 {
		return "{}"
	}
	parts := make([]string, len(domain))
	for i, n := range domain {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
