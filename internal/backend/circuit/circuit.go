// Package circuit renders a converted pattern as a gate-based circuit
// object: persistent qubit and classical-bit registers plus an ordered
// command list. Conditional corrections are not branches or extra nodes —
// each gate command may carry a native condition attribute naming the
// outcome bits whose XOR gates its execution.
package circuit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/weft/internal/clifford"
	"github.com/roach88/weft/internal/convert"
	"github.com/roach88/weft/internal/fingerprint"
	"github.com/roach88/weft/internal/pattern"
)

const angleEps = 1e-10

// QubitRef names a qubit register slot, q[i].
type QubitRef int

// BitRef names a classical register slot, m[i].
type BitRef int

// Command is one circuit operation.
type Command struct {
	Op       string
	Angle    float64 // meaningful only when HasAngle
	HasAngle bool
	Qubits   []QubitRef
	Bit      *BitRef // measurement destination, nil otherwise

	// Condition lists outcome bits; when non-empty the command applies
	// iff the XOR of the listed bits is 1.
	Condition []BitRef
}

// Circuit is the gate-based target representation. It implements
// convert.Backend with QubitRef wires and BitRef outcomes. Qubits are
// persistent: measurement collapses a qubit but keeps its register slot
// alive, so the post-measurement wire survives. The zero value is not
// usable; call New.
type Circuit struct {
	qubits   int
	bits     int
	cmds     []Command
	outputs  []QubitRef
	readouts []BitRef
	finished bool
}

var _ convert.Backend[QubitRef, BitRef] = (*Circuit)(nil)

// New creates an empty circuit builder.
func New() *Circuit {
	return &Circuit{}
}

func (c *Circuit) allocQubit() QubitRef {
	q := QubitRef(c.qubits)
	c.qubits++
	return q
}

// AcquireInput allocates a register qubit for the next input node. Input
// qubits arrive in their given state: no gate is emitted.
func (c *Circuit) AcquireInput() (QubitRef, error) {
	if c.finished {
		return 0, fmt.Errorf("circuit: already finalized")
	}
	return c.allocQubit(), nil
}

// Prepare allocates a register qubit (implicitly |0>) and applies H to
// bring it to the plus state.
func (c *Circuit) Prepare() (QubitRef, error) {
	if c.finished {
		return 0, fmt.Errorf("circuit: already finalized")
	}
	q := c.allocQubit()
	c.cmds = append(c.cmds, Command{Op: "h", Qubits: []QubitRef{q}})
	return q, nil
}

// Entangle appends a CZ between the two register qubits.
func (c *Circuit) Entangle(a, b QubitRef) (QubitRef, QubitRef, error) {
	if c.finished {
		return 0, 0, fmt.Errorf("circuit: already finalized")
	}
	c.cmds = append(c.cmds, Command{Op: "cz", Qubits: []QubitRef{a, b}})
	return a, b, nil
}

// RotateAndMeasure appends the plane basis change and a measurement into
// a fresh classical bit. The collapsed qubit's register slot stays alive,
// so the post-measurement wire is returned with keep=true.
func (c *Circuit) RotateAndMeasure(w QubitRef, p pattern.Plane, angle float64) (BitRef, QubitRef, bool, error) {
	if c.finished {
		return 0, 0, false, fmt.Errorf("circuit: already finalized")
	}
	rotate := math.Abs(angle) > angleEps
	switch p {
	case pattern.PlaneXY:
		if rotate {
			c.appendAngle("rz", -angle, w)
		}
		c.cmds = append(c.cmds, Command{Op: "h", Qubits: []QubitRef{w}})
	case pattern.PlaneYZ:
		if rotate {
			c.appendAngle("rx", -angle, w)
		}
	case pattern.PlaneXZ:
		if rotate {
			c.appendAngle("ry", angle, w)
		}
	default:
		return 0, 0, false, fmt.Errorf("circuit: unknown measurement plane %q", p)
	}
	bit := BitRef(c.bits)
	c.bits++
	c.cmds = append(c.cmds, Command{Op: "measure", Qubits: []QubitRef{w}, Bit: &bit})
	return bit, w, true, nil
}

func (c *Circuit) appendAngle(op string, angle float64, q QubitRef) {
	c.cmds = append(c.cmds, Command{Op: op, Angle: angle, HasAngle: true, Qubits: []QubitRef{q}})
}

// ApplyUnary appends a single-qubit gate.
func (c *Circuit) ApplyUnary(g clifford.Gate, w QubitRef) (QubitRef, error) {
	if c.finished {
		return 0, fmt.Errorf("circuit: already finalized")
	}
	switch g {
	case clifford.H, clifford.X, clifford.Z, clifford.S:
		c.cmds = append(c.cmds, Command{Op: g.String(), Qubits: []QubitRef{w}})
		return w, nil
	default:
		return 0, fmt.Errorf("circuit: unary gate %v not supported", g)
	}
}

// ConditionalApply appends the correction carrying the predicate's bits
// as its condition attribute. Unconditional predicates append a plain
// gate.
func (c *Circuit) ConditionalApply(g clifford.Gate, pr convert.Predicate[BitRef], w QubitRef) (QubitRef, error) {
	if pr.IsUnconditional() {
		return c.ApplyUnary(g, w)
	}
	if c.finished {
		return 0, fmt.Errorf("circuit: already finalized")
	}
	if g != clifford.X && g != clifford.Z {
		return 0, fmt.Errorf("circuit: conditional %v not supported", g)
	}
	cond := make([]BitRef, len(pr.Outcomes()))
	copy(cond, pr.Outcomes())
	c.cmds = append(c.cmds, Command{Op: g.String(), Qubits: []QubitRef{w}, Condition: cond})
	return w, nil
}

// Finalize records the declared output ordering.
func (c *Circuit) Finalize(outputs []QubitRef, outcomes []BitRef) error {
	if c.finished {
		return fmt.Errorf("circuit: already finalized")
	}
	c.outputs = append([]QubitRef(nil), outputs...)
	c.readouts = append([]BitRef(nil), outcomes...)
	c.finished = true
	return nil
}

// Finished reports whether Finalize has run.
func (c *Circuit) Finished() bool { return c.finished }

// NumQubits returns the qubit register size.
func (c *Circuit) NumQubits() int { return c.qubits }

// NumBits returns the classical register size.
func (c *Circuit) NumBits() int { return c.bits }

// Commands returns the command list in emission order. The slice is
// shared; callers must not mutate it.
func (c *Circuit) Commands() []Command { return c.cmds }

// Outputs returns the output qubits in declared order.
func (c *Circuit) Outputs() []QubitRef { return c.outputs }

// Readouts returns the classical outcome bits in ascending node order.
func (c *Circuit) Readouts() []BitRef { return c.readouts }

// OpCount returns the number of commands with the given op name.
func (c *Circuit) OpCount(op string) int {
	count := 0
	for _, cmd := range c.cmds {
		if cmd.Op == op {
			count++
		}
	}
	return count
}

// ConditionalCount returns the number of commands carrying a condition.
func (c *Circuit) ConditionalCount() int {
	count := 0
	for _, cmd := range c.cmds {
		if len(cmd.Condition) > 0 {
			count++
		}
	}
	return count
}

// Render returns a deterministic text listing for golden-file comparison
// and CLI output.
//
//	circuit q=2 m=1
//	h q[1]
//	cz q[0], q[1]
//	measure q[0] -> m[0]
//	x q[1] if m[0]
//	outputs: q[1]
//	readouts: m[0]
func (c *Circuit) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "circuit q=%d m=%d\n", c.qubits, c.bits)
	for _, cmd := range c.cmds {
		b.WriteString(cmd.Op)
		if cmd.HasAngle {
			fmt.Fprintf(&b, "(%s)", strconv.FormatFloat(cmd.Angle, 'g', -1, 64))
		}
		for i, q := range cmd.Qubits {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, " q[%d]", q)
		}
		if cmd.Bit != nil {
			fmt.Fprintf(&b, " -> m[%d]", *cmd.Bit)
		}
		if len(cmd.Condition) > 0 {
			b.WriteString(" if ")
			for i, bit := range cmd.Condition {
				if i > 0 {
					b.WriteString(" ^ ")
				}
				fmt.Fprintf(&b, "m[%d]", bit)
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString("outputs:")
	for _, q := range c.outputs {
		fmt.Fprintf(&b, " q[%d]", q)
	}
	b.WriteByte('\n')
	b.WriteString("readouts:")
	for _, m := range c.readouts {
		fmt.Fprintf(&b, " m[%d]", m)
	}
	b.WriteByte('\n')
	return b.String()
}

// Fingerprint returns the canonical structural hash of the circuit.
func (c *Circuit) Fingerprint() (string, error) {
	cmds := make([]any, len(c.cmds))
	for i, cmd := range c.cmds {
		qubits := make([]any, len(cmd.Qubits))
		for j, q := range cmd.Qubits {
			qubits[j] = int(q)
		}
		m := map[string]any{
			"op":     cmd.Op,
			"qubits": qubits,
		}
		if cmd.HasAngle {
			m["angle"] = cmd.Angle
		}
		if cmd.Bit != nil {
			m["bit"] = int(*cmd.Bit)
		}
		if len(cmd.Condition) > 0 {
			cond := make([]any, len(cmd.Condition))
			for j, bit := range cmd.Condition {
				cond[j] = int(bit)
			}
			m["condition"] = cond
		}
		cmds[i] = m
	}
	outs := make([]any, len(c.outputs))
	for i, q := range c.outputs {
		outs[i] = int(q)
	}
	reads := make([]any, len(c.readouts))
	for i, m := range c.readouts {
		reads[i] = int(m)
	}
	return fingerprint.Hash(map[string]any{
		"qubits":   c.qubits,
		"bits":     c.bits,
		"commands": cmds,
		"outputs":  outs,
		"readouts": reads,
	})
}
