// Package codegen renders a converted pattern as structured imperative
// quantum-DSL source text. Wires are variable names rebound by each
// operation; conditional corrections become if-blocks whose condition is
// the XOR of outcome variables.
package codegen

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

// FuncName is the name of the emitted DSL function.
const FuncName = "mbqc_pattern"

// Program builds the DSL source for one conversion. It implements
// convert.Backend with string wires (qubit variable names) and string
// outcomes (boolean variable names). The zero value is not usable; call
// New.
type Program struct {
	params   []string // input qubit parameters, in acquisition order
	body     []string // body lines, without indentation prefix
	qubits   int      // fresh qubit variable counter
	results  int      // fresh outcome variable counter
	conds    int      // emitted if-blocks
	code     string   // assembled at Finalize
	finished bool
}

var _ convert.Backend[string, string] = (*Program)(nil)

// New creates an empty program builder.
func New() *Program {
	return &Program{}
}

func (p *Program) emit(format string, args ...any) {
	p.body = append(p.body, fmt.Sprintf(format, args...))
}

// AcquireInput binds the next input qubit as a function parameter.
func (p *Program) AcquireInput() (string, error) {
	if p.finished {
		return "", fmt.Errorf("codegen: program already finalized")
	}
	name := fmt.Sprintf("q_in_%d", len(p.params))
	p.params = append(p.params, name)
	return name, nil
}

// Prepare allocates a fresh qubit variable and rotates it into the plus
// state.
func (p *Program) Prepare() (string, error) {
	if p.finished {
		return "", fmt.Errorf("codegen: program already finalized")
	}
	name := fmt.Sprintf("q_%d", p.qubits)
	p.qubits++
	p.emit("%s = qubit()", name)
	p.emit("%s = h(%s)", name, name)
	return name, nil
}

// Entangle emits a cz call rebinding both variables.
func (p *Program) Entangle(a, b string) (string, string, error) {
	if p.finished {
		return "", "", fmt.Errorf("codegen: program already finalized")
	}
	p.emit("%s, %s = cz(%s, %s)", a, b, a, b)
	return a, b, nil
}

// RotateAndMeasure emits the plane basis change and a measure call. The
// qubit variable goes out of scope: no post-measurement wire (keep is
// always false).
func (p *Program) RotateAndMeasure(w string, plane pattern.Plane, angle float64) (string, string, bool, error) {
	if p.finished {
		return "", "", false, fmt.Errorf("codegen: program already finalized")
	}
	rotate := math.Abs(angle) > angleEps
	switch plane {
	case pattern.PlaneXY:
		if rotate {
			p.emit("%s = rz(%s, %s)", w, w, formatAngle(-angle))
		}
		p.emit("%s = h(%s)", w, w)
	case pattern.PlaneYZ:
		if rotate {
			p.emit("%s = rx(%s, %s)", w, w, formatAngle(-angle))
		}
	case pattern.PlaneXZ:
		if rotate {
			p.emit("%s = ry(%s, %s)", w, w, formatAngle(angle))
		}
	default:
		return "", "", false, fmt.Errorf("codegen: unknown measurement plane %q", plane)
	}
	name := fmt.Sprintf("m_%d", p.results)
	p.results++
	p.emit("%s = measure(%s)", name, w)
	return name, "", false, nil
}

// ApplyUnary emits a gate call rebinding the variable.
func (p *Program) ApplyUnary(g clifford.Gate, w string) (string, error) {
	if p.finished {
		return "", fmt.Errorf("codegen: program already finalized")
	}
	switch g {
	case clifford.H, clifford.X, clifford.Z, clifford.S:
		p.emit("%s = %s(%s)", w, g, w)
		return w, nil
	default:
		return "", fmt.Errorf("codegen: unary gate %v not supported", g)
	}
}

// ConditionalApply emits an if-block over the XOR of the outcome
// variables. Unconditional predicates emit a plain gate call.
func (p *Program) ConditionalApply(g clifford.Gate, pr convert.Predicate[string], w string) (string, error) {
	if pr.IsUnconditional() {
		return p.ApplyUnary(g, w)
	}
	if p.finished {
		return "", fmt.Errorf("codegen: program already finalized")
	}
	if g != clifford.X && g != clifford.Z {
		return "", fmt.Errorf("codegen: conditional %v not supported", g)
	}
	p.emit("if %s:", strings.Join(pr.Outcomes(), " ^ "))
	p.emit("    %s = %s(%s)", w, g, w)
	p.conds++
	return w, nil
}

// Finalize assembles the function: signature from the acquired inputs and
// the output arity, body, and return of output qubits then outcome bools.
func (p *Program) Finalize(outputs []string, outcomes []string) error {
	if p.finished {
		return fmt.Errorf("codegen: program already finalized")
	}

	returns := make([]string, 0, len(outputs)+len(outcomes))
	returns = append(returns, outputs...)
	returns = append(returns, outcomes...)

	types := make([]string, 0, len(returns))
	for range outputs {
		types = append(types, "qubit")
	}
	for range outcomes {
		types = append(types, "bool")
	}

	var retType string
	switch len(types) {
	case 0:
		retType = "None"
	case 1:
		retType = types[0]
	default:
		retType = fmt.Sprintf("tuple[%s]", strings.Join(types, ", "))
	}

	var b strings.Builder
	b.WriteString("from guppy import guppy\n")
	b.WriteString("from guppy.prelude.quantum import qubit, measure, h, x, z, s, rx, ry, rz, cz\n")
	b.WriteString("\n@guppy\n")

	params := make([]string, len(p.params))
	for i, name := range p.params {
		params[i] = name + ": qubit"
	}
	fmt.Fprintf(&b, "def %s(%s) -> %s:\n", FuncName, strings.Join(params, ", "), retType)

	for _, line := range p.body {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteByte('\n')
	}

	switch len(returns) {
	case 0:
		b.WriteString("    return None\n")
	case 1:
		fmt.Fprintf(&b, "    return %s\n", returns[0])
	default:
		fmt.Fprintf(&b, "    return (%s)\n", strings.Join(returns, ", "))
	}

	p.code = b.String()
	p.finished = true
	return nil
}

// Finished reports whether Finalize has run.
func (p *Program) Finished() bool { return p.finished }

// Code returns the assembled source. Empty until Finalize.
func (p *Program) Code() string { return p.code }

// LineCount returns the number of emitted body lines.
func (p *Program) LineCount() int { return len(p.body) }

// ConditionalCount returns the number of emitted if-blocks.
func (p *Program) ConditionalCount() int { return p.conds }

// Fingerprint returns the canonical structural hash of the program.
func (p *Program) Fingerprint() (string, error) {
	return fingerprint.Hash(map[string]any{"code": p.code})
}

// formatAngle renders an angle literal with shortest round-trip
// formatting, matching the fingerprint encoding of the same value.
func formatAngle(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
