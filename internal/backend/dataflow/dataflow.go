// Package dataflow renders a converted pattern as an explicit dataflow
// graph: operation nodes connected by typed wires, in the style of graph
// IRs whose conditional control flow is itself a node.
//
// Wires are ports (node, output index). Every operation consumes its
// input ports and produces fresh ones, so the graph is append-only and
// single-assignment. Conditional corrections materialize the predicate as
// classical structure in the graph: outcome bits are folded through xor
// nodes and the final bit feeds a cond_x/cond_z node alongside the qubit.
package dataflow

import (
	"fmt"
	"math"

	"github.com/roach88/weft/internal/clifford"
	"github.com/roach88/weft/internal/convert"
	"github.com/roach88/weft/internal/fingerprint"
	"github.com/roach88/weft/internal/pattern"
)

// angleEps is the threshold below which a basis rotation is dropped
// entirely rather than emitting a zero-angle rotation node.
const angleEps = 1e-10

// Op names a graph operation.
type Op string

const (
	OpInput   Op = "input"
	OpPrepare Op = "prepare"
	OpH       Op = "h"
	OpX       Op = "x"
	OpZ       Op = "z"
	OpS       Op = "s"
	OpCZ      Op = "cz"
	OpRz      Op = "rz"
	OpRx      Op = "rx"
	OpRy      Op = "ry"
	OpMeasure Op = "measure"
	OpXor     Op = "xor"
	OpCondX   Op = "cond_x"
	OpCondZ   Op = "cond_z"
	OpOutput  Op = "output"
)

// Port is a wire handle: output port Index of graph node Node.
type Port struct {
	Node  int
	Index int
}

func (p Port) String() string { return fmt.Sprintf("n%d.%d", p.Node, p.Index) }

// Node is one operation in the graph. Args lists the ports feeding its
// inputs, in input order; Outs is its output port count.
type Node struct {
	ID       int
	Op       Op
	Angle    float64 // meaningful only when HasAngle
	HasAngle bool
	Args     []Port
	Outs     int
}

// Graph is the dataflow target representation. It implements
// convert.Backend with Port wires and Port outcomes (outcome ports carry
// classical bits). The zero value is not usable; call New.
type Graph struct {
	nodes     []Node
	inputNode int // index of the lazily created input node, -1 until first input
	finished  bool
}

var _ convert.Backend[Port, Port] = (*Graph)(nil)

// New creates an empty graph builder.
func New() *Graph {
	return &Graph{inputNode: -1}
}

// add appends a node and returns its first output port.
func (g *Graph) add(op Op, args []Port, outs int) Port {
	id := len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: id, Op: op, Args: args, Outs: outs})
	return Port{Node: id, Index: 0}
}

func (g *Graph) addAngle(op Op, angle float64, arg Port) Port {
	id := len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: id, Op: op, Angle: angle, HasAngle: true, Args: []Port{arg}, Outs: 1})
	return Port{Node: id, Index: 0}
}

// AcquireInput extends the shared input node by one qubit port.
func (g *Graph) AcquireInput() (Port, error) {
	if g.finished {
		return Port{}, fmt.Errorf("dataflow: graph already finalized")
	}
	if g.inputNode < 0 {
		g.inputNode = len(g.nodes)
		g.nodes = append(g.nodes, Node{ID: g.inputNode, Op: OpInput})
	}
	n := &g.nodes[g.inputNode]
	port := Port{Node: g.inputNode, Index: n.Outs}
	n.Outs++
	return port, nil
}

// Prepare emits a source node producing one qubit in the plus state.
func (g *Graph) Prepare() (Port, error) {
	if g.finished {
		return Port{}, fmt.Errorf("dataflow: graph already finalized")
	}
	return g.add(OpPrepare, nil, 1), nil
}

// Entangle emits a cz node consuming both qubit ports.
func (g *Graph) Entangle(a, b Port) (Port, Port, error) {
	if g.finished {
		return Port{}, Port{}, fmt.Errorf("dataflow: graph already finalized")
	}
	p := g.add(OpCZ, []Port{a, b}, 2)
	return p, Port{Node: p.Node, Index: 1}, nil
}

// RotateAndMeasure emits the plane basis change, then a measure node.
// The measurement consumes the qubit: no post-measurement wire exists in
// this representation (keep is always false).
func (g *Graph) RotateAndMeasure(w Port, p pattern.Plane, angle float64) (Port, Port, bool, error) {
	if g.finished {
		return Port{}, Port{}, false, fmt.Errorf("dataflow: graph already finalized")
	}
	rotate := math.Abs(angle) > angleEps
	switch p {
	case pattern.PlaneXY:
		if rotate {
			w = g.addAngle(OpRz, -angle, w)
		}
		w = g.add(OpH, []Port{w}, 1)
	case pattern.PlaneYZ:
		if rotate {
			w = g.addAngle(OpRx, -angle, w)
		}
	case pattern.PlaneXZ:
		if rotate {
			w = g.addAngle(OpRy, angle, w)
		}
	default:
		return Port{}, Port{}, false, fmt.Errorf("dataflow: unknown measurement plane %q", p)
	}
	outcome := g.add(OpMeasure, []Port{w}, 1)
	return outcome, Port{}, false, nil
}

// ApplyUnary emits a single-qubit gate node.
func (g *Graph) ApplyUnary(gate clifford.Gate, w Port) (Port, error) {
	if g.finished {
		return Port{}, fmt.Errorf("dataflow: graph already finalized")
	}
	op, err := unaryOp(gate)
	if err != nil {
		return Port{}, err
	}
	return g.add(op, []Port{w}, 1), nil
}

// ConditionalApply encodes the correction as a conditional node fed by
// the XOR of the predicate's outcome bits. Unconditional predicates fall
// back to a plain gate node.
func (g *Graph) ConditionalApply(gate clifford.Gate, pr convert.Predicate[Port], w Port) (Port, error) {
	if pr.IsUnconditional() {
		return g.ApplyUnary(gate, w)
	}
	if g.finished {
		return Port{}, fmt.Errorf("dataflow: graph already finalized")
	}
	var op Op
	switch gate {
	case clifford.X:
		op = OpCondX
	case clifford.Z:
		op = OpCondZ
	default:
		return Port{}, fmt.Errorf("dataflow: conditional %v not supported", gate)
	}
	bits := pr.Outcomes()
	cond := bits[0]
	for _, b := range bits[1:] {
		cond = g.add(OpXor, []Port{cond, b}, 1)
	}
	return g.add(op, []Port{cond, w}, 1), nil
}

// Finalize emits the output node: output qubit ports first, classical
// outcome ports after, matching the engine's declared ordering.
func (g *Graph) Finalize(outputs []Port, outcomes []Port) error {
	if g.finished {
		return fmt.Errorf("dataflow: graph already finalized")
	}
	args := make([]Port, 0, len(outputs)+len(outcomes))
	args = append(args, outputs...)
	args = append(args, outcomes...)
	g.add(OpOutput, args, 0)
	g.finished = true
	return nil
}

// Finished reports whether Finalize has run.
func (g *Graph) Finished() bool { return g.finished }

// Nodes returns the graph nodes in emission order. The slice is shared;
// callers must not mutate it.
func (g *Graph) Nodes() []Node { return g.nodes }

// OpCount returns the number of nodes with the given operation.
func (g *Graph) OpCount(op Op) int {
	count := 0
	for _, n := range g.nodes {
		if n.Op == op {
			count++
		}
	}
	return count
}

// EdgeCount returns the total number of wires (consumed ports).
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		count += len(n.Args)
	}
	return count
}

// Fingerprint returns the canonical structural hash of the graph.
func (g *Graph) Fingerprint() (string, error) {
	return fingerprint.Hash(g.canonicalMap())
}

func (g *Graph) canonicalMap() map[string]any {
	nodes := make([]any, len(g.nodes))
	for i, n := range g.nodes {
		args := make([]any, len(n.Args))
		for j, a := range n.Args {
			args[j] = []any{a.Node, a.Index}
		}
		m := map[string]any{
			"id":   n.ID,
			"op":   string(n.Op),
			"args": args,
			"outs": n.Outs,
		}
		if n.HasAngle {
			m["angle"] = n.Angle
		}
		nodes[i] = m
	}
	return map[string]any{"nodes": nodes}
}

func unaryOp(g clifford.Gate) (Op, error) {
	switch g {
	case clifford.H:
		return OpH, nil
	case clifford.X:
		return OpX, nil
	case clifford.Z:
		return OpZ, nil
	case clifford.S:
		return OpS, nil
	default:
		return "", fmt.Errorf("dataflow: unary gate %v not supported", g)
	}
}
