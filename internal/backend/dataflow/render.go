package dataflow

import (
	"fmt"
	"strconv"
	"strings"
)

// Render returns a deterministic one-line-per-node text listing of the
// graph, suitable for golden-file comparison and CLI output.
//
//	n0: input/2
//	n1: prepare
//	n2: cz <- n0.0 n1.0
//	n3: rz(0.25) <- n2.0
//	n4: output <- n2.1 n5.0
func (g *Graph) Render() string {
	var b strings.Builder
	b.WriteString("dataflow graph\n")
	for _, n := range g.nodes {
		fmt.Fprintf(&b, "n%d: %s", n.ID, n.Op)
		if n.HasAngle {
			fmt.Fprintf(&b, "(%s)", strconv.FormatFloat(n.Angle, 'g', -1, 64))
		}
		if n.Op == OpInput {
			fmt.Fprintf(&b, "/%d", n.Outs)
		}
		if len(n.Args) > 0 {
			b.WriteString(" <-")
			for _, a := range n.Args {
				fmt.Fprintf(&b, " %s", a)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
