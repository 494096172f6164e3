package pattern

// Validate checks every stream-order invariant of the pattern and returns
// the first violation as a *Error, or nil when the pattern is well formed.
//
// The pass is a single forward scan tracking two sets: live nodes (prepared
// or declared input, not yet measured) and measured nodes. Validation is a
// precondition for conversion (fail fast); the engine assumes a validated
// pattern but still enforces its own state-machine checks.
func (p *Pattern) Validate() error {
	live := make(map[NodeID]bool, len(p.Inputs))
	measured := make(map[NodeID]bool)

	for _, n := range p.Inputs {
		if live[n] {
			return NewStructuralError(-1, n, "duplicate input node %d", n)
		}
		live[n] = true
	}

	for pos, cmd := range p.Commands {
		switch c := cmd.(type) {
		case PrepareCmd:
			if live[c.Node] || measured[c.Node] {
				return NewStructuralError(pos, c.Node, "node %d already prepared", c.Node)
			}
			live[c.Node] = true

		case EntangleCmd:
			if c.A == c.B {
				return NewStructuralError(pos, c.A, "entangle requires two distinct nodes")
			}
			if err := requireLive(pos, c.A, live, measured); err != nil {
				return err
			}
			if err := requireLive(pos, c.B, live, measured); err != nil {
				return err
			}

		case MeasureCmd:
			if err := requireLive(pos, c.Node, live, measured); err != nil {
				return err
			}
			if !ValidPlanes[c.Plane] {
				return NewStructuralError(pos, c.Node, "unknown measurement plane %q", c.Plane)
			}
			if err := requireMeasured(pos, c.Node, c.Domain, measured); err != nil {
				return err
			}
			delete(live, c.Node)
			measured[c.Node] = true

		case CorrectXCmd:
			if err := requireLive(pos, c.Node, live, measured); err != nil {
				return err
			}
			if err := requireMeasured(pos, c.Node, c.Domain, measured); err != nil {
				return err
			}

		case CorrectZCmd:
			if err := requireLive(pos, c.Node, live, measured); err != nil {
				return err
			}
			if err := requireMeasured(pos, c.Node, c.Domain, measured); err != nil {
				return err
			}

		case CliffordCmd:
			if err := requireLive(pos, c.Node, live, measured); err != nil {
				return err
			}
			if c.Index < 0 || c.Index >= CliffordOrder {
				return NewCliffordIndexError(pos, c.Node, c.Index)
			}

		default:
			// Unreachable: Command is sealed to this package.
			return NewStructuralError(pos, -1, "unknown command type %T", cmd)
		}
	}

	for _, n := range p.Outputs {
		if !live[n] {
			return NewIncompleteOutputError(n)
		}
	}
	return nil
}

// requireLive checks that node owns a live wire at this point in the stream.
func requireLive(pos int, node NodeID, live, measured map[NodeID]bool) *Error {
	if live[node] {
		return nil
	}
	if measured[node] {
		return NewStructuralError(pos, node, "node %d already measured", node)
	}
	return NewStructuralError(pos, node, "node %d referenced before preparation", node)
}

// requireMeasured checks that every domain entry names an already-measured
// node (no forward references).
func requireMeasured(pos int, node NodeID, domain []NodeID, measured map[NodeID]bool) *Error {
	for _, d := range domain {
		if !measured[d] {
			return NewDomainError(pos, node, "domain references unmeasured node %d", d)
		}
	}
	return nil
}
