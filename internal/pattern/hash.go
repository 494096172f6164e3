package pattern

import "github.com/roach88/weft/internal/fingerprint"

// Hash returns the canonical content fingerprint of the pattern.
// Two patterns with identical inputs, outputs, and command streams hash
// identically; the trace store uses this as the pattern's identity.
func (p *Pattern) Hash() (string, error) {
	return fingerprint.Hash(p.canonicalMap())
}

// canonicalMap converts the pattern to the plain-map form the canonical
// JSON encoder accepts.
func (p *Pattern) canonicalMap() map[string]any {
	commands := make([]any, len(p.Commands))
	for i, cmd := range p.Commands {
		commands[i] = commandMap(cmd)
	}
	return map[string]any{
		"inputs":   nodeList(p.Inputs),
		"outputs":  nodeList(p.Outputs),
		"commands": commands,
	}
}

func commandMap(cmd Command) map[string]any {
	switch c := cmd.(type) {
	case PrepareCmd:
		return map[string]any{"kind": "N", "node": int(c.Node)}
	case EntangleCmd:
		return map[string]any{"kind": "E", "nodes": []any{int(c.A), int(c.B)}}
	case MeasureCmd:
		return map[string]any{
			"kind":   "M",
			"node":   int(c.Node),
			"plane":  string(c.Plane),
			"angle":  c.Angle,
			"domain": nodeList(c.Domain),
		}
	case CorrectXCmd:
		return map[string]any{"kind": "X", "node": int(c.Node), "domain": nodeList(c.Domain)}
	case CorrectZCmd:
		return map[string]any{"kind": "Z", "node": int(c.Node), "domain": nodeList(c.Domain)}
	case CliffordCmd:
		return map[string]any{"kind": "C", "node": int(c.Node), "index": c.Index}
	default:
		// Unreachable: Command is sealed to this package.
		return map[string]any{"kind": "?"}
	}
}

func nodeList(nodes []NodeID) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = int(n)
	}
	return out
}
