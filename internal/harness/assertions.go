package harness

import (
	"fmt"
	"strings"
)

// EvaluateAssertions checks every assertion against the result and returns
// one message per failure. An empty slice means all assertions held.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if msg := evaluateAssertion(result, &a); msg != "" {
			failures = append(failures, fmt.Sprintf("assertions[%d] (%s): %s", i, a.Type, msg))
		}
	}
	return failures
}

func evaluateAssertion(result *Result, a *Assertion) string {
	switch a.Type {
	case AssertRenderContains:
		if !strings.Contains(result.Render, a.Text) {
			return fmt.Sprintf("render does not contain %q", a.Text)
		}
	case AssertOpCount:
		if result.Stats.OpCounts == nil {
			return fmt.Sprintf("op_count is not supported for the %s backend", result.Backend)
		}
		if got := result.Stats.OpCounts[a.Op]; got != a.Count {
			return fmt.Sprintf("op %q: expected %d occurrences, got %d", a.Op, a.Count, got)
		}
	case AssertConditionalCount:
		if got := result.Stats.ConditionalCount; got != a.Count {
			return fmt.Sprintf("expected %d conditional corrections, got %d", a.Count, got)
		}
	case AssertOutcomeCount:
		if got := result.Stats.Outcomes; got != a.Count {
			return fmt.Sprintf("expected %d outcomes, got %d", a.Count, got)
		}
	case AssertOutputCount:
		if got := result.Stats.Outputs; got != a.Count {
			return fmt.Sprintf("expected %d outputs, got %d", a.Count, got)
		}
	case AssertFingerprint:
		if result.Fingerprint != a.Value {
			return fmt.Sprintf("expected fingerprint %s, got %s", a.Value, result.Fingerprint)
		}
	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type)
	}
	return ""
}
