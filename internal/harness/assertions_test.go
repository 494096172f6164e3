package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	return &Result{
		ScenarioName: "sample",
		Backend:      BackendCircuit,
		Render:       "circuit q=1 m=1\nh q[0]\nmeasure q[0] -> m[0]\noutputs:\nreadouts: m[0]\n",
		Fingerprint:  "abc123",
		Stats: Stats{
			OpCounts:         map[string]int{"h": 1, "measure": 1},
			ConditionalCount: 0,
			Outputs:          0,
			Outcomes:         1,
		},
	}
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	failures := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertRenderContains, Text: "measure q[0]"},
		{Type: AssertOpCount, Op: "h", Count: 1},
		{Type: AssertOpCount, Op: "cz", Count: 0},
		{Type: AssertConditionalCount, Count: 0},
		{Type: AssertOutcomeCount, Count: 1},
		{Type: AssertOutputCount, Count: 0},
		{Type: AssertFingerprint, Value: "abc123"},
	})
	assert.Empty(t, failures)
}

func TestEvaluateAssertions_RenderContainsFails(t *testing.T) {
	failures := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertRenderContains, Text: "cz q[0]"},
	})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], `render does not contain "cz q[0]"`)
}

func TestEvaluateAssertions_OpCountMismatch(t *testing.T) {
	failures := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertOpCount, Op: "h", Count: 3},
	})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], `op "h": expected 3 occurrences, got 1`)
}

func TestEvaluateAssertions_OpCountUnsupportedBackend(t *testing.T) {
	result := sampleResult()
	result.Backend = BackendCodegen
	result.Stats.OpCounts = nil

	failures := EvaluateAssertions(result, []Assertion{
		{Type: AssertOpCount, Op: "h", Count: 1},
	})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "op_count is not supported for the codegen backend")
}

func TestEvaluateAssertions_FingerprintMismatch(t *testing.T) {
	failures := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertFingerprint, Value: "deadbeef"},
	})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "expected fingerprint deadbeef")
}

// Every failure message is prefixed with its assertion index so a long
// scenario pinpoints which assertion broke.
func TestEvaluateAssertions_IndexedMessages(t *testing.T) {
	failures := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertOutcomeCount, Count: 1},
		{Type: AssertOutputCount, Count: 7},
		{Type: AssertConditionalCount, Count: 4},
	})
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0], "assertions[1] (output_count)")
	assert.Contains(t, failures[1], "assertions[2] (conditional_count)")
}
