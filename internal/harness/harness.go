// Package harness provides a conformance testing framework for the
// pattern-to-target conversion pipeline.
//
// A scenario names a pattern definition and a backend; the harness loads
// and validates the pattern, converts it, and evaluates assertions on the
// rendered target and its structural counts. Golden file comparison of
// the rendered target is available through RunWithGolden.
//
// Every scenario runs a fresh backend instance, so results are fully
// deterministic: the same pattern and backend always produce the same
// render and fingerprint.
package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/weft/internal/backend/circuit"
	"github.com/roach88/weft/internal/backend/codegen"
	"github.com/roach88/weft/internal/backend/dataflow"
	"github.com/roach88/weft/internal/convert"
	"github.com/roach88/weft/internal/pattern"
	"github.com/roach88/weft/internal/patterndef"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the pattern definition from the scenario's CUE file
//  2. Convert through the named backend (validation happens inside Convert)
//  3. Collect render, fingerprint, and structural counts
//  4. Evaluate assertions and record failures on the result
func Run(scenario *Scenario) (*Result, error) {
	p, err := patterndef.LoadFile(scenario.Pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern: %w", err)
	}

	hash, err := p.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed to hash pattern: %w", err)
	}

	result := &Result{
		ScenarioName: scenario.Name,
		Backend:      scenario.Backend,
		PatternHash:  hash,
	}

	// Suppress engine logs during scenario runs.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	switch scenario.Backend {
	case BackendDataflow:
		err = runDataflow(p, logger, result)
	case BackendCodegen:
		err = runCodegen(p, logger, result)
	case BackendCircuit:
		err = runCircuit(p, logger, result)
	default:
		return nil, fmt.Errorf("unknown backend %q", scenario.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("conversion failed: %w", err)
	}

	result.Stats.Outputs = len(p.Outputs)
	result.Stats.Outcomes = len(p.MeasuredNonOutputs())

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func runDataflow(p *pattern.Pattern, logger *slog.Logger, result *Result) error {
	g := dataflow.New()
	if err := convert.Convert[dataflow.Port, dataflow.Port](p, g, convert.WithLogger[dataflow.Port, dataflow.Port](logger)); err != nil {
		return err
	}
	fp, err := g.Fingerprint()
	if err != nil {
		return err
	}
	result.Render = g.Render()
	result.Fingerprint = fp
	result.Stats.OpCounts = make(map[string]int)
	for _, n := range g.Nodes() {
		result.Stats.OpCounts[string(n.Op)]++
	}
	result.Stats.ConditionalCount = g.OpCount(dataflow.OpCondX) + g.OpCount(dataflow.OpCondZ)
	return nil
}

func runCodegen(p *pattern.Pattern, logger *slog.Logger, result *Result) error {
	prog := codegen.New()
	if err := convert.Convert[string, string](p, prog, convert.WithLogger[string, string](logger)); err != nil {
		return err
	}
	fp, err := prog.Fingerprint()
	if err != nil {
		return err
	}
	result.Render = prog.Code()
	result.Fingerprint = fp
	result.Stats.ConditionalCount = prog.ConditionalCount()
	result.Stats.Lines = prog.LineCount()
	return nil
}

func runCircuit(p *pattern.Pattern, logger *slog.Logger, result *Result) error {
	c := circuit.New()
	if err := convert.Convert[circuit.QubitRef, circuit.BitRef](p, c, convert.WithLogger[circuit.QubitRef, circuit.BitRef](logger)); err != nil {
		return err
	}
	fp, err := c.Fingerprint()
	if err != nil {
		return err
	}
	result.Render = c.Render()
	result.Fingerprint = fp
	result.Stats.OpCounts = make(map[string]int)
	for _, cmd := range c.Commands() {
		result.Stats.OpCounts[cmd.Op]++
	}
	result.Stats.ConditionalCount = c.ConditionalCount()
	return nil
}
