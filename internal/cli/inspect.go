package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/weft/internal/pattern"
	"github.com/roach88/weft/internal/patterndef"
	"github.com/roach88/weft/internal/trace"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	TraceDB string // when set, recorded runs for the pattern are listed
}

// InspectResult is the JSON payload for the inspect command.
type InspectResult struct {
	Hash     string         `json:"hash"`
	Inputs   []int          `json:"inputs"`
	Outputs  []int          `json:"outputs"`
	Commands int            `json:"commands"`
	Kinds    map[string]int `json:"kinds"`
	Measured []int          `json:"measured_non_outputs"`
	Runs     []RunSummary   `json:"runs,omitempty"`
}

// RunSummary is one recorded run in inspect output.
type RunSummary struct {
	ID          string `json:"id"`
	Backend     string `json:"backend"`
	Fingerprint string `json:"fingerprint"`
	Outputs     int    `json:"outputs"`
	Outcomes    int    `json:"outcomes"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <pattern.cue>",
		Short: "Summarize a pattern definition",
		Long: `Summarize a CUE pattern definition: its canonical hash, node roles,
and command breakdown by kind. With --trace, recorded conversion runs
of this pattern are listed from the trace database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspectCmd(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.TraceDB, "trace", "", "list recorded runs from a SQLite trace database")

	return cmd
}

func runInspectCmd(rootOpts *RootOptions, opts *InspectOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	p, err := patterndef.LoadFile(path)
	if err != nil {
		code, msg := classifyError(err)
		_ = formatter.Error(code, msg, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, msg))
	}

	hash, err := p.Hash()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash pattern", err)
	}

	result := InspectResult{
		Hash:     hash,
		Inputs:   nodeInts(p.Inputs),
		Outputs:  nodeInts(p.Outputs),
		Commands: len(p.Commands),
		Kinds:    commandKinds(p),
		Measured: nodeInts(p.MeasuredNonOutputs()),
	}

	if opts.TraceDB != "" {
		store, err := trace.Open(opts.TraceDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open trace database", err)
		}
		defer store.Close()

		runs, err := store.ListRuns(cmd.Context(), hash)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		for _, run := range runs {
			result.Runs = append(result.Runs, RunSummary{
				ID:          run.ID,
				Backend:     run.Backend,
				Fingerprint: run.Fingerprint,
				Outputs:     run.Outputs,
				Outcomes:    run.Outcomes,
			})
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "pattern %s\n", result.Hash)
	fmt.Fprintf(formatter.Writer, "  inputs:   %v\n", result.Inputs)
	fmt.Fprintf(formatter.Writer, "  outputs:  %v\n", result.Outputs)
	fmt.Fprintf(formatter.Writer, "  measured: %v\n", result.Measured)
	fmt.Fprintf(formatter.Writer, "  commands: %d\n", result.Commands)
	for _, kind := range []string{"N", "E", "M", "X", "Z", "C"} {
		if n := result.Kinds[kind]; n > 0 {
			fmt.Fprintf(formatter.Writer, "    %s: %d\n", kind, n)
		}
	}
	for _, run := range result.Runs {
		fmt.Fprintf(formatter.Writer, "run %s backend=%s fingerprint=%s\n", run.ID, run.Backend, run.Fingerprint)
	}
	return nil
}

// commandKinds counts commands by kind letter.
func commandKinds(p *pattern.Pattern) map[string]int {
	kinds := make(map[string]int)
	for _, cmd := range p.Commands {
		switch cmd.(type) {
		case pattern.PrepareCmd:
			kinds["N"]++
		case pattern.EntangleCmd:
			kinds["E"]++
		case pattern.MeasureCmd:
			kinds["M"]++
		case pattern.CorrectXCmd:
			kinds["X"]++
		case pattern.CorrectZCmd:
			kinds["Z"]++
		case pattern.CliffordCmd:
			kinds["C"]++
		}
	}
	return kinds
}

func nodeInts(nodes []pattern.NodeID) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = int(n)
	}
	return out
}
