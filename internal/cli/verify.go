package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/weft/internal/patterndef"
	"github.com/roach88/weft/internal/trace"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	TraceDB string
	RunID   string // verify one run; all recorded runs for the pattern when empty
}

// VerifyResult is the JSON payload for the verify command.
type VerifyResult struct {
	PatternHash string       `json:"pattern_hash"`
	Runs        []RunVerdict `json:"runs"`
	AllMatch    bool         `json:"all_match"`
}

// RunVerdict is the verification outcome for one recorded run.
type RunVerdict struct {
	ID       string `json:"id"`
	Backend  string `json:"backend"`
	Recorded string `json:"recorded_fingerprint"`
	Computed string `json:"computed_fingerprint"`
	Match    bool   `json:"match"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify <pattern.cue>",
		Short: "Re-run recorded conversions and compare fingerprints",
		Long: `Re-convert a pattern and compare the fresh target fingerprint against
recorded runs in a trace database. Conversion is deterministic, so any
mismatch means either the pattern file or the converter changed since
the run was recorded.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerifyCmd(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.TraceDB, "trace", "", "SQLite trace database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "verify a single run by ID")
	_ = cmd.MarkFlagRequired("trace")

	return cmd
}

func runVerifyCmd(rootOpts *RootOptions, opts *VerifyOptions, path string, cmd *cobra.Command) error {
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

	store, err := trace.Open(opts.TraceDB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open trace database", err)
	}
	defer store.Close()

	var runs []trace.Run
	if opts.RunID != "" {
		run, err := store.ReadRun(cmd.Context(), opts.RunID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		if run.PatternHash != hash {
			msg := fmt.Sprintf("run %s was recorded for pattern %s, not %s", run.ID, run.PatternHash, hash)
			_ = formatter.Error("PATTERN_MISMATCH", msg, nil)
			return NewExitError(ExitFailure, msg)
		}
		runs = []trace.Run{*run}
	} else {
		runs, err = store.ListRuns(cmd.Context(), hash)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		if len(runs) == 0 {
			msg := fmt.Sprintf("no recorded runs for pattern %s", hash)
			_ = formatter.Error("NO_RUNS", msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
	}

	// Convert once per distinct backend; runs of the same backend share
	// the computed fingerprint.
	computed := make(map[string]string)
	result := VerifyResult{PatternHash: hash, AllMatch: true}
	for _, run := range runs {
		fp, ok := computed[run.Backend]
		if !ok {
			conv, err := runConversion(p, run.Backend, nil)
			if err != nil {
				code, msg := classifyError(err)
				_ = formatter.Error(code, msg, nil)
				return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", code, msg))
			}
			fp = conv.Fingerprint
			computed[run.Backend] = fp
		}

		verdict := RunVerdict{
			ID:       run.ID,
			Backend:  run.Backend,
			Recorded: run.Fingerprint,
			Computed: fp,
			Match:    run.Fingerprint == fp,
		}
		if !verdict.Match {
			result.AllMatch = false
		}
		result.Runs = append(result.Runs, verdict)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, v := range result.Runs {
			mark := "✓"
			if !v.Match {
				mark = "✗"
			}
			fmt.Fprintf(formatter.Writer, "%s run %s backend=%s\n", mark, v.ID, v.Backend)
			if !v.Match {
				fmt.Fprintf(formatter.Writer, "  recorded %s\n  computed %s\n", v.Recorded, v.Computed)
			}
		}
	}

	if !result.AllMatch {
		return NewExitError(ExitFailure, "fingerprint mismatch")
	}
	return nil
}
