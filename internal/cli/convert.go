package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/weft/internal/convert"
	"github.com/roach88/weft/internal/patterndef"
	"github.com/roach88/weft/internal/trace"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	Backend string
	Out     string // output file; stdout when empty
	TraceDB string // sqlite path; recording disabled when empty
}

// ConvertResult is the JSON payload for a successful conversion.
type ConvertResult struct {
	Backend     string `json:"backend"`
	PatternHash string `json:"pattern_hash"`
	Fingerprint string `json:"fingerprint"`
	Render      string `json:"render"`
	RunID       string `json:"run_id,omitempty"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <pattern.cue>",
		Short: "Convert a pattern to a target representation",
		Long: `Convert a CUE pattern definition through one backend.

The dataflow backend emits a graph listing, codegen emits DSL source,
and circuit emits a gate-command listing. With --trace, the conversion's
command stream is recorded to a SQLite database for later inspection
and verification.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvertCmd(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Backend, "backend", "b", BackendDataflow, "target backend (dataflow|codegen|circuit)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the rendered target to a file instead of stdout")
	cmd.Flags().StringVar(&opts.TraceDB, "trace", "", "record the conversion to a SQLite trace database")

	return cmd
}

func runConvertCmd(rootOpts *RootOptions, opts *ConvertOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	if !isValidBackend(opts.Backend) {
		msg := fmt.Sprintf("unknown backend %q: must be one of %v", opts.Backend, ValidBackends)
		_ = formatter.Error("BACKEND", msg, nil)
		return NewExitError(ExitCommandError, msg)
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

	var obs convert.Observer
	var recorder *trace.Recorder
	if opts.TraceDB != "" {
		recorder = trace.NewRecorder()
		obs = recorder
	}

	conv, err := runConversion(p, opts.Backend, obs)
	if err != nil {
		code, msg := classifyError(err)
		_ = formatter.Error(code, msg, nil)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", code, msg))
	}

	formatter.VerboseLog("Converted %d commands via %s (fingerprint %s)",
		len(p.Commands), opts.Backend, conv.Fingerprint)

	result := ConvertResult{
		Backend:     opts.Backend,
		PatternHash: hash,
		Fingerprint: conv.Fingerprint,
		Render:      conv.Render,
	}

	if recorder != nil {
		run, err := commitTrace(cmd, recorder, opts.TraceDB, hash, opts.Backend, conv.Fingerprint)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record trace", err)
		}
		result.RunID = run.ID
		formatter.VerboseLog("Recorded run %s to %s", run.ID, opts.TraceDB)
	}

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, []byte(conv.Render), 0644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output file", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if opts.Out == "" {
		fmt.Fprint(formatter.Writer, conv.Render)
	}
	if result.RunID != "" {
		fmt.Fprintf(formatter.Writer, "run: %s\n", result.RunID)
	}
	return nil
}

func commitTrace(cmd *cobra.Command, rec *trace.Recorder, dbPath, patternHash, backend, fingerprint string) (*trace.Run, error) {
	store, err := trace.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return rec.Commit(cmd.Context(), store, trace.UUIDv7Generator{}, patternHash, backend, fingerprint)
}
