package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/weft/internal/pattern"
	"github.com/roach88/weft/internal/patterndef"
)

// ValidationResult holds validation results for JSON output.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Hash  string `json:"hash,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <pattern.cue>",
		Short: "Validate a pattern definition without converting it",
		Long: `Validate a CUE pattern definition without running a conversion.

Checks the file against the pattern schema and verifies the command
stream's structural invariants: single preparation per node, no
operations on measured nodes, measured correction domains, in-range
Clifford indices, and live outputs.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateCmd(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidateCmd(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	p, err := patterndef.LoadFile(path)
	if err != nil {
		code, msg := classifyError(err)
		_ = formatter.Error(code, msg, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, msg))
	}

	formatter.VerboseLog("Loaded pattern: %d inputs, %d outputs, %d commands",
		len(p.Inputs), len(p.Outputs), len(p.Commands))

	if err := p.Validate(); err != nil {
		code, msg := classifyError(err)
		_ = formatter.Error(code, msg, nil)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", code, msg))
	}

	hash, err := p.Hash()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash pattern", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Hash: hash})
	}
	fmt.Fprintf(formatter.Writer, "✓ Pattern valid (hash %s)\n", hash)
	return nil
}

// classifyError maps loader and pattern errors to their taxonomy codes.
func classifyError(err error) (code, msg string) {
	var loadErr *patterndef.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Error()
	}
	var patErr *pattern.Error
	if errors.As(err, &patErr) {
		return string(patErr.Code), patErr.Error()
	}
	return "UNKNOWN", err.Error()
}
