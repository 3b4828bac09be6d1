package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsenet/internal/circuit"
	"github.com/roach88/pulsenet/internal/compiler"
)

// Validation error codes.
const (
	ErrCodeNotFound     = "E000" // circuit file missing
	ErrCodeParse        = "E001" // malformed line in the text format
	ErrCodeCompile      = "E002" // invalid CUE circuit
	ErrCodeConstruction = "E003" // duplicate module, missing broadcaster, ...
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // warnings fail validation
}

// ValidationResult is the JSON output of validate.
type ValidationResult struct {
	Valid       bool                    `json:"valid"`
	Hash        string                  `json:"hash,omitempty"`
	Modules     int                     `json:"modules,omitempty"`
	Diagnostics []compiler.Diagnostic   `json:"diagnostics"`
	Loops       []compiler.FeedbackLoop `json:"loops"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <circuit>",
		Short: "Check a circuit without simulating it",
		Long: `Parse and build a circuit, then report structural findings: modules
unreachable from the broadcaster, modules without inputs, self loops,
undeclared sinks, and feedback loops.

Feedback loops made only of conjunctions are warnings: nothing in them
absorbs a High pulse, so a press may never settle.

Exit codes:
  0 - Circuit is valid (warnings allowed unless --strict)
  1 - Circuit is invalid, or has warnings under --strict
  2 - Command error (file not found, etc.)

Examples:
  pulsenet validate circuit.txt
  pulsenet validate circuit.cue --strict --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat warnings as failures")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("circuit file not found: %s", path), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("circuit file not found: %s", path))
	}

	formatter.VerboseLog("Validating %s", path)
	c, err := compiler.LoadCircuit(path)
	if err != nil {
		code := loadErrorCode(path, err)
		_ = formatter.Error(code, err.Error(), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", code, err))
	}

	hash, err := c.Hash()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash circuit", err)
	}

	result := ValidationResult{
		Valid:       true,
		Hash:        hash,
		Modules:     c.Len(),
		Diagnostics: compiler.Diagnose(c),
		Loops:       compiler.AnalyzeLoops(c),
	}
	if result.Diagnostics == nil {
		result.Diagnostics = []compiler.Diagnostic{}
	}
	warnings := countWarnings(result)
	if opts.Strict && warnings > 0 {
		result.Valid = false
	}

	var outErr error
	switch {
	case !formatter.JSON():
		printValidation(formatter, path, result)
	case result.Valid:
		outErr = formatter.Result(result, "")
	default:
		outErr = formatter.Failure(result, "W200", fmt.Sprintf("%d warning(s) under --strict", warnings))
	}
	if outErr != nil {
		return outErr
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d warning(s)", warnings))
	}
	return nil
}

// loadErrorCode classifies a LoadCircuit failure.
func loadErrorCode(path string, err error) string {
	var compileErr *compiler.CompileError
	switch {
	case circuit.IsParseError(err):
		return ErrCodeParse
	case errors.As(err, &compileErr):
		return ErrCodeCompile
	case isConstructionError(err):
		return ErrCodeConstruction
	case filepath.Ext(path) == ".cue":
		return ErrCodeCompile
	default:
		return ErrCodeConstruction
	}
}

func isConstructionError(err error) bool {
	for _, target := range []error{
		circuit.ErrDuplicateModule,
		circuit.ErrNoBroadcaster,
		circuit.ErrBroadcasterKind,
		circuit.ErrMisnamedEntry,
		circuit.ErrEmptyName,
		circuit.ErrEmptyDestination,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// countWarnings counts W-coded diagnostics and warning-level loops.
func countWarnings(r ValidationResult) int {
	n := 0
	for _, d := range r.Diagnostics {
		if strings.HasPrefix(d.Code, "W") {
			n++
		}
	}
	for _, l := range r.Loops {
		if l.Level == "warning" {
			n++
		}
	}
	return n
}

func printValidation(formatter *OutputFormatter, path string, r ValidationResult) {
	w := formatter.Writer
	if r.Valid {
		fmt.Fprintf(w, "✓ %s: %d modules\n", path, r.Modules)
	} else {
		fmt.Fprintf(w, "✗ %s: %d modules\n", path, r.Modules)
	}
	formatter.VerboseLog("Hash: %s", r.Hash)

	for _, d := range r.Diagnostics {
		fmt.Fprintf(w, "  %s\n", d.Error())
	}
	for _, l := range r.Loops {
		fmt.Fprintf(w, "  %s\n", l)
	}
}
