package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tollsim/internal/config"
)

// ErrCodeGeneric is used for problems that are not validation errors, such
// as an unreadable file.
const ErrCodeGeneric = "E200"

// FileValidation holds the validation result of one file.
type FileValidation struct {
	Path   string                   `json:"path"`
	Valid  bool                     `json:"valid"`
	Errors []config.ValidationError `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate plaza configuration files",
		Long: `Validate plaza configuration files (.yaml, .yml or .cue) against the
plaza schema: booths >= lanes, probabilities in range, service mode
fixed or exponential, a_min <= a_max.

All errors of every file are reported; validation does not stop at the
first problem.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		fv := validateFile(path)
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if result.Valid {
		return outputValidateSuccess(formatter, result)
	}
	return outputValidationErrors(formatter, result)
}

// validateFile loads one file and collects its errors.
func validateFile(path string) FileValidation {
	_, err := config.Load(path)
	if err == nil {
		return FileValidation{Path: path, Valid: true}
	}
	if errs, ok := config.AsValidationErrors(err); ok {
		return FileValidation{Path: path, Errors: errs}
	}
	return FileValidation{
		Path: path,
		Errors: []config.ValidationError{{
			Field:   "file",
			Message: err.Error(),
			Code:    ErrCodeGeneric,
		}},
	}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %d file(s) valid\n", len(result.Files))
	return nil
}

// outputValidationErrors outputs every error of every invalid file.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	var first config.ValidationError
	count := 0
	for _, f := range result.Files {
		if count == 0 && len(f.Errors) > 0 {
			first = f.Errors[0]
		}
		count += len(f.Errors)
	}

	if formatter.JSON() {
		if err := formatter.Error(first.Code, first.Message, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", count))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, f := range result.Files {
		if f.Valid {
			fmt.Fprintf(formatter.Writer, "✓ %s\n", f.Path)
			continue
		}
		fmt.Fprintf(formatter.Writer, "✗ %s\n", f.Path)
		for _, err := range f.Errors {
			if err.Line > 0 {
				fmt.Fprintf(formatter.Writer, "  line %d\n", err.Line)
			}
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", err.Code, err.Field, err.Message)
		}
		fmt.Fprintln(formatter.Writer)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", count))
}
