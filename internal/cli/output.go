package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/ovenledger/internal/ledger"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected action (validation, unknown or already unloaded cylinder)
	ExitCommandError = 2 // Command error (bad flags, unreadable ledger, etc.)
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeValidation      = "E101" // Invalid cylinder fields
	ErrCodeNotFound        = "E102" // Unknown record ID
	ErrCodeAlreadyUnloaded = "E103" // Record already unloaded
	ErrCodeStorageRead     = "E201" // Ledger could not be read
	ErrCodeStorageWrite    = "E202" // Ledger or export could not be written
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for warnings and verbose output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status   string      `json:"status"`             // "ok" or "error"
	Data     interface{} `json:"data,omitempty"`     // success payload
	Error    *CLIError   `json:"error,omitempty"`    // error details
	Warnings []string    `json:"warnings,omitempty"` // non-fatal storage problems
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E101", "E102", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
// In text mode text is printed; in JSON mode data is wrapped in a CLIResponse.
func (f *OutputFormatter) Success(data interface{}, text string, warnings ...string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status:   "ok",
			Data:     data,
			Warnings: warnings,
		})
	}

	fmt.Fprintln(f.Writer, text)
	for _, w := range warnings {
		fmt.Fprintf(f.GetErrWriter(), "Warning: %s\n", w)
	}
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Fail reports err in the configured format and returns the matching
// ExitError. Ledger errors map to their error codes; anything else is E001.
func (f *OutputFormatter) Fail(err error) error {
	code, exit := classify(err)

	var details interface{}
	var verr *ledger.ValidationError
	if errors.As(err, &verr) {
		details = verr.Fields
	}

	_ = f.Error(code, err.Error(), details)
	return WrapExitError(exit, code, err)
}

// classify maps an error to its CLI error code and exit code.
func classify(err error) (string, int) {
	switch {
	case ledger.IsValidation(err):
		return ErrCodeValidation, ExitFailure
	case ledger.IsNotFound(err):
		return ErrCodeNotFound, ExitFailure
	case ledger.IsAlreadyUnloaded(err):
		return ErrCodeAlreadyUnloaded, ExitFailure
	case ledger.IsStorageRead(err):
		return ErrCodeStorageRead, ExitCommandError
	case ledger.IsStorageWrite(err):
		return ErrCodeStorageWrite, ExitCommandError
	default:
		return ErrCodeGeneric, ExitCommandError
	}
}

// warnings splits a mutation result error into warnings. A nil error or one
// made only of *StorageWriteError values is a success with warnings.
func warnings(err error) ([]string, bool) {
	if err == nil {
		return nil, true
	}
	if !ledger.IsStorageWrite(err) {
		return nil, false
	}
	var out []string
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out, true
	}
	return []string{err.Error()}, true
}
