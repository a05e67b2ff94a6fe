package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ecanvass/hypergeom"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Computation failure (convergence, iteration budget, failed batch lines)
	ExitCommandError = 2 // Command error (bad arguments, unreadable config, store problems)
)

// CLI-level error codes. Engine failures keep their ComputeError codes
// (CONVERGENCE, ITERATION_LIMIT, SELECTOR, ARITHMETIC).
const (
	ErrCodeInput   = "INPUT"   // malformed arguments or batch lines
	ErrCodeConfig  = "CONFIG"  // config file problems
	ErrCodeStore   = "STORE"   // score database problems
	ErrCodeCompute = "COMPUTE" // evaluation failure without a structured code
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
	ErrWriter io.Writer // Separate writer for diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // ComputeError code or CLI-level code
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
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

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// outputCommandError reports a failure that happened before any
// evaluation ran (bad arguments, unreadable config, store setup) and
// maps it to exit code 2.
func outputCommandError(f *OutputFormatter, code, message string) error {
	_ = f.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputComputeError reports an engine failure and maps it to exit
// code 1. The structured fields of a ComputeError ride along as
// details.
func outputComputeError(f *OutputFormatter, err error) error {
	var ce *hypergeom.ComputeError
	if !errors.As(err, &ce) {
		_ = f.Error(ErrCodeCompute, err.Error(), nil)
		return WrapExitError(ExitFailure, "computation failed", err)
	}

	details := map[string]interface{}{
		"k":         ce.Query.K,
		"m":         ce.Query.M,
		"sample":    ce.Query.Sample,
		"n":         ce.Query.N,
		"algorithm": ce.Algorithm.String(),
	}
	if ce.Iterations > 0 {
		details["iterations"] = ce.Iterations
	}
	if ce.Limit != "" {
		details["limit"] = ce.Limit
	}
	_ = f.Error(string(ce.Code), ce.Message, details)
	return WrapExitError(ExitFailure, "computation failed", err)
}
