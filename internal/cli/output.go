package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // scenario assertion or validation failure
	ExitCommandError = 2 // command error (missing files, malformed input)
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// ExitError carries a specific exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error, defaulting to
// ExitFailure for plain errors.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Response is the JSON envelope for command output.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error structure inside a Response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// OutputFormatter renders command results as JSON envelopes or
// human-readable text, depending on the configured format.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; kept off Writer so JSON stays parseable
	Verbose   bool
}

// Success renders a successful result.
func (f *OutputFormatter) Success(data any) error {
	return f.emit(Response{Status: statusOK, Data: data})
}

// Error renders a failed result.
func (f *OutputFormatter) Error(code, message string, details any) error {
	return f.emit(Response{
		Status: statusError,
		Error:  &ResponseError{Code: code, Message: message, Details: details},
	})
}

// emit is the single rendering path for both outcomes, so text and JSON
// output can never drift apart per call site.
func (f *OutputFormatter) emit(resp Response) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(resp)
	}
	if resp.Error != nil {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", resp.Error.Code, resp.Error.Message)
		if f.Verbose && resp.Error.Details != nil {
			fmt.Fprintf(f.Writer, "Details: %v\n", resp.Error.Details)
		}
		return nil
	}
	fmt.Fprintln(f.Writer, resp.Data)
	return nil
}

// VerboseLog writes a diagnostic line when verbose mode is on.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
