// Package errors defines the raindrip error taxonomy. Every failure surfaced
// to the user carries an HTTP-style status, a message and a machine-actionable
// hint, printed in the active output format before exiting non-zero.
package errors

import (
	"errors"
	"fmt"
)

// CLIError is the user-visible error payload.
type CLIError struct {
	Message string `json:"error"`
	Status  int    `json:"status"`
	Hint    string `json:"hint,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.cause
}

// WithHint overrides the hint and returns the error for chaining.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// hintForStatus maps upstream status codes to default remediation hints.
var hintForStatus = map[int]string{
	400: "Check the command arguments and try again.",
	401: "Authentication failed. Try running 'raindrip login' again.",
	403: "Your token does not have access to this resource.",
	404: "The requested resource was not found. Verify the ID is correct.",
	429: "Rate limited by Raindrop.io. Wait a moment and retry.",
	502: "Raindrop.io appears to be down. Try again later.",
	503: "Network problem reaching Raindrop.io. Check your connection.",
	504: "Raindrop.io kept failing after retries. Try again later.",
}

// HintForStatus returns the default hint for an HTTP status, if any.
func HintForStatus(status int) string {
	return hintForStatus[status]
}

// NewAuthError reports a missing or rejected token.
func NewAuthError(message string) *CLIError {
	return &CLIError{
		Message: message,
		Status:  401,
		Hint:    hintForStatus[401],
	}
}

// NewValidationError reports malformed CLI input, caught before any request.
func NewValidationError(message, hint string) *CLIError {
	if hint == "" {
		hint = hintForStatus[400]
	}
	return &CLIError{
		Message: message,
		Status:  400,
		Hint:    hint,
	}
}

// NewAPIError forwards a non-2xx upstream response.
func NewAPIError(status int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Status:  status,
		Hint:    hintForStatus[status],
	}
}

// NewNetworkError reports a transport-level failure (no HTTP response).
func NewNetworkError(cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Network Error: %v", cause),
		Status:  503,
		Hint:    hintForStatus[503],
		cause:   cause,
	}
}

// NewServerError reports an upstream 5xx that survived all retries.
func NewServerError(status int) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Raindrop.io Server Error: %d", status),
		Status:  502,
		Hint:    hintForStatus[502],
	}
}

// NewRetriesExhausted reports that the retry budget ran out.
func NewRetriesExhausted() *CLIError {
	return &CLIError{
		Message: "Maximum retries exceeded",
		Status:  504,
		Hint:    hintForStatus[504],
	}
}

// WrapCodec wraps a TOON codec failure so it surfaces with a hint.
func WrapCodec(err error) *CLIError {
	return &CLIError{
		Message: err.Error(),
		Status:  500,
		Hint:    "The value could not be (de)serialized. Use --format json to inspect the raw payload.",
		cause:   err,
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Unexpected error: %v", cause),
		Status:  500,
		Hint:    "Check the CLI logs or report this issue.",
		cause:   cause,
	}
}

// AsCLIError extracts a *CLIError from an error chain. Errors outside the
// taxonomy come back wrapped as internal errors so every failure has a
// printable payload.
func AsCLIError(err error) *CLIError {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	return NewInternalError(err)
}
