package errors

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeAuth         ErrorType = "auth"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeRateLimit    ErrorType = "rate_limit"
	ErrorTypeServer       ErrorType = "server"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// StatusError is implemented by API errors that carry an HTTP status
type StatusError interface {
	error
	HTTPStatus() int
}

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{Type: errorType, Message: message, Cause: cause}
}

// NotLoggedIn is returned by commands that need a session
func NotLoggedIn() *CLIError {
	return NewCLIError(ErrorTypeAuth, "Not logged in", nil).
		WithSuggestion("Run 'chatctl auth login' first.")
}

// SessionExpired is returned when the saved token has passed its expiry
func SessionExpired() *CLIError {
	return NewCLIError(ErrorTypeAuth, "Your session has expired", nil).
		WithSuggestion("Run 'chatctl auth login' to start a new session.")
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	return NewCLIError(ErrorTypeValidation, fmt.Sprintf("%s: %s", field, reason), nil)
}

// FileNotFoundError creates a file not found error
func FileNotFoundError(path string) *CLIError {
	return NewCLIError(ErrorTypeFileNotFound, fmt.Sprintf("File not found: %s", path), nil).
		WithSuggestion("Check the file path and try again.")
}

// CategorizeError converts any error into a CLIError. Server errors keep the
// server's message; transport errors get a suggestion.
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return fromStatus(statusErr.HTTPStatus(), statusErr.Error(), err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewCLIError(ErrorTypeTimeout, "Request timed out", err).
			WithSuggestion("The server is taking too long to respond. Raise api.timeout or try again.")
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"):
		return NewCLIError(ErrorTypeNetwork, "Could not connect to the chat server", err).
			WithSuggestion("Check api.base_url with 'chatctl config show' and make sure the server is running.")
	case strings.Contains(msg, "context deadline exceeded"):
		return NewCLIError(ErrorTypeTimeout, "Request timed out", err)
	default:
		return NewCLIError(ErrorTypeUnknown, msg, err)
	}
}

func fromStatus(status int, message string, cause error) *CLIError {
	e := &CLIError{Message: message, Cause: cause, StatusCode: status}
	switch {
	case status == 401:
		e.Type = ErrorTypeAuth
		e.Suggestion = "Run 'chatctl auth login' to refresh your session."
	case status == 403:
		e.Type = ErrorTypeForbidden
	case status == 404:
		e.Type = ErrorTypeNotFound
	case status == 429:
		e.Type = ErrorTypeRateLimit
		e.Suggestion = "Too many requests. Wait a minute and try again."
	case status >= 500:
		e.Type = ErrorTypeServer
		e.Suggestion = "The server encountered an error. Try again in a few moments."
	case status >= 400:
		e.Type = ErrorTypeValidation
	default:
		e.Type = ErrorTypeUnknown
	}
	return e
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.Suggestion != "" {
		sb.WriteString("Hint: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
