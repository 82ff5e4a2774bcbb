package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type statusErr struct {
	status int
	msg    string
}

func (e statusErr) Error() string   { return e.msg }
func (e statusErr) HTTPStatus() int { return e.status }

func TestCategorizeStatusErrors(t *testing.T) {
	testCases := []struct {
		status  int
		expect  ErrorType
		hasHint bool
		wrapped bool
		name    string
	}{
		{400, ErrorTypeValidation, false, false, "bad request"},
		{401, ErrorTypeAuth, true, false, "unauthorized"},
		{403, ErrorTypeForbidden, false, false, "forbidden"},
		{404, ErrorTypeNotFound, false, true, "not found wrapped"},
		{429, ErrorTypeRateLimit, true, false, "rate limited"},
		{503, ErrorTypeServer, true, false, "server"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var err error = statusErr{tc.status, "server says no"}
			if tc.wrapped {
				err = fmt.Errorf("fetching group: %w", err)
			}

			got := CategorizeError(err)
			if got.Type != tc.expect {
				t.Errorf("Expected type %s, got %s", tc.expect, got.Type)
			}
			if got.StatusCode != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, got.StatusCode)
			}
			if (got.Suggestion != "") != tc.hasHint {
				t.Errorf("Unexpected suggestion %q", got.Suggestion)
			}
		})
	}
}

func TestCategorizeKeepsServerMessage(t *testing.T) {
	got := CategorizeError(statusErr{403, "Only admins can add members"})
	if got.Message != "Only admins can add members" {
		t.Errorf("Expected server message, got %q", got.Message)
	}
}

func TestCategorizeTransportErrors(t *testing.T) {
	got := CategorizeError(errors.New("dial tcp 127.0.0.1:5001: connect: connection refused"))
	if got.Type != ErrorTypeNetwork {
		t.Errorf("Expected network error, got %s", got.Type)
	}

	got = CategorizeError(errors.New("something odd"))
	if got.Type != ErrorTypeUnknown || got.Message != "something odd" {
		t.Errorf("Unexpected categorization %+v", got)
	}
}

func TestCategorizePassesCLIErrorThrough(t *testing.T) {
	original := NotLoggedIn()
	if CategorizeError(fmt.Errorf("wrap: %w", original)) != original {
		t.Error("Expected the wrapped CLIError to be returned as is")
	}
}

func TestFormatError(t *testing.T) {
	if FormatError(nil) != "" {
		t.Error("Expected empty string for nil error")
	}

	out := FormatError(SessionExpired())
	if !strings.Contains(out, "Error (auth): Your session has expired") {
		t.Errorf("Unexpected message line: %q", out)
	}
	if !strings.Contains(out, "Hint: Run 'chatctl auth login'") {
		t.Errorf("Expected hint line: %q", out)
	}
}
