package api

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse is the server's error body
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
	// Some middleware answers with {"error": "..."}
	Error string `json:"error,omitempty"`
}

// APIError represents an API error response
type APIError struct {
	Code       string
	Message    string
	Field      string
	StatusCode int
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus exposes the status for error categorization
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// ParseError builds an APIError from a failed response
func ParseError(resp *resty.Response) error {
	status := resp.StatusCode()

	var body ErrorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		if msg != "" {
			return &APIError{Code: body.Code, Message: msg, Field: body.Field, StatusCode: status}
		}
	}

	return &APIError{
		Code:       "unknown_error",
		Message:    fmt.Sprintf("request failed: %s", resp.Status()),
		StatusCode: status,
	}
}

// CheckResponse turns a transport error or a non-2xx response into an error
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return ParseError(resp)
	}
	return nil
}
