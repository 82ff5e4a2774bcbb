package util

import (
	"net/http"

	"github.com/Hicham-Azeroual/chatApplication/internal/errors"
	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// MessageResponse is the body of operations that only confirm success
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondWithAPIError sends a structured API error response
func RespondWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	fields := []zap.Field{
		zap.String("code", string(apiErr.Code)),
		zap.String("message", apiErr.Message),
		zap.String("path", c.FullPath()),
		zap.Int("status", apiErr.Status),
	}
	if apiErr.Field != "" {
		fields = append(fields, zap.String("field", apiErr.Field))
	}

	if apiErr.Status >= http.StatusInternalServerError {
		// Internal details stay in the log, never in the body
		logger.Log.Error("API error", append(fields, zap.String("details", apiErr.Details))...)
		apiErr = &errors.APIError{Code: apiErr.Code, Message: apiErr.Message, Status: apiErr.Status}
	} else if apiErr.Status >= http.StatusBadRequest {
		logger.Log.Warn("API error", fields...)
	}

	c.AbortWithStatusJSON(apiErr.Status, ErrorResponse{
		Code:    string(apiErr.Code),
		Message: apiErr.Message,
		Field:   apiErr.Field,
		Details: apiErr.Details,
	})
}

// RespondError converts any error returned by a service into a response
func RespondError(c *gin.Context, err error) {
	RespondWithAPIError(c, errors.From(err))
}

// RespondMessage sends a 200 with a confirmation message
func RespondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Message: message})
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message ...string) {
	msg := "Unauthorized"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	RespondWithAPIError(c, errors.Unauthorized(msg))
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, errors.NotFound(resource))
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Bad request"
	}
	RespondWithAPIError(c, errors.BadRequest(message))
}

// RespondInternalError sends a 500 Internal Server Error response
func RespondInternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "Internal server error"
	}
	apiErr := errors.InternalError(message)
	if err != nil {
		apiErr = apiErr.WithDetails(err.Error())
	}
	RespondWithAPIError(c, apiErr)
}
