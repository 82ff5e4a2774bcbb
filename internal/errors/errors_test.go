package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
		msg    string
	}{
		{"not found", NotFound("Message"), http.StatusNotFound, "Message not found"},
		{"bad request", BadRequest("All fields are required"), http.StatusBadRequest, "All fields are required"},
		{"forbidden", Forbidden("Only admins can add members"), http.StatusForbidden, "Only admins can add members"},
		{"unauthorized", Unauthorized("Unauthorized - No Token Provided"), http.StatusUnauthorized, "Unauthorized - No Token Provided"},
		{"internal", InternalError("boom"), http.StatusInternalServerError, "boom"},
		{"rate limited", RateLimited(""), http.StatusTooManyRequests, "rate limit exceeded"},
		{"unavailable", ServiceUnavailable("Redis"), http.StatusServiceUnavailable, "Redis is temporarily unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.status, tt.err.Code.StatusCode())
			assert.Equal(t, tt.msg, tt.err.Message)
		})
	}
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	forbidden := Forbidden("nope")
	assert.Same(t, forbidden, From(fmt.Errorf("wrapped: %w", forbidden)))

	notFound := From(fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound))
	assert.Equal(t, http.StatusNotFound, notFound.Status)

	internal := From(fmt.Errorf("disk full"))
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, "disk full", internal.Details)
}

func TestUnknownCodeMapsTo500(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, ErrorCode("SOMETHING_ELSE").StatusCode())
}
