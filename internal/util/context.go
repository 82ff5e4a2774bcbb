package util

import (
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
)

// GetUserFromContext extracts the authenticated user from the Gin context.
// If the user is not authenticated, it responds with 401 and returns false.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get(ContextUserKey)
	if !exists {
		RespondUnauthorized(c, "Unauthorized - No Token Provided")
		return nil, false
	}
	userPtr, ok := user.(*models.User)
	if !ok {
		RespondInternalError(c, "invalid user data in context", nil)
		return nil, false
	}
	return userPtr, true
}

// GetUserIDFromContext extracts the user ID from the Gin context.
// If the user is not authenticated, it responds with 401 and returns false.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ContextUserIDKey)
	if !exists {
		RespondUnauthorized(c, "Unauthorized - No Token Provided")
		return "", false
	}
	userIDStr, ok := userID.(string)
	if !ok {
		RespondInternalError(c, "invalid user ID in context", nil)
		return "", false
	}
	return userIDStr, true
}

// SetUser stores the authenticated user the way handlers expect to find it
func SetUser(c *gin.Context, user *models.User) {
	c.Set(ContextUserKey, user)
	c.Set(ContextUserIDKey, user.ID)
}
