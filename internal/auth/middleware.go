package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CookieName is the session cookie set on signup and login
const CookieName = "jwt"

// Messages returned by Middleware
const (
	msgNoToken      = "Unauthorized - No Token Provided"
	msgInvalidToken = "Unauthorized - Invalid Token"
	msgUserNotFound = "User not found"
)

// TokenValidator resolves a session token to its user
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.User, error)
}

// CookieOptions controls how the session cookie is written
type CookieOptions struct {
	MaxAge time.Duration
	Domain string
	Secure bool
}

// TokenFromRequest returns the session token from the jwt cookie or a
// Bearer Authorization header, cookie first.
func TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// Middleware rejects requests without a valid session and stores the
// user under util.ContextUserKey / util.ContextUserIDKey.
func Middleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			util.RespondUnauthorized(c, msgNoToken)
			return
		}

		user, err := tokens.ValidateToken(token)
		switch {
		case err == nil:
		case errors.Is(err, ErrUserNotFound):
			util.RespondUnauthorized(c, msgUserNotFound)
			return
		case errors.Is(err, ErrInvalidToken):
			util.RespondUnauthorized(c, msgInvalidToken)
			return
		default:
			logger.Log.Error("Token validation failed", zap.Error(err))
			util.RespondError(c, err)
			return
		}

		util.SetUser(c, user)
		c.Next()
	}
}

// SetSessionCookie writes the httpOnly session cookie
func SetSessionCookie(c *gin.Context, token string, opts CookieOptions) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token, int(opts.MaxAge.Seconds()), "/", opts.Domain, opts.Secure, true)
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", opts.Domain, opts.Secure, true)
}
