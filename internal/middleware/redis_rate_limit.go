package middleware

import (
	"context"
	"strconv"
	"time"

	apierrors "github.com/Hicham-Azeroual/chatApplication/internal/errors"
	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/metrics"
	"github.com/Hicham-Azeroual/chatApplication/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WindowCounter counts hits per key in a fixed window shared across instances
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisRateLimitMiddleware limits requests per client IP with a fixed
// window kept in Redis, so the limit holds across instances
func RedisRateLimitMiddleware(counter WindowCounter, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := counter.Hit(ctx, clientIP, window)
		if err != nil {
			// A broken limiter must not open the API up
			logger.Log.Error("Rate limit check failed, rejecting request",
				logger.WithIP(clientIP),
				zap.Error(err),
			)
			util.RespondWithAPIError(c, apierrors.ServiceUnavailable("rate limiter"))
			return
		}

		remaining := int64(maxRequests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(maxRequests) {
			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(clientIP),
				zap.Int("max_requests", maxRequests),
				zap.Int64("current_requests", count),
			)
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			metrics.RecordRateLimitExceeded(c.FullPath(), c.Request.Method)
			util.RespondWithAPIError(c, apierrors.RateLimited("Too many requests, please try again later"))
			return
		}

		c.Next()
	}
}
