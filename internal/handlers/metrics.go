package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/database"
	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger is an optional dependency checked by the health endpoint
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports database, Redis and realtime status
type HealthHandler struct {
	hub   *websocket.Hub
	redis Pinger
}

// NewHealthHandler creates the health handler. redis may be nil.
func NewHealthHandler(hub *websocket.Hub, redis Pinger) *HealthHandler {
	return &HealthHandler{hub: hub, redis: redis}
}

// Health handles GET /health: 200 when the database answers, 503 otherwise.
// Redis is reported but never fails the check.
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	}

	if err := database.Health(); err != nil {
		logger.Log.Error("Health check: database unreachable", zap.Error(err))
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "unreachable"
	} else {
		body["database"] = "ok"
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx); err != nil {
			logger.Log.Warn("Health check: redis unreachable", zap.Error(err))
			body["redis"] = "unreachable"
		} else {
			body["redis"] = "ok"
		}
	}

	if h.hub != nil {
		body["websocket"] = h.hub.GetMetrics()
	}

	c.JSON(status, body)
}
