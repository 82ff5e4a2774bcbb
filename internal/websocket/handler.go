package websocket

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenParser resolves a session token to a user id
type TokenParser interface {
	ParseUserID(token string) (string, error)
}

// Handler handles WebSocket HTTP upgrade requests
type Handler struct {
	hub            *Hub
	tokens         TokenParser
	originPatterns []string
}

// NewHandler creates a new WebSocket handler. tokens may be nil, in which
// case only the userId query parameter identifies the connection.
func NewHandler(hub *Hub, tokens TokenParser, originPatterns ...string) *Handler {
	return &Handler{
		hub:            hub,
		tokens:         tokens,
		originPatterns: originPatterns,
	}
}

// HandleWebSocket upgrades the request and serves the connection until it
// closes. Identity comes from a valid session token (jwt cookie, token
// query parameter or Bearer header) and otherwise from ?userId=. A missing
// or blank id does not reject the upgrade; the connection is simply never
// addressable.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID := h.identify(c)

	opts := &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	}
	if len(h.originPatterns) > 0 {
		opts.OriginPatterns = h.originPatterns
	} else {
		opts.InsecureSkipVerify = true
	}

	conn, err := websocket.Accept(upgradeWriter(c.Writer), c.Request, opts)
	if err != nil {
		logger.Log.Warn("WebSocket upgrade failed", logger.WithIP(c.ClientIP()), zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, userID)
	client.RemoteAddr = c.ClientIP()
	client.UserAgent = c.GetHeader("User-Agent")

	if err := h.hub.Register(client); err != nil && !errors.Is(err, ErrInvalidUserID) {
		// Hub is shutting down
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	client.Send(NewMessage(MessageTypeSystem, SystemPayload{
		Event:   "connected",
		Message: "Welcome",
		Data: map[string]interface{}{
			"userId":     client.UserID,
			"connId":     client.ID,
			"serverTime": time.Now().UTC().UnixMilli(),
		},
	}))

	go client.WritePump()
	client.ReadPump() // blocks until the client disconnects
}

// upgradeWriter returns the writer underneath gin's. gin refuses to hijack
// once the header is flushed, and Accept flushes the 101 before hijacking.
func upgradeWriter(w gin.ResponseWriter) http.ResponseWriter {
	if u, ok := w.(interface{ Unwrap() http.ResponseWriter }); ok {
		return u.Unwrap()
	}
	return w
}

// identify picks the user id for a handshake; a verified token wins over the query
func (h *Handler) identify(c *gin.Context) string {
	if h.tokens != nil {
		if token := requestToken(c); token != "" {
			if userID, err := h.tokens.ParseUserID(token); err == nil {
				return userID
			}
			logger.Log.Debug("Ignoring invalid token on WebSocket handshake", logger.WithIP(c.ClientIP()))
		}
	}
	return strings.TrimSpace(c.Query("userId"))
}

func requestToken(c *gin.Context) string {
	if cookie, err := c.Cookie("jwt"); err == nil && cookie != "" {
		return cookie
	}
	if token := c.Query("token"); token != "" {
		return token
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// HandleMetrics returns WebSocket metrics (for monitoring)
func (h *Handler) HandleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"websocket":   h.hub.GetMetrics(),
		"onlineUsers": h.hub.OnlineUsers(),
		"timestamp":   time.Now().UTC(),
	})
}

// HandleOnlineUsers returns the current online roster
func (h *Handler) HandleOnlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"onlineUsers": h.hub.OnlineUsers(),
	})
}

// HandleOnlineStatus checks if specific users are online
func (h *Handler) HandleOnlineStatus(c *gin.Context) {
	var req struct {
		UserIDs []string `json:"userIds" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	statuses := make(map[string]bool, len(req.UserIDs))
	for _, userID := range req.UserIDs {
		statuses[userID] = h.hub.IsUserOnline(userID)
	}

	c.JSON(http.StatusOK, gin.H{
		"statuses":  statuses,
		"timestamp": time.Now().UTC(),
	})
}

