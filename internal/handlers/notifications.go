package handlers

import (
	"net/http"

	"github.com/Hicham-Azeroual/chatApplication/internal/util"
	"github.com/gin-gonic/gin"
)

// GetNotifications gets the caller's unread notifications, newest first
// GET /api/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	notifs, err := h.notifications.Unread(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifs)
}

// GetNotificationCounts gets just the unread count for badge display
// GET /api/notifications/counts
func (h *Handlers) GetNotificationCounts(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	unread, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": unread})
}

// MarkNotificationRead marks one notification as read
// PATCH /api/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	notif, err := h.notifications.MarkRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notif)
}

// MarkNotificationsRead marks every notification of the caller as read
// POST /api/notifications/read
func (h *Handlers) MarkNotificationsRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	updated, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read", "updated": updated})
}

// DeleteNotification removes one notification
// DELETE /api/notifications/:id
func (h *Handlers) DeleteNotification(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondMessage(c, "Notification deleted successfully")
}
