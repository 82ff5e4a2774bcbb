package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Hicham-Azeroual/chatApplication/internal/database"
	"github.com/Hicham-Azeroual/chatApplication/internal/metrics"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/util"
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
	"github.com/gin-gonic/gin"
)

// AddReaction handles POST /api/messages/react/:messageId
func (h *Handlers) AddReaction(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	emoji, ok := bindEmoji(c)
	if !ok {
		return
	}

	msg, err := loadMessage(ctx, c.Param("messageId"), false)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	if !canView(ctx, msg, user.ID) {
		util.RespondError(c, errMessageHidden)
		return
	}

	var existing int64
	if err := database.DB.WithContext(ctx).Model(&models.MessageReaction{}).
		Where("message_id = ? AND user_id = ? AND emoji = ?", msg.ID, user.ID, emoji).
		Count(&existing).Error; err != nil {
		util.RespondInternalError(c, "Failed to add reaction", err)
		return
	}
	if existing > 0 {
		util.RespondError(c, errAlreadyReacted)
		return
	}

	reaction := &models.MessageReaction{MessageID: msg.ID, UserID: user.ID, Emoji: emoji}
	if err := database.DB.WithContext(ctx).Create(reaction).Error; err != nil {
		util.RespondInternalError(c, "Failed to add reaction", err)
		return
	}
	metrics.RecordReaction("add")

	if err := reloadWithReactions(ctx, msg); err != nil {
		util.RespondInternalError(c, "Failed to load message", err)
		return
	}
	h.emitToUsers(messageAudience(ctx, msg, user.ID), websocket.EventMessageReacted, msg)

	if msg.SenderID != user.ID {
		h.notifications.Notify(ctx, msg.SenderID,
			fmt.Sprintf("%s reacted %s to your message", user.FullName, emoji),
			models.NotificationReaction,
			map[string]any{"messageId": msg.ID, "reactorId": user.ID, "emoji": emoji})
	}

	c.JSON(http.StatusOK, msg)
}

// RemoveReaction handles DELETE /api/messages/react/:messageId
func (h *Handlers) RemoveReaction(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	emoji, ok := bindEmoji(c)
	if !ok {
		return
	}

	msg, err := loadMessage(ctx, c.Param("messageId"), false)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	res := database.DB.WithContext(ctx).
		Where("message_id = ? AND user_id = ? AND emoji = ?", msg.ID, userID, emoji).
		Delete(&models.MessageReaction{})
	if res.Error != nil {
		util.RespondInternalError(c, "Failed to remove reaction", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		util.RespondError(c, errReactionNotFound)
		return
	}
	metrics.RecordReaction("remove")

	if err := reloadWithReactions(ctx, msg); err != nil {
		util.RespondInternalError(c, "Failed to load message", err)
		return
	}
	h.emitToUsers(messageAudience(ctx, msg, userID), websocket.EventMessageReacted, msg)
	c.JSON(http.StatusOK, msg)
}

func bindEmoji(c *gin.Context) (string, bool) {
	var req struct {
		Emoji string `json:"emoji"`
	}
	_ = c.ShouldBindJSON(&req)
	emoji := strings.TrimSpace(req.Emoji)
	if emoji == "" {
		util.RespondError(c, errEmojiRequired)
		return "", false
	}
	return emoji, true
}
