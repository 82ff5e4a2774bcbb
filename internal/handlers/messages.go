package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/database"
	apierrors "github.com/Hicham-Azeroual/chatApplication/internal/errors"
	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/metrics"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/telemetry"
	"github.com/Hicham-Azeroual/chatApplication/internal/util"
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errNothingToSend    = apierrors.BadRequest("At least one of text, image, video, file, or audio is required")
	errMessageNotFound  = apierrors.NotFound("Message")
	errReceiverNotFound = apierrors.NotFound("Receiver")
	errNotMessageOwner  = apierrors.Forbidden("You can only update your own messages")
	errNotDeleteOwner   = apierrors.Forbidden("You can only delete your own messages")
	errMessageHidden    = apierrors.Forbidden("You cannot access this message")
	errMessageDeleted   = apierrors.BadRequest("Cannot update a deleted message")
	errTextRequired     = apierrors.BadRequest("Text is required")
	errEmojiRequired    = apierrors.BadRequest("Emoji is required")
	errAlreadyReacted   = apierrors.BadRequest("You have already reacted with this emoji")
	errReactionNotFound = apierrors.NotFound("Reaction")
)

// publicUserColumns is what reactions and statuses expose about a user
func publicUserColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "full_name", "profile_pic")
}

// GetUsersForSidebar handles GET /api/messages/users
func (h *Handlers) GetUsersForSidebar(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	users := []models.User{}
	if err := database.DB.WithContext(c.Request.Context()).
		Where("id <> ?", userID).
		Order("full_name ASC").
		Find(&users).Error; err != nil {
		util.RespondInternalError(c, "Failed to fetch users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetMessages handles GET /api/messages/:id, the conversation with one user
// in both directions, oldest first
func (h *Handlers) GetMessages(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	otherID := c.Param("id")

	messages := []models.Message{}
	err := database.DB.WithContext(c.Request.Context()).
		Preload("Reactions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Reactions.User", publicUserColumns).
		Where("is_deleted = ?", false).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch messages", err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendMessage handles POST /api/messages/send/:id
func (h *Handlers) SendMessage(c *gin.Context) {
	sender, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	receiverID := c.Param("id")

	ctx, span := telemetry.StartChatSpan(c.Request.Context(), "message.send", telemetry.ChatEventAttrs{
		SenderID:   sender.ID,
		ReceiverID: receiverID,
	})
	var spanErr error
	defer func() { telemetry.EndSpan(span, spanErr) }()

	if _, err := findUser(ctx, receiverID); err != nil {
		spanErr = err
		util.RespondError(c, notFoundAs(err, errReceiverNotFound))
		return
	}

	msg, err := h.messageFromForm(c, sender.ID)
	if err != nil {
		spanErr = err
		util.RespondInternalError(c, "Failed to upload attachment", err)
		return
	}
	if !msg.HasContent() {
		util.RespondError(c, errNothingToSend)
		return
	}
	msg.ReceiverID = strPtr(receiverID)
	msg.Reactions = []models.MessageReaction{}

	if err := database.DB.WithContext(ctx).Create(msg).Error; err != nil {
		spanErr = err
		util.RespondInternalError(c, "Failed to send message", err)
		return
	}
	metrics.RecordMessageCreated(messageKind(msg))

	delivered := h.emitToUser(receiverID, websocket.EventNewMessage, msg)
	telemetry.RecordDelivery(span, websocket.EventNewMessage, delivered, 1)

	h.notifications.Notify(ctx, receiverID,
		fmt.Sprintf("You have a new message from %s", sender.FullName),
		models.NotificationNewMessage,
		map[string]any{"messageId": msg.ID, "senderId": sender.ID})

	c.JSON(http.StatusCreated, msg)
}

// ForwardMessage handles POST /api/messages/forward/:messageId
func (h *Handlers) ForwardMessage(c *gin.Context) {
	sender, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req struct {
		ReceiverID string `json:"receiverId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ReceiverID) == "" {
		util.RespondBadRequest(c, "Receiver is required")
		return
	}
	receiverID := strings.TrimSpace(req.ReceiverID)

	ctx, span := telemetry.StartChatSpan(c.Request.Context(), "message.forward", telemetry.ChatEventAttrs{
		SenderID:   sender.ID,
		ReceiverID: receiverID,
	})
	var spanErr error
	defer func() { telemetry.EndSpan(span, spanErr) }()

	original, err := loadMessage(ctx, c.Param("messageId"), false)
	if err != nil {
		spanErr = err
		util.RespondError(c, err)
		return
	}
	if !canView(ctx, original, sender.ID) {
		util.RespondError(c, errMessageHidden)
		return
	}
	if _, err := findUser(ctx, receiverID); err != nil {
		spanErr = err
		util.RespondError(c, notFoundAs(err, errReceiverNotFound))
		return
	}

	originalSender := original.SenderID
	if original.OriginalSenderID != nil {
		originalSender = *original.OriginalSenderID
	}

	forwarded := &models.Message{
		SenderID:         sender.ID,
		ReceiverID:       strPtr(receiverID),
		Text:             original.Text,
		Image:            original.Image,
		Video:            original.Video,
		File:             original.File,
		Audio:            original.Audio,
		IsForwarded:      true,
		OriginalSenderID: strPtr(originalSender),
		ForwardedFrom:    strPtr(original.ID),
		Reactions:        []models.MessageReaction{},
	}
	if err := database.DB.WithContext(ctx).Create(forwarded).Error; err != nil {
		spanErr = err
		util.RespondInternalError(c, "Failed to forward message", err)
		return
	}
	metrics.RecordMessageCreated("forward")

	delivered := h.emitToUser(receiverID, websocket.EventNewMessage, forwarded)
	telemetry.RecordDelivery(span, websocket.EventNewMessage, delivered, 1)

	h.notifications.Notify(ctx, receiverID,
		fmt.Sprintf("%s forwarded you a message", sender.FullName),
		models.NotificationMessageForwarded,
		map[string]any{"messageId": forwarded.ID, "senderId": sender.ID, "forwardedFrom": original.ID})

	c.JSON(http.StatusCreated, forwarded)
}

// UpdateMessage handles PATCH /api/messages/update/:messageId
func (h *Handlers) UpdateMessage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var req struct {
		Text string `json:"text"`
	}
	_ = c.ShouldBindJSON(&req)
	text := strings.TrimSpace(req.Text)

	msg, err := loadMessage(ctx, c.Param("messageId"), true)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	if msg.SenderID != userID {
		util.RespondError(c, errNotMessageOwner)
		return
	}
	if msg.IsDeleted {
		util.RespondError(c, errMessageDeleted)
		return
	}
	if time.Since(msg.CreatedAt) > h.opts.MessageEditWindow {
		util.RespondBadRequest(c, fmt.Sprintf("You can only update messages within %s of sending", formatWindow(h.opts.MessageEditWindow)))
		return
	}
	if text == "" {
		util.RespondError(c, errTextRequired)
		return
	}

	if err := database.DB.WithContext(ctx).Model(msg).Update("text", text).Error; err != nil {
		util.RespondInternalError(c, "Failed to update message", err)
		return
	}

	if err := reloadWithReactions(ctx, msg); err != nil {
		util.RespondInternalError(c, "Failed to load message", err)
		return
	}
	h.emitToUsers(messageAudience(ctx, msg, userID), websocket.EventMessageUpdated, msg)
	c.JSON(http.StatusOK, msg)
}

// DeleteMessage handles DELETE /api/messages/delete/:messageId (soft delete)
func (h *Handlers) DeleteMessage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	msg, err := loadMessage(ctx, c.Param("messageId"), false)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	if msg.SenderID != userID {
		util.RespondError(c, errNotDeleteOwner)
		return
	}

	if err := database.DB.WithContext(ctx).Model(msg).Update("is_deleted", true).Error; err != nil {
		util.RespondInternalError(c, "Failed to delete message", err)
		return
	}

	h.emitToUsers(messageAudience(ctx, msg, userID), websocket.EventMessageDeleted, msg.ID)
	util.RespondMessage(c, "Message deleted successfully")
}

// loadMessage fetches a message by id; soft-deleted messages count as
// missing unless includeDeleted is set
func loadMessage(ctx context.Context, id string, includeDeleted bool) (*models.Message, error) {
	var msg models.Message
	err := database.DB.WithContext(ctx).First(&msg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}
	if msg.IsDeleted && !includeDeleted {
		return nil, errMessageNotFound
	}
	return &msg, nil
}

// reloadWithReactions refreshes msg with its reactions and their users
func reloadWithReactions(ctx context.Context, msg *models.Message) error {
	msg.Reactions = nil
	return database.DB.WithContext(ctx).
		Preload("Reactions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Reactions.User", publicUserColumns).
		First(msg, "id = ?", msg.ID).Error
}

// canView reports whether userID is a party to the message
func canView(ctx context.Context, msg *models.Message, userID string) bool {
	if msg.GroupID != nil {
		ok, err := isGroupMember(ctx, *msg.GroupID, userID)
		if err != nil {
			logger.Log.Warn("Failed to check group membership", zap.Error(err))
		}
		return ok
	}
	return msg.SenderID == userID || derefString(msg.ReceiverID) == userID
}

// messageAudience returns who hears about a change to msg made by actorID:
// every member of a group message, otherwise the other party of the
// conversation
func messageAudience(ctx context.Context, msg *models.Message, actorID string) []string {
	if msg.GroupID != nil {
		members, err := groupMemberIDs(ctx, *msg.GroupID)
		if err != nil {
			logger.Log.Warn("Failed to load group members for emit",
				zap.String("group_id", *msg.GroupID), zap.Error(err))
		}
		return members
	}

	receiverID := derefString(msg.ReceiverID)
	if actorID == receiverID {
		return []string{msg.SenderID}
	}
	return []string{receiverID}
}

// findUser loads a user by id
func findUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := database.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// notFoundAs replaces a missing-record error with a resource-specific 404
func notFoundAs(err error, notFound *apierrors.APIError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// formatWindow renders a duration the way users read it, e.g. "5 minutes"
func formatWindow(d time.Duration) string {
	switch {
	case d%time.Hour == 0 && d >= time.Hour:
		return pluralize(int(d/time.Hour), "hour")
	case d%time.Minute == 0 && d >= time.Minute:
		return pluralize(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
