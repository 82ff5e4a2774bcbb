package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/database"
	apierrors "github.com/Hicham-Azeroual/chatApplication/internal/errors"
	"github.com/Hicham-Azeroual/chatApplication/internal/metrics"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/storage"
	"github.com/Hicham-Azeroual/chatApplication/internal/util"
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	errEmptyStatus    = apierrors.BadRequest("At least one of text, image, video, or audio is required.")
	errStatusNotFound = apierrors.NotFound("Status")
)

// CreateStatus handles POST /api/status. The media field is filed under
// image, video or audio by its MIME type; music is always audio.
func (h *Handlers) CreateStatus(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	_ = c.Request.ParseMultipartForm(maxUploadMemory)
	status := &models.Status{
		UserID:     user.ID,
		Text:       strings.TrimSpace(c.PostForm("text")),
		Background: strings.TrimSpace(c.PostForm("background")),
	}

	if header, err := c.FormFile("media"); err == nil {
		url, err := h.uploadFormFile(c, "media", storage.FolderStatuses, user.ID)
		if err != nil {
			util.RespondInternalError(c, "Failed to upload status media", err)
			return
		}
		switch util.MediaKindFromMIME(header.Header.Get("Content-Type")) {
		case util.MediaVideo:
			status.Video = url
		case util.MediaAudio:
			status.Audio = url
		default:
			status.Image = url
		}
	}

	music, err := h.uploadFormFile(c, "music", storage.FolderStatuses, user.ID)
	if err != nil {
		util.RespondInternalError(c, "Failed to upload status music", err)
		return
	}
	if music != "" {
		status.Audio = music
	}

	if !status.HasContent() {
		util.RespondError(c, errEmptyStatus)
		return
	}
	status.ExpiresAt = time.Now().UTC().Add(h.opts.StatusTTL)

	if err := database.DB.WithContext(ctx).Create(status).Error; err != nil {
		util.RespondInternalError(c, "Failed to create status", err)
		return
	}
	metrics.RecordStatusCreated()

	summary := user.Summary()
	status.User = &models.User{ID: summary.ID, FullName: summary.FullName, ProfilePic: summary.ProfilePic}

	if h.emitter != nil {
		h.emitter.BroadcastExcept(user.ID, websocket.EventNewStatus, status)
	}
	c.JSON(http.StatusCreated, status)
}

// GetStatuses handles GET /api/status, live statuses newest first
func (h *Handlers) GetStatuses(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}

	statuses := []models.Status{}
	err := database.DB.WithContext(c.Request.Context()).
		Preload("User", publicUserColumns).
		Where("expires_at > ? AND is_deleted = ?", time.Now().UTC(), false).
		Order("created_at DESC").
		Find(&statuses).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch statuses", err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// ReplyToStatus handles POST /api/status/reply. The reply is a direct
// message to the status owner carrying a snapshot of the status.
func (h *Handlers) ReplyToStatus(c *gin.Context) {
	sender, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var req struct {
		StatusID string `json:"statusId"`
		Text     string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.StatusID) == "" {
		util.RespondBadRequest(c, "Status id is required")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		util.RespondError(c, errTextRequired)
		return
	}

	var status models.Status
	err := database.DB.WithContext(ctx).
		Preload("User").
		Where("expires_at > ? AND is_deleted = ?", time.Now().UTC(), false).
		First(&status, "id = ?", strings.TrimSpace(req.StatusID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondError(c, errStatusNotFound)
		return
	}
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch status", err)
		return
	}

	reply := &models.StatusReply{
		StatusID:   status.ID,
		Text:       status.Text,
		Image:      status.Image,
		Video:      status.Video,
		Audio:      status.Audio,
		Background: status.Background,
		CreatedAt:  status.CreatedAt,
	}
	if status.User != nil {
		reply.User = status.User.Summary()
	}

	msg := &models.Message{
		SenderID:    sender.ID,
		ReceiverID:  strPtr(status.UserID),
		Text:        text,
		StatusReply: reply,
		Reactions:   []models.MessageReaction{},
	}
	if err := database.DB.WithContext(ctx).Create(msg).Error; err != nil {
		util.RespondInternalError(c, "Failed to send reply", err)
		return
	}
	metrics.RecordMessageCreated("status_reply")

	h.emitToUser(status.UserID, websocket.EventNewMessage, msg)
	h.notifications.Notify(ctx, status.UserID,
		fmt.Sprintf("%s replied to your status", sender.FullName),
		models.NotificationNewMessage,
		map[string]any{"messageId": msg.ID, "senderId": sender.ID, "statusId": status.ID})

	c.JSON(http.StatusCreated, msg)
}
