package handlers

import (
	"strings"

	"github.com/Hicham-Azeroual/chatApplication/internal/metrics"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/storage"
	"github.com/Hicham-Azeroual/chatApplication/internal/util"
	"github.com/gin-gonic/gin"
)

// maxUploadMemory is how much of a multipart body gin keeps in memory
const maxUploadMemory = 32 << 20

// uploadFormFile stores the multipart file under field and returns its URL.
// A missing field is not an error and yields "".
func (h *Handlers) uploadFormFile(c *gin.Context, field, folder, userID string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		// Missing field or not a multipart request
		return "", nil
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	result, err := h.uploader.UploadMedia(c.Request.Context(), file, header, folder, userID)
	metrics.RecordUpload(field, backendName(h.uploader), err)
	if err != nil {
		return "", err
	}
	return result.URL, nil
}

// messageFromForm builds an unsaved message from the text field and the
// image, video, file and audio uploads of a send request
func (h *Handlers) messageFromForm(c *gin.Context, senderID string) (*models.Message, error) {
	msg := &models.Message{SenderID: senderID}

	// Text-only clients may send JSON instead of a form
	if c.ContentType() == gin.MIMEJSON {
		var body struct {
			Text string `json:"text"`
		}
		_ = c.ShouldBindJSON(&body)
		msg.Text = strings.TrimSpace(body.Text)
		return msg, nil
	}

	_ = c.Request.ParseMultipartForm(maxUploadMemory)
	msg.Text = strings.TrimSpace(c.PostForm("text"))

	targets := []struct {
		field string
		dst   *string
	}{
		{"image", &msg.Image},
		{"video", &msg.Video},
		{"file", &msg.File},
		{"audio", &msg.Audio},
	}
	for _, t := range targets {
		url, err := h.uploadFormFile(c, t.field, storage.FolderMessages, senderID)
		if err != nil {
			return nil, err
		}
		*t.dst = url
	}
	return msg, nil
}

// messageKind labels a message for metrics and tracing by its first attachment
func messageKind(m *models.Message) string {
	switch {
	case m.Image != "":
		return "image"
	case m.Video != "":
		return "video"
	case m.Audio != "":
		return "audio"
	case m.File != "":
		return "file"
	default:
		return "text"
	}
}

// emitToUser delivers event to one user if the realtime layer is wired
func (h *Handlers) emitToUser(userID, event string, payload interface{}) int {
	if h.emitter == nil || userID == "" {
		return 0
	}
	if h.emitter.EmitToUser(userID, event, payload) {
		return 1
	}
	return 0
}

// emitToUsers delivers event to each user independently
func (h *Handlers) emitToUsers(userIDs []string, event string, payload interface{}) int {
	if h.emitter == nil || len(userIDs) == 0 {
		return 0
	}
	return h.emitter.EmitToUsers(userIDs, event, payload)
}

// bindMemberIDs reads {"members": [...]} and returns the normalised ids
func bindMemberIDs(c *gin.Context) ([]string, bool) {
	var req struct {
		Members []string `json:"members"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Members are required")
		return nil, false
	}
	members := util.NormalizeIDs(req.Members)
	if len(members) == 0 {
		util.RespondBadRequest(c, "Members are required")
		return nil, false
	}
	return members, true
}

func strPtr(s string) *string {
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
