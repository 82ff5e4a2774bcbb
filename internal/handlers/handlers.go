package handlers

import (
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/notifications"
	"github.com/Hicham-Azeroual/chatApplication/internal/storage"
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
)

// Options tunes time-based rules
type Options struct {
	// MessageEditWindow is how long after sending a message may be edited
	MessageEditWindow time.Duration
	// StatusTTL is how long a new status stays visible
	StatusTTL time.Duration
}

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{
		MessageEditWindow: 5 * time.Minute,
		StatusTTL:         24 * time.Hour,
	}
}

// Handlers contains the chat HTTP handlers for messages, groups, statuses
// and notifications
type Handlers struct {
	emitter       websocket.Emitter
	uploader      storage.MediaUploader
	notifications *notifications.Service
	opts          Options
}

// NewHandlers creates a new handlers instance. Realtime delivery goes through
// emitter; saving a record never depends on it.
func NewHandlers(emitter websocket.Emitter, uploader storage.MediaUploader) *Handlers {
	return &Handlers{
		emitter:       emitter,
		uploader:      uploader,
		notifications: notifications.NewService(emitter),
		opts:          DefaultOptions(),
	}
}

// SetOptions overrides the time-based rules; zero fields keep their defaults
func (h *Handlers) SetOptions(opts Options) {
	if opts.MessageEditWindow > 0 {
		h.opts.MessageEditWindow = opts.MessageEditWindow
	}
	if opts.StatusTTL > 0 {
		h.opts.StatusTTL = opts.StatusTTL
	}
}

// Notifications returns the notification service shared with the handlers
func (h *Handlers) Notifications() *notifications.Service {
	return h.notifications
}
