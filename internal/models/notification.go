package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType enumerates what a notification is about
type NotificationType string

const (
	NotificationNewMessage       NotificationType = "new_message"
	NotificationReaction         NotificationType = "reaction"
	NotificationMessageForwarded NotificationType = "message_forwarded"
)

// Valid reports whether t is one of the known notification types
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationNewMessage, NotificationReaction, NotificationMessageForwarded:
		return true
	}
	return false
}

// Notification is a persisted, per-user notice
type Notification struct {
	ID       string           `gorm:"primaryKey;size:36" json:"_id"`
	UserID   string           `gorm:"not null;size:36;index:idx_notifications_user_read" json:"userId"`
	Content  string           `gorm:"type:text;not null" json:"content"`
	Type     NotificationType `gorm:"not null;size:32" json:"type"`
	Read     bool             `gorm:"default:false;index:idx_notifications_user_read" json:"read"`
	Metadata map[string]any   `gorm:"type:text;serializer:json" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
