package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is a direct or group chat message.
// Exactly one of ReceiverID and GroupID is set.
type Message struct {
	ID         string  `gorm:"primaryKey;size:36" json:"_id"`
	SenderID   string  `gorm:"not null;index;size:36" json:"senderId"`
	Sender     *User   `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ReceiverID *string `gorm:"index;size:36" json:"receiverId,omitempty"`
	GroupID    *string `gorm:"index;size:36" json:"groupId,omitempty"`

	Text  string `gorm:"type:text" json:"text,omitempty"`
	Image string `gorm:"type:text" json:"image,omitempty"`
	Video string `gorm:"type:text" json:"video,omitempty"`
	Audio string `gorm:"type:text" json:"audio,omitempty"`
	File  string `gorm:"type:text" json:"file,omitempty"`

	// Forwarding
	IsForwarded      bool    `gorm:"default:false" json:"isForwarded"`
	OriginalSenderID *string `gorm:"size:36" json:"originalSenderId,omitempty"`
	ForwardedFrom    *string `gorm:"size:36" json:"forwardedFrom,omitempty"`

	IsDeleted bool `gorm:"default:false;index" json:"isDeleted"`

	Reactions   []MessageReaction `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"reactions"`
	StatusReply *StatusReply      `gorm:"type:text;serializer:json" json:"statusReply,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasContent reports whether the message carries text or any attachment
func (m *Message) HasContent() bool {
	return m.Text != "" || m.Image != "" || m.Video != "" || m.Audio != "" || m.File != ""
}

// MessageReaction is one user's emoji on a message
type MessageReaction struct {
	ID        string `gorm:"primaryKey;size:36" json:"_id"`
	MessageID string `gorm:"not null;size:36;uniqueIndex:idx_reaction_unique" json:"messageId"`
	UserID    string `gorm:"not null;size:36;uniqueIndex:idx_reaction_unique" json:"userId"`
	User      *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Emoji     string `gorm:"not null;size:32;uniqueIndex:idx_reaction_unique" json:"emoji"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StatusReply snapshots the status a message replies to, so the reply
// survives the status expiring.
type StatusReply struct {
	StatusID   string      `json:"statusId"`
	Text       string      `json:"text,omitempty"`
	Image      string      `json:"image,omitempty"`
	Video      string      `json:"video,omitempty"`
	Audio      string      `json:"audio,omitempty"`
	Background string      `json:"background,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	User       UserSummary `json:"user"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = generateUUID()
	}
	return nil
}

func (r *MessageReaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}
