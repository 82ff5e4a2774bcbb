package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultStatusTTL is how long a status stays visible
const DefaultStatusTTL = 24 * time.Hour

// Status is an ephemeral post (text, image, video or audio) that expires
type Status struct {
	ID     string `gorm:"primaryKey;size:36" json:"_id"`
	UserID string `gorm:"not null;index;size:36" json:"userId"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Text       string `gorm:"type:text" json:"text,omitempty"`
	Image      string `gorm:"type:text" json:"image,omitempty"`
	Video      string `gorm:"type:text" json:"video,omitempty"`
	Audio      string `gorm:"type:text" json:"audio,omitempty"`
	Background string `json:"background,omitempty"`

	IsForwarded      bool    `gorm:"default:false" json:"isForwarded"`
	OriginalSenderID *string `gorm:"size:36" json:"originalSenderId,omitempty"`
	ForwardedFrom    *string `gorm:"size:36" json:"forwardedFrom,omitempty"`

	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	IsDeleted bool      `gorm:"default:false" json:"isDeleted"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasContent reports whether the status carries text or media
func (s *Status) HasContent() bool {
	return s.Text != "" || s.Image != "" || s.Video != "" || s.Audio != ""
}

// MediaURLs returns every uploaded media URL attached to the status
func (s *Status) MediaURLs() []string {
	var urls []string
	for _, u := range []string{s.Image, s.Video, s.Audio} {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func (s *Status) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	// Set expires_at to 24 hours from now if not already set
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = time.Now().UTC().Add(DefaultStatusTTL)
	}
	return nil
}
