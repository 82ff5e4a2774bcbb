package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a chat account
type User struct {
	ID       string `gorm:"primaryKey;size:36" json:"_id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	FullName string `gorm:"not null" json:"fullName"`

	PasswordHash string `gorm:"type:text;not null" json:"-"`
	ProfilePic   string `gorm:"type:text" json:"profilePic"`

	// GORM fields
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary is the slice of a user embedded in other records
type UserSummary struct {
	ID         string `json:"_id,omitempty"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
}

// Summary returns the public fields other records embed
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FullName: u.FullName, ProfilePic: u.ProfilePic}
}

// NormalizeEmail lower-cases and trims an email for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PasswordReset represents password reset tokens
type PasswordReset struct {
	ID     string `gorm:"primaryKey;size:36" json:"_id"`
	UserID string `gorm:"not null;index;size:36" json:"userId"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	Used      bool      `gorm:"default:false" json:"used"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate hooks for GORM
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

func (p *PasswordReset) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

func generateUUID() string {
	return uuid.New().String()
}
