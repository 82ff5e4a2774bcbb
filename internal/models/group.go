package models

import (
	"time"

	"gorm.io/gorm"
)

// Group is a named conversation with members and admins.
// The creator is always both a member and an admin.
type Group struct {
	ID          string `gorm:"primaryKey;size:36" json:"_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	GroupImage  string `gorm:"type:text" json:"groupImage"`
	CreatedBy   string `gorm:"not null;size:36;index" json:"createdBy"`

	Members []User `gorm:"many2many:group_members;" json:"members"`
	Admins  []User `gorm:"many2many:group_admins;" json:"admins"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MemberIDs returns the ids of the loaded members
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// IsMember reports whether userID is among the loaded members
func (g *Group) IsMember(userID string) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether userID is among the loaded admins
func (g *Group) IsAdmin(userID string) bool {
	for _, a := range g.Admins {
		if a.ID == userID {
			return true
		}
	}
	return false
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = generateUUID()
	}
	return nil
}
