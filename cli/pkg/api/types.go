package api

import "time"

// User is the public shape of an account
type User struct {
	ID         string    `json:"_id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email,omitempty"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	ID         string    `json:"_id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profilePic"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Reaction is one user's emoji on a message
type Reaction struct {
	ID     string `json:"_id"`
	UserID string `json:"userId"`
	User   *User  `json:"user,omitempty"`
	Emoji  string `json:"emoji"`
}

// StatusReply is the snapshot of the status a message answers
type StatusReply struct {
	StatusID string `json:"statusId"`
	Text     string `json:"text,omitempty"`
	User     User   `json:"user"`
}

// Message is a direct or group message
type Message struct {
	ID          string       `json:"_id"`
	SenderID    string       `json:"senderId"`
	Sender      *User        `json:"sender,omitempty"`
	ReceiverID  string       `json:"receiverId,omitempty"`
	GroupID     string       `json:"groupId,omitempty"`
	Text        string       `json:"text,omitempty"`
	Image       string       `json:"image,omitempty"`
	Video       string       `json:"video,omitempty"`
	Audio       string       `json:"audio,omitempty"`
	File        string       `json:"file,omitempty"`
	IsForwarded bool         `json:"isForwarded"`
	IsDeleted   bool         `json:"isDeleted"`
	Reactions   []Reaction   `json:"reactions"`
	StatusReply *StatusReply `json:"statusReply,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Media returns the attachment fields keyed by kind
func (m *Message) Media() map[string]string {
	return map[string]string{"image": m.Image, "video": m.Video, "audio": m.Audio, "file": m.File}
}

// Group is a named conversation
type Group struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	GroupImage  string    `json:"groupImage"`
	CreatedBy   string    `json:"createdBy"`
	Members     []User    `json:"members"`
	Admins      []User    `json:"admins"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GroupMessagesPage is one page of group history, newest first
type GroupMessagesPage struct {
	Messages []Message `json:"messages"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int64     `json:"total"`
}

// Status is an expiring post
type Status struct {
	ID         string    `json:"_id"`
	UserID     string    `json:"userId"`
	User       *User     `json:"user,omitempty"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	Video      string    `json:"video,omitempty"`
	Audio      string    `json:"audio,omitempty"`
	Background string    `json:"background,omitempty"`
	ExpiresAt  time.Time `json:"expiresAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Media returns the attachment fields keyed by kind
func (s *Status) Media() map[string]string {
	return map[string]string{"image": s.Image, "video": s.Video, "audio": s.Audio}
}

// Notification is a persisted notice
type Notification struct {
	ID        string                 `json:"_id"`
	Content   string                 `json:"content"`
	Type      string                 `json:"type"`
	Read      bool                   `json:"read"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// MessageResponse is the plain {"message": "..."} body
type MessageResponse struct {
	Message string `json:"message"`
}
