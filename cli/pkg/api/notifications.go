package api

import (
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/client"
)

// Notifications returns the caller's unread notifications, newest first
func Notifications() ([]Notification, error) {
	var out []Notification
	resp, err := client.GetClient().R().SetResult(&out).Get("/api/notifications")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadCount returns the unread badge count
func UnreadCount() (int64, error) {
	var out struct {
		Unread int64 `json:"unread"`
	}
	resp, err := client.GetClient().R().SetResult(&out).Get("/api/notifications/counts")
	if err := CheckResponse(resp, err); err != nil {
		return 0, err
	}
	return out.Unread, nil
}

// MarkRead marks one notification read
func MarkRead(id string) (*Notification, error) {
	var out Notification
	resp, err := client.GetClient().R().
		SetPathParam("id", id).
		SetResult(&out).
		Patch("/api/notifications/{id}/read")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkAllRead marks every notification read and returns how many changed
func MarkAllRead() (int64, error) {
	var out struct {
		Updated int64 `json:"updated"`
	}
	resp, err := client.GetClient().R().SetResult(&out).Post("/api/notifications/read")
	if err := CheckResponse(resp, err); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

// DeleteNotification removes one notification
func DeleteNotification(id string) error {
	resp, err := client.GetClient().R().
		SetPathParam("id", id).
		Delete("/api/notifications/{id}")
	return CheckResponse(resp, err)
}
