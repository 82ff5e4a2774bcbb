package service

import (
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/api"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/formatter"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/output"
)

// NotificationService handles notification operations
type NotificationService struct{}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// List prints unread notifications
func (ns *NotificationService) List() error {
	if _, err := Authenticated(); err != nil {
		return err
	}
	notifications, err := api.Notifications()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(notifications))
	for _, n := range notifications {
		rows = append(rows, []string{
			n.ID,
			n.Type,
			formatter.Truncate(n.Content, 60),
			formatter.TimeAgo(n.CreatedAt),
		})
	}
	return output.Table([]string{"ID", "TYPE", "CONTENT", "WHEN"}, rows, notifications)
}

// Count prints the unread count
func (ns *NotificationService) Count() error {
	if _, err := Authenticated(); err != nil {
		return err
	}
	unread, err := api.UnreadCount()
	if err != nil {
		return err
	}
	return output.Record("", map[string]interface{}{"Unread": unread}, map[string]int64{"unread": unread})
}

// MarkRead marks one notification read, or all of them when id is empty
func (ns *NotificationService) MarkRead(id string) error {
	if _, err := Authenticated(); err != nil {
		return err
	}

	if id == "" {
		updated, err := api.MarkAllRead()
		if err != nil {
			return err
		}
		if output.IsJSON() {
			return output.JSON(map[string]int64{"updated": updated})
		}
		output.PrintSuccess("✓ Marked %d notification%s as read", updated, pluralize(int(updated)))
		return nil
	}

	n, err := api.MarkRead(id)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(n)
	}
	output.PrintSuccess("✓ Notification marked as read")
	return nil
}

// Delete removes a notification
func (ns *NotificationService) Delete(id string) error {
	if _, err := Authenticated(); err != nil {
		return err
	}
	if err := api.DeleteNotification(id); err != nil {
		return err
	}
	output.PrintSuccess("✓ Notification deleted")
	return nil
}
