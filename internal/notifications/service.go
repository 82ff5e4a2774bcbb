// Package notifications persists per-user notices and pushes them to
// connected clients.
package notifications

import (
	"context"
	"fmt"

	"github.com/Hicham-Azeroual/chatApplication/internal/database"
	apierrors "github.com/Hicham-Azeroual/chatApplication/internal/errors"
	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/metrics"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
	"go.uber.org/zap"
)

var (
	ErrUnknownType = apierrors.BadRequest("Invalid notification type")
	ErrNotFound    = apierrors.NotFound("Notification")
)

// Service creates, lists and removes notifications
type Service struct {
	emitter websocket.Emitter
}

// NewService creates a notification service. emitter may be nil, in which
// case notifications are only persisted.
func NewService(emitter websocket.Emitter) *Service {
	return &Service{emitter: emitter}
}

// Create persists a notification and emits newNotification to its owner.
// Delivery is best effort; an offline owner reads it on the next fetch.
func (s *Service) Create(ctx context.Context, userID, content string, notificationType models.NotificationType, metadata map[string]any) (*models.Notification, error) {
	if !notificationType.Valid() {
		return nil, ErrUnknownType
	}

	notification := &models.Notification{
		UserID:   userID,
		Content:  content,
		Type:     notificationType,
		Metadata: metadata,
	}
	if err := database.DB.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	metrics.RecordNotificationCreated(string(notificationType))

	if s.emitter != nil {
		s.emitter.EmitToUser(userID, websocket.EventNewNotification, notification)
	}
	return notification, nil
}

// Notify is Create for callers that must not fail because of a notification
func (s *Service) Notify(ctx context.Context, userID, content string, notificationType models.NotificationType, metadata map[string]any) {
	if _, err := s.Create(ctx, userID, content, notificationType, metadata); err != nil {
		logger.Log.Warn("Failed to create notification",
			logger.WithUserID(userID),
			zap.String("type", string(notificationType)),
			zap.Error(err))
	}
}

// Unread returns userID's unread notifications, newest first
func (s *Service) Unread(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := database.DB.WithContext(ctx).
		Where("user_id = ? AND read = ?", userID, false).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount returns how many unread notifications userID has
func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := database.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// MarkAllRead marks every unread notification of userID as read
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := database.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update notifications: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// MarkRead marks one of userID's notifications as read
func (s *Service) MarkRead(ctx context.Context, userID, id string) (*models.Notification, error) {
	var notification models.Notification
	res := database.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Limit(1).Find(&notification)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to fetch notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	if err := database.DB.WithContext(ctx).Model(&notification).Update("read", true).Error; err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	notification.Read = true
	return &notification, nil
}

// Delete removes one of userID's notifications and emits notificationDeleted
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	res := database.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	if s.emitter != nil {
		s.emitter.EmitToUser(userID, websocket.EventNotificationDeleted, id)
	}
	return nil
}
