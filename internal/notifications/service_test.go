package notifications

import (
	"context"
	"os"
	"testing"

	"github.com/Hicham-Azeroual/chatApplication/internal/database"
	apierrors "github.com/Hicham-Azeroual/chatApplication/internal/errors"
	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", "")
	os.Exit(m.Run())
}

type recordingEmitter struct {
	events []string
}

func (r *recordingEmitter) EmitToUser(userID, event string, payload interface{}) bool {
	r.events = append(r.events, userID+":"+event)
	return true
}

func (r *recordingEmitter) EmitToUsers(userIDs []string, event string, payload interface{}) int {
	for _, id := range userIDs {
		r.EmitToUser(id, event, payload)
	}
	return len(userIDs)
}

func (r *recordingEmitter) BroadcastExcept(excludeUserID, event string, payload interface{}) {}

func (r *recordingEmitter) OnlineUsers() []string { return nil }

type ServiceTestSuite struct {
	suite.Suite
	emitter *recordingEmitter
	service *Service
	ctx     context.Context
}

func (s *ServiceTestSuite) SetupTest() {
	_, err := database.OpenInMemory()
	require.NoError(s.T(), err)
	s.emitter = &recordingEmitter{}
	s.service = NewService(s.emitter)
	s.ctx = context.Background()
}

func (s *ServiceTestSuite) TearDownTest() {
	sqlDB, _ := database.DB.DB()
	sqlDB.Close()
}

func (s *ServiceTestSuite) TestCreateRejectsUnknownType() {
	_, err := s.service.Create(s.ctx, "u1", "hi", models.NotificationType("friend_request"), nil)
	s.ErrorIs(err, ErrUnknownType)
	s.Empty(s.emitter.events)
}

func (s *ServiceTestSuite) TestCreatePersistsAndEmits() {
	n, err := s.service.Create(s.ctx, "u1", "hi", models.NotificationReaction, map[string]any{"messageId": "m1"})
	s.Require().NoError(err)
	s.NotEmpty(n.ID)
	s.Equal([]string{"u1:" + websocket.EventNewNotification}, s.emitter.events)

	var stored models.Notification
	s.Require().NoError(database.DB.First(&stored, "id = ?", n.ID).Error)
	s.Equal("m1", stored.Metadata["messageId"])
	s.False(stored.Read)
}

func (s *ServiceTestSuite) TestUnreadNewestFirstAndCount() {
	for _, content := range []string{"one", "two", "three"} {
		_, err := s.service.Create(s.ctx, "u1", content, models.NotificationNewMessage, nil)
		s.Require().NoError(err)
	}

	list, err := s.service.Unread(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	assert.False(s.T(), list[0].CreatedAt.Before(list[2].CreatedAt))

	count, err := s.service.UnreadCount(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(int64(3), count)

	updated, err := s.service.MarkAllRead(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(int64(3), updated)

	count, _ = s.service.UnreadCount(s.ctx, "u1")
	s.Zero(count)
}

func (s *ServiceTestSuite) TestMarkReadAndDeleteScopedToOwner() {
	n, err := s.service.Create(s.ctx, "u1", "hi", models.NotificationNewMessage, nil)
	s.Require().NoError(err)

	_, err = s.service.MarkRead(s.ctx, "u2", n.ID)
	s.ErrorIs(err, ErrNotFound)

	read, err := s.service.MarkRead(s.ctx, "u1", n.ID)
	s.Require().NoError(err)
	s.True(read.Read)

	s.ErrorIs(s.service.Delete(s.ctx, "u2", n.ID), ErrNotFound)
	s.Require().NoError(s.service.Delete(s.ctx, "u1", n.ID))
	s.Contains(s.emitter.events, "u1:"+websocket.EventNotificationDeleted)

	apiErr := apierrors.From(s.service.Delete(s.ctx, "u1", n.ID))
	s.Equal(404, apiErr.Status)
}

func (s *ServiceTestSuite) TestNotifySwallowsErrors() {
	s.service.Notify(s.ctx, "u1", "hi", models.NotificationType("bogus"), nil)
	var count int64
	database.DB.Model(&models.Notification{}).Count(&count)
	s.Zero(count)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
