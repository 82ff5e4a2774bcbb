package handlers

import (
	"context"
	"net/http"

	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// NOTIFICATION ENDPOINT TESTS
// =============================================================================

func (suite *HandlersTestSuite) notify(user *models.User, content string) *models.Notification {
	n, err := suite.handlers.Notifications().Create(context.Background(), user.ID, content, models.NotificationNewMessage, nil)
	suite.Require().NoError(err)
	return n
}

func (suite *HandlersTestSuite) TestGetNotificationsUnauthorized() {
	w := suite.request(http.MethodGet, "/api/notifications", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestGetNotificationsUnreadOnly() {
	t := suite.T()
	suite.notify(suite.alice, "first")
	read := suite.notify(suite.alice, "second")
	suite.notify(suite.bob, "not yours")
	suite.db.Model(&models.Notification{}).Where("id = ?", read.ID).Update("read", true)

	w := suite.request(http.MethodGet, "/api/notifications", suite.alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var notes []models.Notification
	suite.decode(w, &notes)
	suite.Require().Len(notes, 1)
	assert.Equal(t, "first", notes[0].Content)

	w = suite.request(http.MethodGet, "/api/notifications/counts", suite.alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var counts struct {
		Unread int64 `json:"unread"`
	}
	suite.decode(w, &counts)
	assert.Equal(t, int64(1), counts.Unread)
}

func (suite *HandlersTestSuite) TestMarkNotificationRead() {
	n := suite.notify(suite.alice, "ping")

	w := suite.request(http.MethodPatch, "/api/notifications/"+n.ID+"/read", suite.bob, nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Notification not found", suite.errorMessage(w))

	w = suite.request(http.MethodPatch, "/api/notifications/"+n.ID+"/read", suite.alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var updated models.Notification
	suite.decode(w, &updated)
	suite.True(updated.Read)
}

func (suite *HandlersTestSuite) TestMarkAllNotificationsRead() {
	suite.notify(suite.alice, "a")
	suite.notify(suite.alice, "b")
	other := suite.notify(suite.bob, "c")

	w := suite.request(http.MethodPost, "/api/notifications/read", suite.alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var body struct {
		Updated int64 `json:"updated"`
	}
	suite.decode(w, &body)
	suite.Equal(int64(2), body.Updated)

	var stored models.Notification
	suite.Require().NoError(suite.db.First(&stored, "id = ?", other.ID).Error)
	suite.False(stored.Read)
}

func (suite *HandlersTestSuite) TestDeleteNotificationOwnership() {
	t := suite.T()
	n := suite.notify(suite.alice, "delete me")

	w := suite.request(http.MethodDelete, "/api/notifications/"+n.ID, suite.bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = suite.request(http.MethodDelete, "/api/notifications/"+n.ID, suite.alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Equal(t, "Notification deleted successfully", suite.messageOf(w))

	deleted := suite.emitter.to(suite.alice.ID, websocket.EventNotificationDeleted)
	suite.Require().Len(deleted, 1)
	assert.Equal(t, n.ID, deleted[0].Payload)

	var count int64
	suite.db.Model(&models.Notification{}).Where("id = ?", n.ID).Count(&count)
	assert.Zero(t, count)
}

func (suite *HandlersTestSuite) TestNotificationCreateEmits() {
	n := suite.notify(suite.carol, "hello")
	events := suite.emitter.to(suite.carol.ID, websocket.EventNewNotification)
	suite.Require().Len(events, 1)
	suite.Equal(n.ID, events[0].Payload.(*models.Notification).ID)
}
