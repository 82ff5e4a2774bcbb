package handlers

import (
	"net/http"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// MESSAGE ENDPOINT TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestMessagesRequireAuth() {
	w := suite.request(http.MethodGet, "/api/messages/users", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestGetUsersForSidebarExcludesCaller() {
	w := suite.request(http.MethodGet, "/api/messages/users", suite.alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var users []models.User
	suite.decode(w, &users)
	ids := []string{}
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	suite.ElementsMatch([]string{suite.bob.ID, suite.carol.ID}, ids)
	suite.NotContains(w.Body.String(), "passwordHash")
}

func (suite *HandlersTestSuite) TestSendMessagePersistsAndEmits() {
	t := suite.T()

	msg := suite.sendText(suite.alice, suite.bob, "hi bob")
	assert.Equal(t, suite.alice.ID, msg.SenderID)
	assert.Equal(t, suite.bob.ID, derefString(msg.ReceiverID))
	assert.Equal(t, "hi bob", msg.Text)

	delivered := suite.emitter.to(suite.bob.ID, websocket.EventNewMessage)
	suite.Require().Len(delivered, 1)
	assert.Equal(t, msg.ID, delivered[0].Payload.(*models.Message).ID)
	assert.Empty(t, suite.emitter.to(suite.alice.ID, websocket.EventNewMessage))

	notifs := suite.emitter.to(suite.bob.ID, websocket.EventNewNotification)
	suite.Require().Len(notifs, 1)
	n := notifs[0].Payload.(*models.Notification)
	assert.Equal(t, models.NotificationNewMessage, n.Type)
	assert.Equal(t, "You have a new message from Alice", n.Content)
}

func (suite *HandlersTestSuite) TestSendMessageToOfflineUserStillPersists() {
	suite.emitter.offline[suite.bob.ID] = true

	msg := suite.sendText(suite.alice, suite.bob, "are you there?")
	suite.Empty(suite.emitter.to(suite.bob.ID, websocket.EventNewMessage))

	// History on reconnect
	w := suite.request(http.MethodGet, "/api/messages/"+suite.alice.ID, suite.bob, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var history []models.Message
	suite.decode(w, &history)
	suite.Require().Len(history, 1)
	suite.Equal(msg.ID, history[0].ID)
}

func (suite *HandlersTestSuite) TestSendMessageValidation() {
	w := suite.request(http.MethodPost, "/api/messages/send/"+suite.bob.ID, suite.alice, map[string]string{"text": "  "})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("At least one of text, image, video, file, or audio is required", suite.errorMessage(w))

	w = suite.request(http.MethodPost, "/api/messages/send/nobody", suite.alice, map[string]string{"text": "hello"})
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Receiver not found", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestSendMessageWithAttachments() {
	w := suite.multipartRequest(http.MethodPost, "/api/messages/send/"+suite.bob.ID, suite.alice,
		map[string]string{"text": "look"},
		formFile{"image", "cat.png", "image/png", []byte("png")},
		formFile{"file", "notes.pdf", "application/pdf", []byte("pdf")},
	)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var msg models.Message
	suite.decode(w, &msg)
	suite.Equal("https://cdn.test/messages/"+suite.alice.ID+"/cat.png", msg.Image)
	suite.Equal("https://cdn.test/messages/"+suite.alice.ID+"/notes.pdf", msg.File)
	suite.Empty(msg.Video)
	suite.Len(suite.uploader.uploads, 2)
}

func (suite *HandlersTestSuite) TestSendMessageUploadFailure() {
	suite.uploader.shouldFail = true
	w := suite.multipartRequest(http.MethodPost, "/api/messages/send/"+suite.bob.ID, suite.alice, nil,
		formFile{"audio", "voice.mp3", "audio/mpeg", []byte("mp3")})
	suite.Equal(http.StatusInternalServerError, w.Code)

	var count int64
	suite.db.Model(&models.Message{}).Count(&count)
	suite.Zero(count)
}

func (suite *HandlersTestSuite) TestGetMessagesBothDirectionsOldestFirst() {
	first := suite.sendText(suite.alice, suite.bob, "one")
	second := suite.sendText(suite.bob, suite.alice, "two")
	suite.sendText(suite.alice, suite.carol, "not in this conversation")

	w := suite.request(http.MethodGet, "/api/messages/"+suite.bob.ID, suite.alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var history []models.Message
	suite.decode(w, &history)
	suite.Require().Len(history, 2)
	suite.Equal(first.ID, history[0].ID)
	suite.Equal(second.ID, history[1].ID)
}

func (suite *HandlersTestSuite) TestForwardMessage() {
	t := suite.T()
	original := suite.sendText(suite.alice, suite.bob, "pass it on")

	w := suite.request(http.MethodPost, "/api/messages/forward/"+original.ID, suite.bob, map[string]string{"receiverId": suite.carol.ID})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var fwd models.Message
	suite.decode(w, &fwd)
	assert.True(t, fwd.IsForwarded)
	assert.Equal(t, suite.bob.ID, fwd.SenderID)
	assert.Equal(t, suite.alice.ID, derefString(fwd.OriginalSenderID))
	assert.Equal(t, original.ID, derefString(fwd.ForwardedFrom))
	assert.Equal(t, "pass it on", fwd.Text)

	assert.Len(t, suite.emitter.to(suite.carol.ID, websocket.EventNewMessage), 1)
	notifs := suite.emitter.to(suite.carol.ID, websocket.EventNewNotification)
	suite.Require().Len(notifs, 1)
	assert.Equal(t, models.NotificationMessageForwarded, notifs[0].Payload.(*models.Notification).Type)
}

func (suite *HandlersTestSuite) TestForwardMessageErrors() {
	original := suite.sendText(suite.alice, suite.bob, "secret")

	w := suite.request(http.MethodPost, "/api/messages/forward/missing", suite.bob, map[string]string{"receiverId": suite.carol.ID})
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Message not found", suite.errorMessage(w))

	w = suite.request(http.MethodPost, "/api/messages/forward/"+original.ID, suite.bob, map[string]string{"receiverId": "ghost"})
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Receiver not found", suite.errorMessage(w))

	// Carol was not part of the conversation
	w = suite.request(http.MethodPost, "/api/messages/forward/"+original.ID, suite.carol, map[string]string{"receiverId": suite.alice.ID})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestUpdateMessage() {
	t := suite.T()
	msg := suite.sendText(suite.alice, suite.bob, "typo")

	w := suite.request(http.MethodPatch, "/api/messages/update/"+msg.ID, suite.bob, map[string]string{"text": "hijack"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You can only update your own messages", suite.errorMessage(w))

	w = suite.request(http.MethodPatch, "/api/messages/update/"+msg.ID, suite.alice, map[string]string{"text": "fixed"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated models.Message
	suite.decode(w, &updated)
	assert.Equal(t, "fixed", updated.Text)

	events := suite.emitter.to(suite.bob.ID, websocket.EventMessageUpdated)
	suite.Require().Len(events, 1)
	assert.Equal(t, "fixed", events[0].Payload.(*models.Message).Text)

	w = suite.request(http.MethodPatch, "/api/messages/update/missing", suite.alice, map[string]string{"text": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestUpdateMessageOutsideWindow() {
	msg := suite.sendText(suite.alice, suite.bob, "old news")
	suite.Require().NoError(suite.db.Model(&models.Message{}).
		Where("id = ?", msg.ID).
		Update("created_at", time.Now().UTC().Add(-6*time.Minute)).Error)

	w := suite.request(http.MethodPatch, "/api/messages/update/"+msg.ID, suite.alice, map[string]string{"text": "too late"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("You can only update messages within 5 minutes of sending", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestDeleteMessageIsSoft() {
	t := suite.T()
	msg := suite.sendText(suite.alice, suite.bob, "oops")

	w := suite.request(http.MethodDelete, "/api/messages/delete/"+msg.ID, suite.bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = suite.request(http.MethodDelete, "/api/messages/delete/"+msg.ID, suite.alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Message deleted successfully", suite.messageOf(w))

	var stored models.Message
	suite.Require().NoError(suite.db.First(&stored, "id = ?", msg.ID).Error)
	assert.True(t, stored.IsDeleted)

	events := suite.emitter.to(suite.bob.ID, websocket.EventMessageDeleted)
	suite.Require().Len(events, 1)
	assert.Equal(t, msg.ID, events[0].Payload)

	// Hidden from history, and cannot be edited
	w = suite.request(http.MethodGet, "/api/messages/"+suite.alice.ID, suite.bob, nil)
	var history []models.Message
	suite.decode(w, &history)
	assert.Empty(t, history)

	w = suite.request(http.MethodPatch, "/api/messages/update/"+msg.ID, suite.alice, map[string]string{"text": "undo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// REACTION ENDPOINT TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestReactions() {
	t := suite.T()
	msg := suite.sendText(suite.alice, suite.bob, "react to me")

	w := suite.request(http.MethodPost, "/api/messages/react/"+msg.ID, suite.bob, map[string]string{"emoji": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/messages/react/"+msg.ID, suite.bob, map[string]string{"emoji": "🔥"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var reacted models.Message
	suite.decode(w, &reacted)
	suite.Require().Len(reacted.Reactions, 1)
	assert.Equal(t, "🔥", reacted.Reactions[0].Emoji)
	suite.Require().NotNil(reacted.Reactions[0].User)
	assert.Equal(t, "Bob", reacted.Reactions[0].User.FullName)

	// The receiver reacted, so the sender hears about it
	assert.Len(t, suite.emitter.to(suite.alice.ID, websocket.EventMessageReacted), 1)
	notifs := suite.emitter.to(suite.alice.ID, websocket.EventNewNotification)
	suite.Require().Len(notifs, 1)
	assert.Equal(t, models.NotificationReaction, notifs[0].Payload.(*models.Notification).Type)

	w = suite.request(http.MethodPost, "/api/messages/react/"+msg.ID, suite.bob, map[string]string{"emoji": "🔥"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You have already reacted with this emoji", suite.errorMessage(w))

	w = suite.request(http.MethodDelete, "/api/messages/react/"+msg.ID, suite.bob, map[string]string{"emoji": "👍"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Reaction not found", suite.errorMessage(w))

	w = suite.request(http.MethodDelete, "/api/messages/react/"+msg.ID, suite.bob, map[string]string{"emoji": "🔥"})
	suite.Require().Equal(http.StatusOK, w.Code)
	var cleared models.Message
	suite.decode(w, &cleared)
	assert.Empty(t, cleared.Reactions)
	assert.Len(t, suite.emitter.to(suite.alice.ID, websocket.EventMessageReacted), 2)
}

func (suite *HandlersTestSuite) TestSelfReactionDoesNotNotify() {
	msg := suite.sendText(suite.alice, suite.bob, "mine")

	w := suite.request(http.MethodPost, "/api/messages/react/"+msg.ID, suite.alice, map[string]string{"emoji": "👍"})
	suite.Require().Equal(http.StatusOK, w.Code)

	suite.Empty(suite.emitter.to(suite.alice.ID, websocket.EventNewNotification))
	suite.Len(suite.emitter.to(suite.bob.ID, websocket.EventMessageReacted), 1)
}

func (suite *HandlersTestSuite) TestFormatWindow() {
	suite.Equal("5 minutes", formatWindow(5*time.Minute))
	suite.Equal("1 minute", formatWindow(time.Minute))
	suite.Equal("2 hours", formatWindow(2*time.Hour))
	suite.Equal("1m30s", formatWindow(90*time.Second))
}
