package handlers

import (
	"net/http"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// STATUS ENDPOINT TESTS
// =============================================================================

func (suite *HandlersTestSuite) postStatus(user *models.User, text string) models.Status {
	w := suite.multipartRequest(http.MethodPost, "/api/status", user, map[string]string{"text": text, "background": "#123456"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var status models.Status
	suite.decode(w, &status)
	return status
}

func (suite *HandlersTestSuite) TestCreateStatusBroadcastsToOthers() {
	t := suite.T()
	suite.emitter.online = []string{suite.alice.ID, suite.bob.ID, suite.carol.ID}

	before := time.Now().UTC()
	status := suite.postStatus(suite.alice, "good morning")

	assert.Equal(t, "good morning", status.Text)
	assert.Equal(t, "#123456", status.Background)
	assert.WithinDuration(t, before.Add(24*time.Hour), status.ExpiresAt, time.Minute)
	suite.Require().NotNil(status.User)
	assert.Equal(t, "Alice", status.User.FullName)

	assert.ElementsMatch(t, []string{suite.bob.ID, suite.carol.ID}, suite.emitter.recipients(websocket.EventNewStatus))
}

func (suite *HandlersTestSuite) TestCreateStatusClassifiesMedia() {
	cases := []struct {
		name        string
		contentType string
		pick        func(models.Status) string
	}{
		{"image", "image/png", func(s models.Status) string { return s.Image }},
		{"video", "video/mp4", func(s models.Status) string { return s.Video }},
		{"audio", "audio/mpeg", func(s models.Status) string { return s.Audio }},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			w := suite.multipartRequest(http.MethodPost, "/api/status", suite.bob, nil,
				formFile{"media", "clip." + tc.name, tc.contentType, []byte("data")})
			suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

			var status models.Status
			suite.decode(w, &status)
			suite.Equal("https://cdn.test/statuses/"+suite.bob.ID+"/clip."+tc.name, tc.pick(status))
			suite.Len(status.MediaURLs(), 1)
		})
	}
}

func (suite *HandlersTestSuite) TestCreateStatusMusicIsAudio() {
	w := suite.multipartRequest(http.MethodPost, "/api/status", suite.bob, nil,
		formFile{"media", "pic.jpg", "image/jpeg", []byte("jpg")},
		formFile{"music", "song.mp3", "audio/mpeg", []byte("mp3")},
	)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var status models.Status
	suite.decode(w, &status)
	suite.NotEmpty(status.Image)
	suite.Equal("https://cdn.test/statuses/"+suite.bob.ID+"/song.mp3", status.Audio)
}

func (suite *HandlersTestSuite) TestCreateStatusRequiresContent() {
	w := suite.multipartRequest(http.MethodPost, "/api/status", suite.alice, map[string]string{"text": "   "})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("At least one of text, image, video, or audio is required.", suite.errorMessage(w))

	var count int64
	suite.db.Model(&models.Status{}).Count(&count)
	suite.Zero(count)
}

func (suite *HandlersTestSuite) TestGetStatusesHidesExpiredAndDeleted() {
	t := suite.T()
	live := suite.postStatus(suite.alice, "still here")
	expired := suite.postStatus(suite.bob, "gone")
	deleted := suite.postStatus(suite.carol, "removed")

	suite.db.Model(&models.Status{}).Where("id = ?", expired.ID).Update("expires_at", time.Now().UTC().Add(-time.Minute))
	suite.db.Model(&models.Status{}).Where("id = ?", deleted.ID).Update("is_deleted", true)

	w := suite.request(http.MethodGet, "/api/status", suite.bob, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var statuses []models.Status
	suite.decode(w, &statuses)
	suite.Require().Len(statuses, 1)
	assert.Equal(t, live.ID, statuses[0].ID)
	suite.Require().NotNil(statuses[0].User)
	assert.Equal(t, "Alice", statuses[0].User.FullName)
}

func (suite *HandlersTestSuite) TestReplyToStatus() {
	t := suite.T()
	status := suite.postStatus(suite.alice, "guess where I am")

	w := suite.request(http.MethodPost, "/api/status/reply", suite.bob, map[string]string{
		"statusId": status.ID, "text": "the beach?",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var msg models.Message
	suite.decode(w, &msg)
	assert.Equal(t, suite.bob.ID, msg.SenderID)
	assert.Equal(t, suite.alice.ID, derefString(msg.ReceiverID))
	suite.Require().NotNil(msg.StatusReply)
	assert.Equal(t, status.ID, msg.StatusReply.StatusID)
	assert.Equal(t, "guess where I am", msg.StatusReply.Text)
	assert.Equal(t, "Alice", msg.StatusReply.User.FullName)

	assert.Len(t, suite.emitter.to(suite.alice.ID, websocket.EventNewMessage), 1)
	notes := suite.emitter.to(suite.alice.ID, websocket.EventNewNotification)
	suite.Require().Len(notes, 1)
	assert.Equal(t, "Bob replied to your status", notes[0].Payload.(*models.Notification).Content)

	// The snapshot outlives the status
	suite.db.Model(&models.Status{}).Where("id = ?", status.ID).Update("is_deleted", true)
	w = suite.request(http.MethodGet, "/api/messages/"+suite.alice.ID, suite.bob, nil)
	var history []models.Message
	suite.decode(w, &history)
	suite.Require().Len(history, 1)
	suite.Require().NotNil(history[0].StatusReply)
	assert.Equal(t, status.ID, history[0].StatusReply.StatusID)
}

func (suite *HandlersTestSuite) TestReplyToStatusErrors() {
	status := suite.postStatus(suite.alice, "hello")

	w := suite.request(http.MethodPost, "/api/status/reply", suite.bob, map[string]string{"text": "hi"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/status/reply", suite.bob, map[string]string{"statusId": status.ID, "text": " "})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/status/reply", suite.bob, map[string]string{"statusId": "missing", "text": "hi"})
	suite.Equal(http.StatusNotFound, w.Code)

	suite.db.Model(&models.Status{}).Where("id = ?", status.ID).Update("expires_at", time.Now().UTC().Add(-time.Second))
	w = suite.request(http.MethodPost, "/api/status/reply", suite.bob, map[string]string{"statusId": status.ID, "text": "late"})
	suite.Equal(http.StatusNotFound, w.Code)
}
