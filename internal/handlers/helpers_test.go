package handlers

import (
	"testing"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// HELPER FUNCTION TESTS
// =============================================================================

func TestMessageKind(t *testing.T) {
	testCases := []struct {
		name     string
		msg      models.Message
		expected string
	}{
		{"text", models.Message{Text: "hi"}, "text"},
		{"image", models.Message{Text: "hi", Image: "a.png"}, "image"},
		{"video", models.Message{Video: "a.mp4"}, "video"},
		{"audio", models.Message{Audio: "a.mp3"}, "audio"},
		{"file", models.Message{File: "a.pdf"}, "file"},
		{"image wins", models.Message{Image: "a.png", File: "a.pdf"}, "image"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, messageKind(&tc.msg))
		})
	}
}

func TestEmitWithoutRealtimeIsNoop(t *testing.T) {
	h := NewHandlers(nil, nil)
	assert.Equal(t, 0, h.emitToUser("u1", "newMessage", nil))
	assert.Equal(t, 0, h.emitToUsers([]string{"u1", "u2"}, "newMessage", nil))
}

func TestEmitSkipsEmptyRecipient(t *testing.T) {
	emitter := newFakeEmitter()
	h := NewHandlers(emitter, nil)

	assert.Equal(t, 0, h.emitToUser("", "newMessage", nil))
	assert.Equal(t, 1, h.emitToUser("u1", "newMessage", nil))

	emitter.offline["u2"] = true
	assert.Equal(t, 1, h.emitToUsers([]string{"u1", "u2"}, "newMessage", nil))
}

func TestSetOptionsKeepsDefaults(t *testing.T) {
	h := NewHandlers(nil, nil)
	h.SetOptions(Options{StatusTTL: time.Hour})

	assert.Equal(t, time.Hour, h.opts.StatusTTL)
	assert.Equal(t, DefaultOptions().MessageEditWindow, h.opts.MessageEditWindow)
}

func TestDerefString(t *testing.T) {
	assert.Equal(t, "", derefString(nil))
	assert.Equal(t, "x", derefString(strPtr("x")))
}
