package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordResetMessage(t *testing.T) {
	url := "http://localhost:5173/reset-password/abc123"
	msg := PasswordResetMessage(url)

	assert.Equal(t, "Reset Your Password", msg.Subject)
	assert.Contains(t, msg.HTML, `href="`+url+`"`)
	assert.Contains(t, msg.Text, url)
}

func TestLogMailerNeverFails(t *testing.T) {
	var mailer Mailer = LogMailer{}
	assert.NoError(t, mailer.SendPasswordResetEmail(context.Background(), "a@b.co", "http://x/reset-password/t"))
}
