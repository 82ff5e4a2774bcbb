package email

import (
	"context"
	"fmt"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// Mailer sends transactional email
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error
}

// EmailService handles sending emails via AWS SES
type EmailService struct {
	client    *ses.Client
	fromEmail string
	fromName  string
}

// NewEmailService creates a new email service using AWS SES
func NewEmailService(region, fromEmail, fromName string) (*EmailService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &EmailService{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendPasswordResetEmail sends the reset link
func (e *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	msg := PasswordResetMessage(resetURL)

	from := e.fromEmail
	if e.fromName != "" {
		from = fmt.Sprintf("%s <%s>", e.fromName, e.fromEmail)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(msg.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(msg.HTML),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(msg.Text),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := e.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	logger.Log.Info("Password reset email sent", zap.String("to", toEmail))
	return nil
}

// CheckAccess verifies the credentials can reach SES
func (e *EmailService) CheckAccess(ctx context.Context) error {
	if _, err := e.client.GetSendQuota(ctx, &ses.GetSendQuotaInput{}); err != nil {
		return fmt.Errorf("ses access check failed: %w", err)
	}
	return nil
}

// LogMailer writes emails to the log instead of sending them. Used when SES
// is not configured.
type LogMailer struct{}

// SendPasswordResetEmail logs the reset link
func (LogMailer) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	logger.Log.Info("Password reset requested (email delivery disabled)",
		zap.String("to", toEmail),
		zap.String("reset_url", resetURL),
	)
	return nil
}

// Message is a rendered email
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// PasswordResetMessage renders the reset email for resetURL
func PasswordResetMessage(resetURL string) Message {
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1>Reset Your Password</h1>
		<p>You requested a password reset. Click the button below to choose a new password. This link expires in 1 hour.</p>
		<a href="%s" style="display: inline-block; padding: 12px 24px; background-color: #2563eb; color: white; text-decoration: none; border-radius: 6px;">Reset Password</a>
		<p>Or copy and paste this link into your browser:</p>
		<p style="word-break: break-all; color: #666;">%s</p>
		<p>If you didn't request this, you can safely ignore this email.</p>
	</div>
</body>
</html>`, resetURL, resetURL)

	text := fmt.Sprintf(`Reset Your Password

You requested a password reset. Open the link below to choose a new password. This link expires in 1 hour.

%s

If you didn't request this, you can safely ignore this email.
`, resetURL)

	return Message{
		Subject: "Reset Your Password",
		HTML:    html,
		Text:    text,
	}
}

var (
	_ Mailer = (*EmailService)(nil)
	_ Mailer = LogMailer{}
)
