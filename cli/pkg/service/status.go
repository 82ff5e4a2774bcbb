package service

import (
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/api"
	clierrors "github.com/Hicham-Azeroual/chatApplication/cli/pkg/errors"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/formatter"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/output"
)

// StatusService handles expiring status posts
type StatusService struct{}

// NewStatusService creates a new status service
func NewStatusService() *StatusService {
	return &StatusService{}
}

// Create posts a status
func (ss *StatusService) Create(in api.CreateStatusRequest) error {
	if in.Text == "" && in.MediaPath == "" && in.MusicPath == "" {
		return clierrors.ValidationError("status", "text, media or music is required")
	}
	files := api.Attachments{}
	if in.MediaPath != "" {
		files["media"] = in.MediaPath
	}
	if in.MusicPath != "" {
		files["music"] = in.MusicPath
	}
	if err := checkFiles(files); err != nil {
		return err
	}
	if _, err := Authenticated(); err != nil {
		return err
	}

	status, err := api.CreateStatus(in)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(status)
	}
	output.PrintSuccess("✓ Status posted, expires %s", formatter.ExpiresIn(status.ExpiresAt))
	return nil
}

// List prints every live status
func (ss *StatusService) List() error {
	if _, err := Authenticated(); err != nil {
		return err
	}
	statuses, err := api.ListStatuses()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		author := s.UserID
		if s.User != nil {
			author = s.User.FullName
		}
		rows = append(rows, []string{
			s.ID,
			author,
			formatter.Body(s.Text, s.Media(), 40),
			formatter.TimeAgo(s.CreatedAt),
			formatter.ExpiresIn(s.ExpiresAt),
		})
	}
	return output.Table([]string{"ID", "AUTHOR", "CONTENT", "POSTED", "EXPIRES"}, rows, statuses)
}

// Reply answers a status with a direct message to its author
func (ss *StatusService) Reply(statusID, text string) error {
	if text == "" {
		return clierrors.ValidationError("text", "cannot be empty")
	}
	if _, err := Authenticated(); err != nil {
		return err
	}
	msg, err := api.ReplyToStatus(statusID, text)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(msg)
	}
	output.PrintSuccess("✓ Reply sent (%s)", msg.ID)
	return nil
}
