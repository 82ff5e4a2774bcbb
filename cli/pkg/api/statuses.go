package api

import (
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/client"
)

// CreateStatusRequest describes a new status; paths are optional local files
type CreateStatusRequest struct {
	Text       string
	Background string
	MediaPath  string
	MusicPath  string
}

// CreateStatus posts a status that expires after the server's TTL
func CreateStatus(in CreateStatusRequest) (*Status, error) {
	var out Status
	req := client.GetClient().R().
		SetFormData(map[string]string{"text": in.Text, "background": in.Background}).
		SetResult(&out)
	if in.MediaPath != "" {
		req.SetFile("media", in.MediaPath)
	}
	if in.MusicPath != "" {
		req.SetFile("music", in.MusicPath)
	}

	if _, err := checked(req.Post("/api/status")); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListStatuses returns every live status
func ListStatuses() ([]Status, error) {
	var out []Status
	resp, err := client.GetClient().R().SetResult(&out).Get("/api/status")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplyToStatus sends text to the status author as a direct message
func ReplyToStatus(statusID, text string) (*Message, error) {
	var out Message
	resp, err := client.GetClient().R().
		SetBody(map[string]string{"statusId": statusID, "text": text}).
		SetResult(&out).
		Post("/api/status/reply")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}
