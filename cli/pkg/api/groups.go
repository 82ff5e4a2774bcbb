package api

import (
	"strconv"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/client"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/logger"
)

// CreateGroupRequest describes a new group; ImagePath is an optional local file
type CreateGroupRequest struct {
	Name        string
	Description string
	Members     []string
	ImagePath   string
}

// CreateGroup creates a group with the caller as admin
func CreateGroup(in CreateGroupRequest) (*Group, error) {
	logger.Debug("Creating group", "name", in.Name, "members", len(in.Members))

	var out Group
	req := client.GetClient().R().SetResult(&out)
	if in.ImagePath == "" {
		req.SetBody(map[string]interface{}{
			"name":        in.Name,
			"description": in.Description,
			"members":     in.Members,
		})
	} else {
		req.SetFormData(map[string]string{"name": in.Name, "description": in.Description})
		for _, id := range in.Members {
			req.FormData.Add("members", id)
		}
		req.SetFile("groupImage", in.ImagePath)
	}

	if _, err := checked(req.Post("/api/groups")); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListGroups returns the caller's groups, newest first
func ListGroups() ([]Group, error) {
	var out []Group
	resp, err := client.GetClient().R().SetResult(&out).Get("/api/groups")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// AddMembers adds users to a group; the caller must be an admin
func AddMembers(groupID string, members []string) (*Group, error) {
	return changeMembers(groupID, members, "/api/groups/{groupId}/add-members")
}

// RemoveMembers removes users from a group; the caller must be an admin
func RemoveMembers(groupID string, members []string) (*Group, error) {
	return changeMembers(groupID, members, "/api/groups/{groupId}/remove-members")
}

func changeMembers(groupID string, members []string, path string) (*Group, error) {
	var out Group
	resp, err := client.GetClient().R().
		SetPathParam("groupId", groupID).
		SetBody(map[string][]string{"members": members}).
		SetResult(&out).
		Post(path)
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendGroupMessage posts text and attachments to a group
func SendGroupMessage(groupID, text string, files Attachments) (*Message, error) {
	var out Message
	req := client.GetClient().R().SetPathParam("groupId", groupID).SetResult(&out)
	withContent(req, text, files)

	if _, err := checked(req.Post("/api/groups/{groupId}/messages")); err != nil {
		return nil, err
	}
	return &out, nil
}

// GroupMessages returns one page of group history
func GroupMessages(groupID string, page, limit int) (*GroupMessagesPage, error) {
	var out GroupMessagesPage
	resp, err := client.GetClient().R().
		SetPathParam("groupId", groupID).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&out).
		Get("/api/groups/{groupId}/messages")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}
