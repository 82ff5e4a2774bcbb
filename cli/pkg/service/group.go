package service

import (
	"fmt"
	"strings"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/api"
	clierrors "github.com/Hicham-Azeroual/chatApplication/cli/pkg/errors"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/formatter"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/output"
)

// GroupService handles group chats
type GroupService struct{}

// NewGroupService creates a new group service
func NewGroupService() *GroupService {
	return &GroupService{}
}

// Create creates a group. The server requires at least two other members.
func (gs *GroupService) Create(in api.CreateGroupRequest) error {
	if strings.TrimSpace(in.Name) == "" {
		return clierrors.ValidationError("name", "cannot be empty")
	}
	if in.ImagePath != "" {
		if err := checkFiles(api.Attachments{"groupImage": in.ImagePath}); err != nil {
			return err
		}
	}
	if _, err := Authenticated(); err != nil {
		return err
	}

	group, err := api.CreateGroup(in)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(group)
	}
	output.PrintSuccess("✓ Group %s created (%s)", formatter.Bold.Sprint(group.Name), group.ID)
	return nil
}

// List prints the caller's groups
func (gs *GroupService) List() error {
	creds, err := Authenticated()
	if err != nil {
		return err
	}
	groups, err := api.ListGroups()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		role := "member"
		for _, a := range g.Admins {
			if a.ID == creds.UserID {
				role = "admin"
			}
		}
		rows = append(rows, []string{
			g.ID,
			g.Name,
			fmt.Sprintf("%d", len(g.Members)),
			role,
			formatter.Truncate(g.Description, 40),
		})
	}
	return output.Table([]string{"ID", "NAME", "MEMBERS", "ROLE", "DESCRIPTION"}, rows, groups)
}

// AddMembers adds users to a group
func (gs *GroupService) AddMembers(groupID string, members []string) error {
	return gs.changeMembers(groupID, members, true)
}

// RemoveMembers removes users from a group
func (gs *GroupService) RemoveMembers(groupID string, members []string) error {
	return gs.changeMembers(groupID, members, false)
}

func (gs *GroupService) changeMembers(groupID string, members []string, add bool) error {
	if len(members) == 0 {
		return clierrors.ValidationError("members", "at least one user id is required")
	}
	if _, err := Authenticated(); err != nil {
		return err
	}

	var group *api.Group
	var err error
	verb := "added to"
	if add {
		group, err = api.AddMembers(groupID, members)
	} else {
		verb = "removed from"
		group, err = api.RemoveMembers(groupID, members)
	}
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(group)
	}
	output.PrintSuccess("✓ %d user%s %s %s; %d member%s now",
		len(members), pluralize(len(members)), verb, group.Name,
		len(group.Members), pluralize(len(group.Members)))
	return nil
}

// Send posts a message to a group
func (gs *GroupService) Send(groupID, text string, files api.Attachments) error {
	if text == "" && len(files) == 0 {
		return clierrors.ValidationError("message", "text or an attachment is required")
	}
	if err := checkFiles(files); err != nil {
		return err
	}
	if _, err := Authenticated(); err != nil {
		return err
	}

	msg, err := api.SendGroupMessage(groupID, text, files)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(msg)
	}
	output.PrintSuccess("✓ Message sent (%s)", msg.ID)
	return nil
}

// Messages prints one page of group history, oldest first on screen
func (gs *GroupService) Messages(groupID string, page, limit int) error {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	creds, err := Authenticated()
	if err != nil {
		return err
	}

	result, err := api.GroupMessages(groupID, page, limit)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(result)
	}
	if len(result.Messages) == 0 {
		output.PrintInfo("No messages on page %d", page)
		return nil
	}

	// The server pages newest first
	for i := len(result.Messages) - 1; i >= 0; i-- {
		PrintMessage(&result.Messages[i], creds.UserID)
	}
	shown := (page-1)*limit + len(result.Messages)
	fmt.Fprintln(output.Out, formatter.Dim.Sprintf("page %d, %d of %d messages", page, shown, result.Total))
	return nil
}
