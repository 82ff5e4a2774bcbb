package service

import (
	"fmt"
	"os"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/api"
	clierrors "github.com/Hicham-Azeroual/chatApplication/cli/pkg/errors"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/formatter"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/logger"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/output"
)

const bodyWidth = 60

// MessageService handles direct messaging operations
type MessageService struct{}

// NewMessageService creates a new message service
func NewMessageService() *MessageService {
	return &MessageService{}
}

// ListUsers prints the accounts the caller can talk to, marking who is online
func (ms *MessageService) ListUsers() error {
	if _, err := Authenticated(); err != nil {
		return err
	}
	users, err := api.ListUsers()
	if err != nil {
		return err
	}

	online := map[string]bool{}
	if ids, err := api.OnlineUsers(); err == nil {
		for _, id := range ids {
			online[id] = true
		}
	} else {
		logger.Debug("Presence lookup failed", "error", err)
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		status := ""
		if online[u.ID] {
			status = "online"
		}
		rows = append(rows, []string{u.ID, u.FullName, u.Email, status})
	}
	return output.Table([]string{"ID", "NAME", "EMAIL", "STATUS"}, rows, users)
}

// History prints the conversation with userID, oldest first
func (ms *MessageService) History(userID string) error {
	creds, err := Authenticated()
	if err != nil {
		return err
	}
	messages, err := api.Conversation(userID)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(messages)
	}
	if len(messages) == 0 {
		output.PrintInfo("No messages yet. Start with `chatctl message send %s <text>`", userID)
		return nil
	}
	for i := range messages {
		PrintMessage(&messages[i], creds.UserID)
	}
	return nil
}

// Send sends text and attachments to receiverID
func (ms *MessageService) Send(receiverID, text string, files api.Attachments) error {
	if text == "" && len(files) == 0 {
		return clierrors.ValidationError("message", "text or an attachment is required")
	}
	if err := checkFiles(files); err != nil {
		return err
	}
	if _, err := Authenticated(); err != nil {
		return err
	}

	logger.Debug("Sending message", "receiver_id", receiverID)
	msg, err := api.SendMessage(receiverID, text, files)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(msg)
	}
	output.PrintSuccess("✓ Message sent (%s)", msg.ID)
	return nil
}

// Forward copies messageID to receiverID
func (ms *MessageService) Forward(messageID, receiverID string) error {
	if _, err := Authenticated(); err != nil {
		return err
	}
	msg, err := api.ForwardMessage(messageID, receiverID)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(msg)
	}
	output.PrintSuccess("✓ Message forwarded (%s)", msg.ID)
	return nil
}

// Edit replaces the text of a recent message
func (ms *MessageService) Edit(messageID, text string) error {
	if text == "" {
		return clierrors.ValidationError("text", "cannot be empty")
	}
	if _, err := Authenticated(); err != nil {
		return err
	}
	msg, err := api.UpdateMessage(messageID, text)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(msg)
	}
	output.PrintSuccess("✓ Message updated")
	return nil
}

// Delete removes one of the caller's messages
func (ms *MessageService) Delete(messageID string) error {
	if _, err := Authenticated(); err != nil {
		return err
	}
	if err := api.DeleteMessage(messageID); err != nil {
		return err
	}
	output.PrintSuccess("✓ Message deleted")
	return nil
}

// React adds or removes the caller's emoji on a message
func (ms *MessageService) React(messageID, emoji string, remove bool) error {
	if emoji == "" {
		return clierrors.ValidationError("emoji", "cannot be empty")
	}
	if _, err := Authenticated(); err != nil {
		return err
	}

	var msg *api.Message
	var err error
	if remove {
		msg, err = api.Unreact(messageID, emoji)
	} else {
		msg, err = api.React(messageID, emoji)
	}
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(msg)
	}
	output.PrintSuccess("✓ Reactions: %s", reactionSummary(msg.Reactions))
	return nil
}

// PrintMessage writes one chat line: time, sender, body and reactions
func PrintMessage(m *api.Message, me string) {
	who := formatter.Peer
	name := m.SenderID
	if m.Sender != nil && m.Sender.FullName != "" {
		name = m.Sender.FullName
	}
	if m.SenderID == me {
		who = formatter.Me
		name = "you"
	}

	body := formatter.Body(m.Text, m.Media(), bodyWidth)
	switch {
	case m.IsDeleted:
		body = formatter.Dim.Sprint("message deleted")
	case m.IsForwarded:
		body = formatter.Dim.Sprint("(forwarded) ") + body
	}
	if m.StatusReply != nil {
		body = formatter.Dim.Sprintf("↪ status %q: ", formatter.Truncate(m.StatusReply.Text, 20)) + body
	}

	line := fmt.Sprintf("%s %s %s",
		formatter.Dim.Sprintf("[%s %s]", m.CreatedAt.Local().Format("15:04"), formatter.ShortID(m.ID)),
		who.Sprint(name+":"),
		body)
	if len(m.Reactions) > 0 {
		line += " " + formatter.Dim.Sprint(reactionSummary(m.Reactions))
	}
	fmt.Fprintln(output.Out, line)
}

// reactionSummary counts reactions per emoji in first-seen order, e.g. "👍2 ❤️1"
func reactionSummary(reactions []api.Reaction) string {
	if len(reactions) == 0 {
		return "none"
	}
	counts := map[string]int{}
	var order []string
	for _, r := range reactions {
		if counts[r.Emoji] == 0 {
			order = append(order, r.Emoji)
		}
		counts[r.Emoji]++
	}
	s := ""
	for i, emoji := range order {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s%d", emoji, counts[emoji])
	}
	return s
}

func checkFiles(files api.Attachments) error {
	for _, path := range files {
		if _, err := os.Stat(path); err != nil {
			return clierrors.FileNotFoundError(path)
		}
	}
	return nil
}
