package api

import (
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/client"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/logger"
)

// Attachments maps a form field (image, video, audio, file) to a local path
type Attachments map[string]string

// ListUsers returns every other account, for picking a conversation
func ListUsers() ([]User, error) {
	var out []User
	resp, err := client.GetClient().R().SetResult(&out).Get("/api/messages/users")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// Conversation returns the direct messages with userID, oldest first
func Conversation(userID string) ([]Message, error) {
	logger.Debug("Fetching conversation", "user_id", userID)

	var out []Message
	resp, err := client.GetClient().R().
		SetPathParam("id", userID).
		SetResult(&out).
		Get("/api/messages/{id}")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage sends text and attachments to receiverID. Text-only messages
// go as JSON, anything with a file as multipart.
func SendMessage(receiverID, text string, files Attachments) (*Message, error) {
	logger.Debug("Sending message", "receiver_id", receiverID, "attachments", len(files))

	var out Message
	req := client.GetClient().R().SetPathParam("id", receiverID).SetResult(&out)
	withContent(req, text, files)

	resp, err := req.Post("/api/messages/send/{id}")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForwardMessage copies messageID into a conversation with receiverID
func ForwardMessage(messageID, receiverID string) (*Message, error) {
	var out Message
	resp, err := client.GetClient().R().
		SetPathParam("messageId", messageID).
		SetBody(map[string]string{"receiverId": receiverID}).
		SetResult(&out).
		Post("/api/messages/forward/{messageId}")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMessage replaces the text of one of the caller's recent messages
func UpdateMessage(messageID, text string) (*Message, error) {
	var out Message
	resp, err := client.GetClient().R().
		SetPathParam("messageId", messageID).
		SetBody(map[string]string{"text": text}).
		SetResult(&out).
		Patch("/api/messages/update/{messageId}")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMessage soft-deletes one of the caller's messages
func DeleteMessage(messageID string) error {
	resp, err := client.GetClient().R().
		SetPathParam("messageId", messageID).
		Delete("/api/messages/delete/{messageId}")
	return CheckResponse(resp, err)
}

// React adds emoji to a message
func React(messageID, emoji string) (*Message, error) {
	return reaction(messageID, emoji, true)
}

// Unreact removes the caller's emoji from a message
func Unreact(messageID, emoji string) (*Message, error) {
	return reaction(messageID, emoji, false)
}

func reaction(messageID, emoji string, add bool) (*Message, error) {
	var out Message
	req := client.GetClient().R().
		SetPathParam("messageId", messageID).
		SetBody(map[string]string{"emoji": emoji}).
		SetResult(&out)

	var err error
	if add {
		_, err = checked(req.Post("/api/messages/react/{messageId}"))
	} else {
		_, err = checked(req.Delete("/api/messages/react/{messageId}"))
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
