package websocket

import (
	"context"
	"errors"
	"strings"
)

// PresenceStore mirrors who is online outside this process. The hub calls
// it from the registry loop, so implementations must not block for long and
// must swallow their own errors.
type PresenceStore interface {
	MarkOnline(ctx context.Context, userID string)
	MarkOffline(ctx context.Context, userID string)
}

// ErrMissingReceiver is returned by relay handlers when the frame names no peer
var ErrMissingReceiver = errors.New("receiverId is required")

// RegisterDefaultHandlers installs the client-initiated frames every
// connection understands
func (h *Hub) RegisterDefaultHandlers() {
	// Explicit roster request; same payload as the broadcast
	h.RegisterHandler(EventOnlineUsers, func(client *Client, msg *Message) error {
		return client.Send(NewReply(msg, EventOnlineUsers, h.OnlineUsers()))
	})

	h.RegisterHandler(EventTyping, h.relayTyping(EventTyping))
	h.RegisterHandler(EventStopTyping, h.relayTyping(EventStopTyping))
}

// relayTyping forwards a typing indicator to its receiver, stamped with the
// sender's id. Anonymous connections cannot type.
func (h *Hub) relayTyping(event string) MessageHandler {
	return func(client *Client, msg *Message) error {
		if client.UserID == "" {
			return ErrInvalidUserID
		}

		var payload TypingPayload
		if err := msg.ParsePayload(&payload); err != nil {
			return err
		}
		payload.ReceiverID = strings.TrimSpace(payload.ReceiverID)
		if payload.ReceiverID == "" {
			return ErrMissingReceiver
		}

		payload.SenderID = client.UserID
		h.EmitToUser(payload.ReceiverID, event, payload)
		return nil
	}
}
