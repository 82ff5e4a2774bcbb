package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/api"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/formatter"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/logger"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/output"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/websocket"
)

// WatchService streams realtime events to the terminal
type WatchService struct {
	me string
}

// NewWatchService creates a new watch service
func NewWatchService() *WatchService {
	return &WatchService{}
}

// Watch connects to the realtime endpoint and prints events until ctx is
// cancelled or the connection is lost for good. An empty filter shows all.
func (ws *WatchService) Watch(ctx context.Context, filter []string) error {
	creds, err := Authenticated()
	if err != nil {
		return err
	}
	ws.me = creds.UserID

	conn, err := websocket.FromConfig()
	if err != nil {
		return err
	}

	wanted := map[string]bool{}
	for _, f := range filter {
		wanted[strings.TrimSpace(f)] = true
	}
	conn.On("", func(ev websocket.Event) {
		if ev.Type == websocket.TypePong {
			return
		}
		if len(wanted) > 0 && !wanted[ev.Type] {
			return
		}
		ws.print(ev)
	})

	if err := conn.Connect(creds.Token); err != nil {
		return fmt.Errorf("failed to connect to the realtime server: %w", err)
	}
	defer conn.Close()

	output.PrintInfo("Watching as %s. Press Ctrl+C to stop.", formatter.Bold.Sprint(creds.FullName))

	select {
	case <-ctx.Done():
		stats := conn.GetStats()
		logger.Debug("Watch stopped", "received", stats.MessagesReceived, "reconnects", stats.ReconnectCount)
		return nil
	case <-conn.Done():
		return fmt.Errorf("connection lost: %s", conn.GetStats().LastError)
	}
}

func (ws *WatchService) print(ev websocket.Event) {
	if output.IsJSON() {
		if err := output.JSON(ev); err != nil {
			logger.Warn("Failed to print event", "error", err)
		}
		return
	}
	if err := ws.describe(ev); err != nil {
		logger.Warn("Undecodable event payload", "type", ev.Type, "error", err)
	}
}

func (ws *WatchService) describe(ev websocket.Event) error {
	tag := formatter.Event.Sprintf("%-16s", ev.Type)
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(output.Out, "%s %s\n", tag, fmt.Sprintf(format, args...))
	}

	switch ev.Type {
	case websocket.EventNewMessage, websocket.EventNewGroupMessage, websocket.EventMessageUpdated:
		var m api.Message
		if err := ev.Decode(&m); err != nil {
			return err
		}
		fmt.Fprint(output.Out, tag+" ")
		if m.GroupID != "" {
			fmt.Fprint(output.Out, formatter.Dim.Sprintf("<group %s> ", formatter.ShortID(m.GroupID)))
		}
		PrintMessage(&m, ws.me)

	case websocket.EventMessageReacted:
		var m api.Message
		if err := ev.Decode(&m); err != nil {
			return err
		}
		line("%s %s", formatter.ShortID(m.ID), reactionSummary(m.Reactions))

	case websocket.EventMessageDeleted, websocket.EventNotificationDeleted:
		var id string
		if err := ev.Decode(&id); err != nil {
			return err
		}
		line("%s", id)

	case websocket.EventNewNotification:
		var n api.Notification
		if err := ev.Decode(&n); err != nil {
			return err
		}
		line("[%s] %s", n.Type, n.Content)

	case websocket.EventNewGroup, websocket.EventAddedToGroup, websocket.EventRemovedFromGroup:
		var g api.Group
		if err := ev.Decode(&g); err != nil {
			return err
		}
		line("%s (%s), %d members", formatter.Bold.Sprint(g.Name), g.ID, len(g.Members))

	case websocket.EventNewStatus:
		var s api.Status
		if err := ev.Decode(&s); err != nil {
			return err
		}
		author := s.UserID
		if s.User != nil {
			author = s.User.FullName
		}
		line("%s: %s", formatter.Peer.Sprint(author), formatter.Body(s.Text, s.Media(), bodyWidth))

	case websocket.EventTyping, websocket.EventStopTyping:
		var p websocket.TypingPayload
		if err := ev.Decode(&p); err != nil {
			return err
		}
		line("%s", p.SenderID)

	case websocket.EventOnlineUsers:
		var ids []string
		if err := ev.Decode(&ids); err != nil {
			return err
		}
		line("%d online", len(ids))

	case websocket.TypeSystem, websocket.TypeError:
		var p struct {
			Event   string `json:"event"`
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := ev.Decode(&p); err != nil {
			return err
		}
		line("%s%s %s", p.Event, p.Code, p.Message)

	default:
		line("%s", string(ev.Payload))
	}
	return nil
}
