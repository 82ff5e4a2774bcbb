package websocket

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/logger"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Protocol frames
const (
	TypeSystem = "system"
	TypePing   = "ping"
	TypePong   = "pong"
	TypeError  = "error"
)

// Chat events pushed by the server
const (
	EventOnlineUsers         = "getOnlineUsers"
	EventNewMessage          = "newMessage"
	EventNewGroupMessage     = "newGroupMessage"
	EventMessageUpdated      = "messageUpdated"
	EventMessageDeleted      = "messageDeleted"
	EventMessageReacted      = "messageReacted"
	EventNewNotification     = "newNotification"
	EventNotificationDeleted = "notificationDeleted"
	EventNewGroup            = "newGroup"
	EventAddedToGroup        = "addedToGroup"
	EventRemovedFromGroup    = "removedFromGroup"
	EventNewStatus           = "newStatus"
	EventTyping              = "typing"
	EventStopTyping          = "stopTyping"
)

// Event is one envelope received from the server
type Event struct {
	Type      string              `json:"type"`
	Payload   jsoniter.RawMessage `json:"payload,omitempty"`
	ID        string              `json:"id,omitempty"`
	ReplyTo   string              `json:"replyTo,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Decode unmarshals the payload into target
func (e *Event) Decode(target interface{}) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, target)
}

// frame is an outgoing envelope; the server accepts unix ms timestamps
type frame struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	ID        string      `json:"id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type pingPayload struct {
	ClientTime int64 `json:"clientTime"`
}

type pongPayload struct {
	ClientTime int64 `json:"clientTime"`
	Latency    int64 `json:"latencyMs"`
}

// TypingPayload is the body of typing and stopTyping events
type TypingPayload struct {
	ReceiverID string `json:"receiverId"`
	SenderID   string `json:"senderId,omitempty"`
}

// Config holds WebSocket client configuration
type Config struct {
	URL                  string
	ConnectTimeout       time.Duration
	HeartbeatInterval    time.Duration
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	MaxReconnectAttempts int // negative means unlimited
}

// DefaultConfig returns a configuration for the given ws:// or wss:// URL
func DefaultConfig(wsURL string) Config {
	return Config{
		URL:                  wsURL,
		ConnectTimeout:       15 * time.Second,
		HeartbeatInterval:    30 * time.Second,
		ReconnectBaseDelay:   2 * time.Second,
		ReconnectMaxDelay:    30 * time.Second,
		MaxReconnectAttempts: -1,
	}
}

// ConnectionState represents the state of the WebSocket connection
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
)

// ConnectionStats holds connection statistics
type ConnectionStats struct {
	MessagesReceived int64
	MessagesSent     int64
	ReconnectCount   int
	LastLatency      time.Duration
	LastError        string
	ConnectedAt      time.Time
	DisconnectedAt   time.Time
}

type listener struct {
	id int
	fn func(Event)
}

// Client manages one realtime connection. Listeners run on the read
// goroutine in arrival order.
type Client struct {
	config Config
	token  string
	state  atomic.Int32

	mu      sync.Mutex // guards conn
	writeMu sync.Mutex
	conn    *websocket.Conn

	listenersMu sync.RWMutex
	listeners   map[string][]listener
	nextID      int

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once

	statsMu sync.RWMutex
	stats   ConnectionStats
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		config:    config,
		listeners: make(map[string][]listener),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	c.setState(StateDisconnected)
	return c
}

// Connect dials the server with token and starts the read and heartbeat loops
func (c *Client) Connect(token string) error {
	c.token = token
	c.setState(StateConnecting)

	conn, err := c.dial()
	if err != nil {
		c.setState(StateError)
		c.recordError(err)
		return err
	}
	c.attach(conn)

	go c.readLoop(conn)
	go c.heartbeatLoop()

	logger.Debug("WebSocket connected", "url", c.config.URL)
	return nil
}

// Close stops reconnecting and closes the connection
func (c *Client) Close() error {
	c.cancel()

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		c.writeMu.Lock()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		conn.Close()
	}

	c.setState(StateDisconnected)
	c.recordDisconnected()
	c.doneOnce.Do(func() { close(c.done) })
	logger.Debug("WebSocket disconnected")
	return nil
}

// Done is closed when the client stops for good, either through Close or
// after the reconnect attempts run out
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// IsConnected returns true if the connection is established
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// State returns the current connection state
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// On subscribes fn to events of eventType; an empty type receives every
// event. The returned func unsubscribes.
func (c *Client) On(eventType string, fn func(Event)) func() {
	c.listenersMu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners[eventType] = append(c.listeners[eventType], listener{id: id, fn: fn})
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		ls := c.listeners[eventType]
		for i, l := range ls {
			if l.id == id {
				c.listeners[eventType] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Send writes one envelope to the server
func (c *Client) Send(eventType string, payload interface{}) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	data, err := json.Marshal(frame{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	c.statsMu.Lock()
	c.stats.MessagesSent++
	c.statsMu.Unlock()
	return nil
}

// Typing tells receiverID that the caller started or stopped typing
func (c *Client) Typing(receiverID string, typing bool) error {
	event := EventStopTyping
	if typing {
		event = EventTyping
	}
	return c.Send(event, TypingPayload{ReceiverID: receiverID})
}

// Ping sends a heartbeat; the pong updates LastLatency
func (c *Client) Ping() error {
	return c.Send(TypePing, pingPayload{ClientTime: time.Now().UnixMilli()})
}

// GetStats returns connection statistics
func (c *Client) GetStats() ConnectionStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

func (c *Client) dial() (*websocket.Conn, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		q := u.Query()
		q.Set("token", c.token)
		u.RawQuery = q.Encode()
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.config.ConnectTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	return conn, err
}

func (c *Client) attach(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateConnected)
	c.statsMu.Lock()
	c.stats.ConnectedAt = time.Now()
	c.statsMu.Unlock()
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.recordError(err)
			logger.Debug("WebSocket read error", "error", err)
			c.handleDisconnect(conn)
			return
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			logger.Warn("Dropping malformed frame", "error", err)
			continue
		}

		c.statsMu.Lock()
		c.stats.MessagesReceived++
		c.statsMu.Unlock()

		if ev.Type == TypePong {
			var pong pongPayload
			if ev.Decode(&pong) == nil {
				c.statsMu.Lock()
				c.stats.LastLatency = time.Duration(pong.Latency) * time.Millisecond
				c.statsMu.Unlock()
			}
		}

		c.emit(ev)
	}
}

func (c *Client) emit(ev Event) {
	c.listenersMu.RLock()
	ls := append([]listener{}, c.listeners[ev.Type]...)
	ls = append(ls, c.listeners[""]...)
	c.listenersMu.RUnlock()

	for _, l := range ls {
		l.fn(ev)
	}
}

func (c *Client) heartbeatLoop() {
	ticker := time.NewTicker(c.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if c.IsConnected() {
				if err := c.Ping(); err != nil {
					logger.Debug("Failed to send heartbeat", "error", err)
				}
			}
		}
	}
}

// handleDisconnect reconnects with exponential backoff and jitter until it
// succeeds, the attempts run out or the client is closed
func (c *Client) handleDisconnect(dead *websocket.Conn) {
	c.mu.Lock()
	if c.conn == dead {
		c.conn = nil
	}
	c.mu.Unlock()
	dead.Close()

	c.setState(StateReconnecting)
	c.recordDisconnected()

	delay := c.config.ReconnectBaseDelay
	for attempt := 0; ; attempt++ {
		if c.config.MaxReconnectAttempts >= 0 && attempt >= c.config.MaxReconnectAttempts {
			c.setState(StateError)
			logger.Error("Max reconnection attempts reached")
			c.doneOnce.Do(func() { close(c.done) })
			return
		}

		wait := delay + time.Duration(rand.Int63n(int64(time.Second)))
		logger.Debug("Reconnecting WebSocket", "attempt", attempt+1, "wait", wait)

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(wait):
		}

		conn, err := c.dial()
		if err != nil {
			c.recordError(err)
			delay *= 2
			if delay > c.config.ReconnectMaxDelay {
				delay = c.config.ReconnectMaxDelay
			}
			continue
		}

		c.attach(conn)
		c.statsMu.Lock()
		c.stats.ReconnectCount++
		c.statsMu.Unlock()
		logger.Info("WebSocket reconnected", "attempts", attempt+1)

		go c.readLoop(conn)
		return
	}
}

func (c *Client) setState(state ConnectionState) {
	c.state.Store(int32(state))
}

func (c *Client) recordError(err error) {
	c.statsMu.Lock()
	c.stats.LastError = err.Error()
	c.statsMu.Unlock()
}

func (c *Client) recordDisconnected() {
	c.statsMu.Lock()
	c.stats.DisconnectedAt = time.Now()
	c.statsMu.Unlock()
}
