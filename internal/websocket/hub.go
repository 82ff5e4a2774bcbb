// Package websocket is the realtime layer: a connection registry mapping each
// online user to their latest connection, a best-effort event dispatcher, and
// the presence broadcast that follows every registry change.
// Uses github.com/coder/websocket - the modern, context-aware WebSocket library for Go.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/metrics"
	"go.uber.org/zap"
)

var (
	// ErrInvalidUserID is returned when a connection offers an empty or blank user id
	ErrInvalidUserID = errors.New("invalid userId")
	// ErrHubClosed is returned for registry mutations after shutdown
	ErrHubClosed = errors.New("hub is shut down")
)

// Drop reasons reported to metrics
const (
	dropOffline    = "offline"
	dropBufferFull = "buffer_full"
	dropClosed     = "closed"
)

// Emitter is the dispatch surface domain handlers depend on
type Emitter interface {
	EmitToUser(userID, event string, payload interface{}) bool
	EmitToUsers(userIDs []string, event string, payload interface{}) int
	BroadcastExcept(excludeUserID, event string, payload interface{})
	OnlineUsers() []string
}

// Hub owns the connection registry. All registry mutations and the presence
// broadcast that follows each of them run on the Run goroutine, so every
// connection observes presence snapshots in mutation order.
type Hub struct {
	// Registry: user id -> latest connection
	conns map[string]*Client

	// Every attached connection, registered or not; presence goes to all of them
	live map[*Client]struct{}

	// Mutations, applied by Run
	ops chan registryOp

	// Guards conns, live and handlers
	mu sync.RWMutex

	metrics *Metrics

	// Mirrors presence to an external store when set
	presenceStore PresenceStore

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started atomic.Bool

	handlers map[string]MessageHandler

	rateLimitConfig RateLimitConfig
}

// Metrics tracks WebSocket statistics
type Metrics struct {
	TotalConnections   atomic.Int64
	ActiveConnections  atomic.Int64
	MessagesReceived   atomic.Int64
	MessagesSent       atomic.Int64
	Errors             atomic.Int64
	ConnectionsDropped atomic.Int64
	EventsDropped      atomic.Int64
}

// RateLimitConfig defines rate limiting parameters for inbound frames
type RateLimitConfig struct {
	// MaxMessagesPerSecond per client
	MaxMessagesPerSecond int
	// BurstSize allows short bursts above the rate
	BurstSize int
	// Window for rate calculation
	Window time.Duration
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxMessagesPerSecond: 10,
		BurstSize:            20,
		Window:               time.Second,
	}
}

// MessageHandler processes incoming messages of a specific type
type MessageHandler func(client *Client, message *Message) error

type opKind int

const (
	opRegister opKind = iota
	opUnregister
	opDisconnect
)

type registryOp struct {
	kind   opKind
	client *Client
	userID string
	done   chan error
}

// NewHub creates a new Hub instance. Call Start before registering connections.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		conns:           make(map[string]*Client),
		live:            make(map[*Client]struct{}),
		ops:             make(chan registryOp, 256),
		metrics:         &Metrics{},
		ctx:             ctx,
		cancel:          cancel,
		handlers:        make(map[string]MessageHandler),
		rateLimitConfig: DefaultRateLimitConfig(),
	}
}

// SetPresenceStore mirrors registry changes into store
func (h *Hub) SetPresenceStore(store PresenceStore) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.presenceStore = store
}

// RegisterHandler registers a handler for a specific inbound message type
func (h *Hub) RegisterHandler(msgType string, handler MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[msgType] = handler
	logger.Log.Debug("Registered WebSocket handler", zap.String("type", msgType))
}

// GetHandler returns the handler for a message type
func (h *Hub) GetHandler(msgType string) (MessageHandler, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	handler, ok := h.handlers[msgType]
	return handler, ok
}

// Start runs the event loop in the background. It is safe to call once.
func (h *Hub) Start() {
	if !h.started.CompareAndSwap(false, true) {
		return
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.Run()
	}()
}

// Run is the hub's main event loop; it returns after Shutdown
func (h *Hub) Run() {
	logger.Log.Info("WebSocket hub starting")

	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case op := <-h.ops:
			op.done <- h.apply(op)
		}
	}
}

// apply performs one registry mutation and, if the registry changed,
// broadcasts the new online list
func (h *Hub) apply(op registryOp) error {
	var changed bool
	var err error

	switch op.kind {
	case opRegister:
		changed, err = h.registerClient(op.client)
	case opUnregister:
		changed = h.unregisterUser(op.userID, nil)
	case opDisconnect:
		changed = h.detachClient(op.client)
	}

	if changed {
		h.broadcastPresence()
	}
	return err
}

// registerClient attaches the connection and maps its user to it.
// A connection with an invalid user id stays attached but unregistered.
func (h *Hub) registerClient(client *Client) (bool, error) {
	h.mu.Lock()

	if _, ok := h.live[client]; !ok {
		h.live[client] = struct{}{}
		h.metrics.TotalConnections.Add(1)
		h.metrics.ActiveConnections.Add(1)
	}

	if strings.TrimSpace(client.UserID) == "" {
		h.mu.Unlock()
		logger.Log.Warn("Invalid userId on connection, leaving it unregistered",
			logger.WithConnID(client.ID),
			zap.String("remote_addr", client.RemoteAddr),
		)
		// Still give the connection the current roster
		client.enqueueMessage(NewMessage(EventOnlineUsers, h.OnlineUsers()))
		h.updateGauges()
		return false, ErrInvalidUserID
	}

	prev := h.conns[client.UserID]
	h.conns[client.UserID] = client
	store := h.presenceStore
	h.mu.Unlock()

	if prev != nil && prev != client {
		logger.Log.Info("Connection superseded by a newer one",
			logger.WithUserID(client.UserID),
			logger.WithConnID(prev.ID),
		)
	}
	if store != nil && prev == nil {
		store.MarkOnline(h.ctx, client.UserID)
	}

	logger.Log.Info("Client registered",
		logger.WithUserID(client.UserID),
		logger.WithConnID(client.ID),
		zap.Int64("active", h.metrics.ActiveConnections.Load()),
	)
	return true, nil
}

// unregisterUser removes the mapping for userID. When only is non-nil the
// mapping is removed only if it still points at that connection.
func (h *Hub) unregisterUser(userID string, only *Client) bool {
	h.mu.Lock()
	current, ok := h.conns[userID]
	if !ok || (only != nil && current != only) {
		h.mu.Unlock()
		return false
	}
	delete(h.conns, userID)
	store := h.presenceStore
	h.mu.Unlock()

	if store != nil {
		store.MarkOffline(h.ctx, userID)
	}

	logger.Log.Info("Client unregistered", logger.WithUserID(userID), logger.WithConnID(current.ID))
	return true
}

// detachClient forgets a closed connection and unregisters its user if the
// registry still points at it. A superseded connection closing leaves the
// newer mapping alone.
func (h *Hub) detachClient(client *Client) bool {
	h.mu.Lock()
	if _, ok := h.live[client]; ok {
		delete(h.live, client)
		h.metrics.ActiveConnections.Add(-1)
	}
	h.mu.Unlock()

	client.closeSend()
	changed := h.unregisterUser(client.UserID, client)
	if !changed {
		h.updateGauges()
	}
	return changed
}

// broadcastPresence sends the sorted online list to every attached connection
func (h *Hub) broadcastPresence() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	online := h.onlineUsersLocked()
	data, err := json.Marshal(NewMessage(EventOnlineUsers, online))
	if err != nil {
		logger.Log.Error("Failed to marshal presence", zap.Error(err))
		return
	}

	for client := range h.live {
		h.deliver(client, EventOnlineUsers, data)
	}
	metrics.SetRealtimeGauges(len(h.live), len(h.conns))
}

func (h *Hub) updateGauges() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	metrics.SetRealtimeGauges(len(h.live), len(h.conns))
}

// submit hands a mutation to the event loop and waits for it to be applied
func (h *Hub) submit(op registryOp) error {
	op.done = make(chan error, 1)
	select {
	case h.ops <- op:
	case <-h.ctx.Done():
		return ErrHubClosed
	}
	select {
	case err := <-op.done:
		return err
	case <-h.ctx.Done():
		return ErrHubClosed
	}
}

// Register attaches client and maps client.UserID to it, replacing any
// earlier connection for that user. Every attached connection then receives
// the new online list. Returns ErrInvalidUserID for an empty or blank id;
// the connection stays attached but is not addressable.
func (h *Hub) Register(client *Client) error {
	return h.submit(registryOp{kind: opRegister, client: client})
}

// Unregister removes userID from the registry; absent ids are a no-op
func (h *Hub) Unregister(userID string) {
	_ = h.submit(registryOp{kind: opUnregister, userID: userID})
}

// Disconnect detaches a closed connection
func (h *Hub) Disconnect(client *Client) {
	_ = h.submit(registryOp{kind: opDisconnect, client: client})
}

// Lookup returns the connection id currently registered for userID
func (h *Hub) Lookup(userID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.conns[userID]
	if !ok {
		return "", false
	}
	return client.ID, true
}

// EmitToUser pushes event to the user's current connection. Offline users
// and full buffers drop the event silently; the return value only reports
// whether it was queued.
func (h *Hub) EmitToUser(userID, event string, payload interface{}) bool {
	h.mu.RLock()
	client, ok := h.conns[userID]
	h.mu.RUnlock()

	if !ok {
		metrics.RecordEventDropped(event, dropOffline)
		return false
	}

	data, err := json.Marshal(NewMessage(event, payload))
	if err != nil {
		logger.Log.Error("Failed to marshal event", logger.WithEvent(event), zap.Error(err))
		return false
	}
	return h.deliver(client, event, data)
}

// EmitToUsers emits to each user independently and returns how many were queued
func (h *Hub) EmitToUsers(userIDs []string, event string, payload interface{}) int {
	if len(userIDs) == 0 {
		return 0
	}

	data, err := json.Marshal(NewMessage(event, payload))
	if err != nil {
		logger.Log.Error("Failed to marshal event", logger.WithEvent(event), zap.Error(err))
		return 0
	}

	delivered := 0
	for _, userID := range userIDs {
		h.mu.RLock()
		client, ok := h.conns[userID]
		h.mu.RUnlock()

		if !ok {
			metrics.RecordEventDropped(event, dropOffline)
			continue
		}
		if h.deliver(client, event, data) {
			delivered++
		}
	}
	return delivered
}

// BroadcastExcept sends event to the current connection of every registered
// user other than excludeUserID. Anonymous and superseded connections are
// skipped; an empty excludeUserID excludes nobody.
func (h *Hub) BroadcastExcept(excludeUserID, event string, payload interface{}) {
	data, err := json.Marshal(NewMessage(event, payload))
	if err != nil {
		logger.Log.Error("Failed to marshal broadcast", logger.WithEvent(event), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, client := range h.conns {
		if userID == excludeUserID {
			continue
		}
		h.deliver(client, event, data)
	}
}

// deliver queues data on the client without blocking
func (h *Hub) deliver(client *Client, event string, data []byte) bool {
	switch client.enqueue(data) {
	case enqueueOK:
		h.metrics.MessagesSent.Add(1)
		metrics.RecordEventEmitted(event)
		return true
	case enqueueFull:
		h.metrics.EventsDropped.Add(1)
		metrics.RecordEventDropped(event, dropBufferFull)
		logger.Log.Warn("Send buffer full, dropping event",
			logger.WithUserID(client.UserID),
			logger.WithEvent(event),
		)
	default:
		h.metrics.EventsDropped.Add(1)
		metrics.RecordEventDropped(event, dropClosed)
	}
	return false
}

// IsUserOnline checks if a user is registered
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[userID]
	return ok
}

// OnlineUsers returns the registered user ids, sorted
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.onlineUsersLocked()
}

func (h *Hub) onlineUsersLocked() []string {
	users := make([]string, 0, len(h.conns))
	for userID := range h.conns {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// ConnectionCount returns the number of attached connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.live)
}

// GetMetrics returns current WebSocket metrics
func (h *Hub) GetMetrics() MetricsSnapshot {
	return MetricsSnapshot{
		TotalConnections:   h.metrics.TotalConnections.Load(),
		ActiveConnections:  h.metrics.ActiveConnections.Load(),
		MessagesReceived:   h.metrics.MessagesReceived.Load(),
		MessagesSent:       h.metrics.MessagesSent.Load(),
		Errors:             h.metrics.Errors.Load(),
		ConnectionsDropped: h.metrics.ConnectionsDropped.Load(),
		EventsDropped:      h.metrics.EventsDropped.Load(),
		OnlineUsers:        len(h.OnlineUsers()),
	}
}

// MetricsSnapshot is a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	TotalConnections   int64 `json:"totalConnections"`
	ActiveConnections  int64 `json:"activeConnections"`
	MessagesReceived   int64 `json:"messagesReceived"`
	MessagesSent       int64 `json:"messagesSent"`
	Errors             int64 `json:"errors"`
	ConnectionsDropped int64 `json:"connectionsDropped"`
	EventsDropped      int64 `json:"eventsDropped"`
	OnlineUsers        int   `json:"onlineUsers"`
}

// String implements Stringer for MetricsSnapshot
func (m MetricsSnapshot) String() string {
	return fmt.Sprintf(
		"connections=%d/%d online=%d messages=rx:%d/tx:%d errors=%d dropped=%d/%d",
		m.ActiveConnections, m.TotalConnections, m.OnlineUsers,
		m.MessagesReceived, m.MessagesSent,
		m.Errors, m.ConnectionsDropped, m.EventsDropped,
	)
}

// Shutdown stops the event loop, tells every client and closes their send
// queues. It waits for the loop to finish or ctx to expire.
func (h *Hub) Shutdown(ctx context.Context) error {
	logger.Log.Info("Initiating WebSocket hub shutdown")

	h.cancel()
	if !h.started.Load() {
		// Loop never ran; close connections here
		h.shutdown()
		return nil
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Log.Info("WebSocket hub shutdown complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}

// shutdown closes all client connections
func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	shutdownMsg := NewMessage(MessageTypeSystem, SystemPayload{Event: "server_shutdown"})
	data, _ := json.Marshal(shutdownMsg)

	closed := len(h.live)
	for client := range h.live {
		// Best effort; the write pump drains this before closing
		client.enqueue(data)
		client.closeSend()
	}

	if h.presenceStore != nil {
		for userID := range h.conns {
			h.presenceStore.MarkOffline(context.Background(), userID)
		}
	}

	h.conns = make(map[string]*Client)
	h.live = make(map[*Client]struct{})
	h.metrics.ActiveConnections.Store(0)
	metrics.SetRealtimeGauges(0, 0)

	logger.Log.Info("Closed connections during shutdown", zap.Int("count", closed))
}

// GetRateLimitConfig returns the current rate limit configuration
func (h *Hub) GetRateLimitConfig() RateLimitConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rateLimitConfig
}
