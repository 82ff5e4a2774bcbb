package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeServer upgrades one connection and hands it to script
func fakeServer(t *testing.T, script func(conn *websocket.Conn, r *http.Request)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		script(conn, r)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func testConfig(url string) Config {
	cfg := DefaultConfig(url)
	cfg.ConnectTimeout = 2 * time.Second
	cfg.HeartbeatInterval = time.Hour
	cfg.MaxReconnectAttempts = 0
	return cfg
}

func TestNewClient(t *testing.T) {
	client := NewClient(DefaultConfig("ws://localhost:5001/ws"))

	if client.State() != StateDisconnected {
		t.Errorf("Initial state should be StateDisconnected, got %v", client.State())
	}
	if client.IsConnected() {
		t.Error("Newly created client should not be connected")
	}
	if err := client.Send(TypePing, nil); err == nil {
		t.Error("Send without a connection should fail")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("ws://x/ws")
	if cfg.MaxReconnectAttempts != -1 {
		t.Errorf("MaxReconnectAttempts should be -1 (unlimited), got %d", cfg.MaxReconnectAttempts)
	}
	if cfg.ReconnectBaseDelay >= cfg.ReconnectMaxDelay {
		t.Errorf("Base delay should be below max delay: %+v", cfg)
	}
}

func TestConnectSendsTokenAndReceivesEvents(t *testing.T) {
	gotToken := make(chan string, 1)
	url := fakeServer(t, func(conn *websocket.Conn, r *http.Request) {
		gotToken <- r.URL.Query().Get("token")
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"newMessage","payload":{"_id":"m1","text":"hi"},"timestamp":"2026-03-10T12:00:00Z"}`))
		conn.ReadMessage()
	})

	client := NewClient(testConfig(url))
	received := make(chan Event, 1)
	client.On(EventNewMessage, func(ev Event) { received <- ev })

	if err := client.Connect("tok-123"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	if tok := <-gotToken; tok != "tok-123" {
		t.Errorf("Expected token query param, got %q", tok)
	}

	select {
	case ev := <-received:
		var msg struct {
			ID   string `json:"_id"`
			Text string `json:"text"`
		}
		if err := ev.Decode(&msg); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if msg.ID != "m1" || msg.Text != "hi" || ev.Timestamp.IsZero() {
			t.Errorf("Unexpected event %+v / %+v", ev, msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for newMessage")
	}
}

func TestTypingFrame(t *testing.T) {
	frames := make(chan string, 1)
	url := fakeServer(t, func(conn *websocket.Conn, r *http.Request) {
		_, data, err := conn.ReadMessage()
		if err == nil {
			frames <- string(data)
		}
		conn.ReadMessage()
	})

	client := NewClient(testConfig(url))
	if err := client.Connect(""); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	if err := client.Typing("u2", true); err != nil {
		t.Fatalf("Typing failed: %v", err)
	}

	select {
	case f := <-frames:
		if !strings.Contains(f, `"type":"typing"`) || !strings.Contains(f, `"receiverId":"u2"`) {
			t.Errorf("Unexpected frame %s", f)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for typing frame")
	}
	if client.GetStats().MessagesSent != 1 {
		t.Errorf("Expected one sent message, got %d", client.GetStats().MessagesSent)
	}
}

func TestPongRecordsLatency(t *testing.T) {
	url := fakeServer(t, func(conn *websocket.Conn, r *http.Request) {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"pong","payload":{"clientTime":1,"serverTime":2,"latencyMs":42},"timestamp":"2026-03-10T12:00:00Z"}`))
		conn.ReadMessage()
	})

	client := NewClient(testConfig(url))
	pong := make(chan struct{}, 1)
	client.On(TypePong, func(Event) { pong <- struct{}{} })

	if err := client.Connect(""); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	if err := client.Ping(); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	select {
	case <-pong:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for pong")
	}
	if got := client.GetStats().LastLatency; got != 42*time.Millisecond {
		t.Errorf("Expected 42ms latency, got %v", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	client := NewClient(DefaultConfig("ws://unused/ws"))

	calls := 0
	off := client.On(EventNewStatus, func(Event) { calls++ })
	client.On("", func(Event) { calls += 10 })

	client.emit(Event{Type: EventNewStatus})
	off()
	client.emit(Event{Type: EventNewStatus})

	if calls != 21 {
		t.Errorf("Expected 21 (1+10+10), got %d", calls)
	}
}

func TestDoneAfterServerCloseWithoutRetries(t *testing.T) {
	url := fakeServer(t, func(conn *websocket.Conn, r *http.Request) {})

	client := NewClient(testConfig(url))
	if err := client.Connect(""); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case <-client.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Client should stop once the server hangs up and no retries are allowed")
	}
	if client.State() != StateError {
		t.Errorf("Expected StateError, got %v", client.State())
	}
}
