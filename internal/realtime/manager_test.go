package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ktabnet/ktabnet-client/internal/credential"
	"github.com/ktabnet/ktabnet-client/internal/wire"
)

// testDelay keeps reconnect waits short enough for tests.
const testDelay = 50 * time.Millisecond

// --- helpers ----------------------------------------------------------------

// wsServer is a test backend: it upgrades connections, records the token of
// each dial, and keeps per-connection handles so tests can push frames or
// force closes.
type wsServer struct {
	srv *httptest.Server

	mu      sync.Mutex
	dials   int
	tokens  []string
	conns   []*websocket.Conn
	inbound chan []byte
}

func newWSServer(t *testing.T) *wsServer {
	t.Helper()
	s := &wsServer{inbound: make(chan []byte, 16)}
	upgrader := websocket.Upgrader{}

	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.dials++
		s.tokens = append(s.tokens, r.URL.Query().Get("token"))
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		go func() {
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				s.inbound <- data
			}
		}()
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *wsServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *wsServer) dialCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

func (s *wsServer) lastConn() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conns) == 0 {
		return nil
	}
	return s.conns[len(s.conns)-1]
}

// push sends one text frame to the most recent client connection.
func (s *wsServer) push(t *testing.T, payload string) {
	t.Helper()
	conn := s.lastConn()
	if conn == nil {
		t.Fatal("push: no server-side connection")
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("push: %v", err)
	}
}

// closeNormal performs a clean close handshake (code 1000).
func (s *wsServer) closeNormal(t *testing.T) {
	t.Helper()
	conn := s.lastConn()
	if conn == nil {
		t.Fatal("closeNormal: no server-side connection")
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	conn.Close()
}

// closeAbnormal drops the TCP connection without a close frame, which the
// client observes as an abnormal closure.
func (s *wsServer) closeAbnormal(t *testing.T) {
	t.Helper()
	conn := s.lastConn()
	if conn == nil {
		t.Fatal("closeAbnormal: no server-side connection")
	}
	conn.Close()
}

func newCreds(t *testing.T, token string) *credential.Store {
	t.Helper()
	creds, err := credential.New(filepath.Join(t.TempDir(), "token"))
	if err != nil {
		t.Fatalf("credential.New: %v", err)
	}
	if token != "" {
		if err := creds.Set(token); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	return creds
}

func newManager(t *testing.T, s *wsServer, token string) *Manager {
	t.Helper()
	m := New(s.url(), newCreds(t, token), testDelay, nil)
	t.Cleanup(m.Disconnect)
	return m
}

// waitFor polls cond until it is true or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// --- tests ------------------------------------------------------------------

func TestConnect_SingleSocket(t *testing.T) {
	s := newWSServer(t)
	m := newManager(t, s, "tok")

	// Two rapid Connect calls before the first dial completes.
	m.Connect()
	m.Connect()

	waitFor(t, "connected", func() bool { return m.Status() == StatusConnected })
	// Linger long enough for any duplicate dial to arrive.
	time.Sleep(3 * testDelay)

	if got := s.dialCount(); got != 1 {
		t.Errorf("dials: got %d, want 1", got)
	}
}

func TestConnect_SendsURLEncodedToken(t *testing.T) {
	s := newWSServer(t)
	m := newManager(t, s, "a b+c")

	m.Connect()
	waitFor(t, "connected", func() bool { return m.Status() == StatusConnected })

	s.mu.Lock()
	got := s.tokens[0]
	s.mu.Unlock()
	if got != "a b+c" {
		t.Errorf("token: got %q, want %q", got, "a b+c")
	}
}

func TestConnect_NoCredential(t *testing.T) {
	s := newWSServer(t)
	m := newManager(t, s, "")

	m.Connect()
	time.Sleep(3 * testDelay)

	if got := m.Status(); got != StatusDisconnected {
		t.Errorf("status: got %q, want disconnected", got)
	}
	if got := s.dialCount(); got != 0 {
		t.Errorf("dials: got %d, want 0", got)
	}
}

func TestDisconnect_NoReconnect(t *testing.T) {
	s := newWSServer(t)
	m := newManager(t, s, "tok")

	m.Connect()
	waitFor(t, "connected", func() bool { return m.Status() == StatusConnected })

	m.Disconnect()
	// Well past the reconnect window.
	time.Sleep(4 * testDelay)

	if got := m.Status(); got != StatusDisconnected {
		t.Errorf("status: got %q, want disconnected", got)
	}
	if got := s.dialCount(); got != 1 {
		t.Errorf("dials: got %d, want 1 (no spontaneous reconnect)", got)
	}

	// Disconnect is idempotent.
	m.Disconnect()
	m.Disconnect()
	if got := m.Status(); got != StatusDisconnected {
		t.Errorf("status after repeated Disconnect: got %q", got)
	}
}

func TestReconnect_AfterAbnormalClose(t *testing.T) {
	s := newWSServer(t)
	m := newManager(t, s, "tok")

	m.Connect()
	waitFor(t, "connected", func() bool { return m.Status() == StatusConnected })

	s.closeAbnormal(t)

	waitFor(t, "second dial", func() bool { return s.dialCount() == 2 })
	waitFor(t, "reconnected", func() bool { return m.Status() == StatusConnected })
}

func TestNoReconnect_AfterNormalClose(t *testing.T) {
	s := newWSServer(t)
	m := newManager(t, s, "tok")

	m.Connect()
	waitFor(t, "connected", func() bool { return m.Status() == StatusConnected })

	s.closeNormal(t)
	waitFor(t, "disconnected", func() bool { return m.Status() == StatusDisconnected })
	time.Sleep(4 * testDelay)

	if got := s.dialCount(); got != 1 {
		t.Errorf("dials: got %d, want 1 (normal close must not reconnect)", got)
	}
}

func TestConnect_AfterDisconnect_WorksAgain(t *testing.T) {
	s := newWSServer(t)
	m := newManager(t, s, "tok")

	m.Connect()
	waitFor(t, "connected", func() bool { return m.Status() == StatusConnected })
	m.Disconnect()

	m.Connect()
	waitFor(t, "reconnected", func() bool { return m.Status() == StatusConnected })
	if got := s.dialCount(); got != 2 {
		t.Errorf("dials: got %d, want 2", got)
	}
}

func TestSend_WhenClosed(t *testing.T) {
	s := newWSServer(t)
	m := newManager(t, s, "tok")

	if ok := m.Send(wire.NewPrivate(7, 12, "hi")); ok {
		t.Error("Send on closed connection: got true, want false")
	}
}

func TestSend_Roundtrip(t *testing.T) {
	s := newWSServer(t)
	m := newManager(t, s, "tok")

	m.Connect()
	waitFor(t, "connected", func() bool { return m.Status() == StatusConnected })

	if ok := m.Send(wire.NewPrivate(7, 12, "hello")); !ok {
		t.Fatal("Send: got false, want true")
	}

	select {
	case data := <-s.inbound:
		var got map[string]any
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal sent frame: %v", err)
		}
		if got["type"] != "private" || got["from"] != float64(7) || got["to"] != float64(12) {
			t.Errorf("frame: got %v", got)
		}
		if got["content"] != "hello" {
			t.Errorf("content: got %v, want hello", got["content"])
		}
		if got["timestamp"] == nil {
			t.Error("timestamp: missing")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive the frame")
	}
}

func TestDispatch_FromLiveConnection(t *testing.T) {
	s := newWSServer(t)
	m := newManager(t, s, "tok")

	private := make(chan *wire.Message, 1)
	all := make(chan *wire.Message, 2)
	comment := make(chan *wire.Message, 1)
	m.Subscribe("private", func(msg *wire.Message) { private <- msg })
	m.Subscribe(wire.Wildcard, func(msg *wire.Message) { all <- msg })
	m.Subscribe("comment", func(msg *wire.Message) { comment <- msg })

	m.Connect()
	waitFor(t, "connected", func() bool { return m.Status() == StatusConnected })

	s.push(t, `{"type":"private","from":12,"to":7,"content":"hi","timestamp":"2024-01-01T00:00:00Z"}`)

	select {
	case msg := <-private:
		if msg.From != 12 || msg.Content != "hi" {
			t.Errorf("private subscriber: got %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("private subscriber never fired")
	}
	select {
	case msg := <-all:
		if msg.Type != "private" {
			t.Errorf("wildcard subscriber: got type %q", msg.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("wildcard subscriber never fired")
	}
	select {
	case <-comment:
		t.Error("comment subscriber fired for a private message")
	case <-time.After(4 * testDelay):
	}
}

func TestMalformedFrame_DroppedWithoutDisconnect(t *testing.T) {
	s := newWSServer(t)
	m := newManager(t, s, "tok")

	got := make(chan *wire.Message, 1)
	m.Subscribe(wire.Wildcard, func(msg *wire.Message) { got <- msg })

	m.Connect()
	waitFor(t, "connected", func() bool { return m.Status() == StatusConnected })

	s.push(t, `this is not json`)
	s.push(t, `{"no_type":true}`)
	s.push(t, `{"type":"like","sender_id":3}`)

	select {
	case msg := <-got:
		if msg.Type != "like" {
			t.Errorf("got type %q, want like", msg.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("valid frame after malformed ones was not dispatched")
	}
	if m.Status() != StatusConnected {
		t.Errorf("status: got %q, want connected (bad frames must not drop the connection)", m.Status())
	}
}

func TestLastMessage(t *testing.T) {
	s := newWSServer(t)
	m := newManager(t, s, "tok")

	if m.LastMessage() != nil {
		t.Fatal("LastMessage: want nil before any message")
	}

	m.Connect()
	waitFor(t, "connected", func() bool { return m.Status() == StatusConnected })

	s.push(t, `{"type":"comment","sender_id":5}`)
	waitFor(t, "last message recorded", func() bool { return m.LastMessage() != nil })

	if got := m.LastMessage(); got.Type != "comment" || got.SenderID != 5 {
		t.Errorf("LastMessage: got %+v", got)
	}
}

func TestDisconnect_ClosesWithNormalCode(t *testing.T) {
	s := newWSServer(t)
	m := newManager(t, s, "tok")

	m.Connect()
	waitFor(t, "connected", func() bool { return m.Status() == StatusConnected })

	conn := s.lastConn()
	codes := make(chan int, 1)
	conn.SetCloseHandler(func(code int, text string) error {
		codes <- code
		return nil
	})

	m.Disconnect()

	// The close handler runs inside the server's read loop.
	select {
	case code := <-codes:
		if code != websocket.CloseNormalClosure {
			t.Errorf("close code: got %d, want %d", code, websocket.CloseNormalClosure)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw a close frame")
	}
}

func TestRun_FollowsCredentialLifecycle(t *testing.T) {
	s := newWSServer(t)
	creds := newCreds(t, "")
	m := New(s.url(), creds, testDelay, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = m.Run(ctx)
		close(done)
	}()

	// No token yet: the manager idles disconnected.
	time.Sleep(100 * time.Millisecond)
	if got := m.Status(); got != StatusDisconnected {
		t.Fatalf("status before login: got %q, want %q", got, StatusDisconnected)
	}

	// A token appearing connects.
	if err := creds.Set("tok"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	waitFor(t, "connect after login", func() bool { return m.Status() == StatusConnected })

	// Removing the token disconnects with a clean close, and the reconnect
	// window passing changes nothing.
	if err := creds.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	waitFor(t, "disconnect after logout", func() bool { return m.Status() == StatusDisconnected })

	time.Sleep(3 * testDelay)
	if got := m.Status(); got != StatusDisconnected {
		t.Errorf("status after logout and reconnect window: got %q, want %q", got, StatusDisconnected)
	}
	if got := s.dialCount(); got != 1 {
		t.Errorf("dials: got %d, want 1", got)
	}

	cancel()
	waitFor(t, "run to return", func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	})
}
