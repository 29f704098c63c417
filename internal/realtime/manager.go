package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	neturl "net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ktabnet/ktabnet-client/internal/credential"
	"github.com/ktabnet/ktabnet-client/internal/metrics"
	"github.com/ktabnet/ktabnet-client/internal/wire"
)

// Status is the connection state exposed to consumers. Exactly one value is
// active at a time.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

const (
	// handshakeTimeout bounds the WebSocket dial itself.
	handshakeTimeout = 10 * time.Second

	// writeTimeout is the deadline for a single outbound frame.
	writeTimeout = 10 * time.Second

	// DefaultReconnectDelay is the fixed wait before redialing after an
	// abnormal close.
	DefaultReconnectDelay = 3 * time.Second
)

// dialFunc opens one WebSocket connection to url.
// Abstracted so tests can inject dialers against httptest servers.
type dialFunc func(ctx context.Context, url string) (*websocket.Conn, error)

// Manager owns the client's single real-time connection: the socket handle,
// the reconnect timer, and the subscriber registry. Instances are
// independent; nothing here is process-global.
type Manager struct {
	wsURL string
	creds *credential.Store
	delay time.Duration
	met   *metrics.Metrics
	reg   *registry

	dialFn dialFunc // injectable for tests

	onConnect func() // optional, runs on its own goroutine after each successful dial

	mu         sync.Mutex
	conn       *websocket.Conn
	status     Status
	connecting bool
	reconnect  *time.Timer
	gen        int // bumped by Disconnect to invalidate in-flight dials and read loops
	last       *wire.Message

	writeMu sync.Mutex
}

// New creates a Manager that dials wsURL with the token from creds.
// delay <= 0 selects DefaultReconnectDelay; met may be nil.
func New(wsURL string, creds *credential.Store, delay time.Duration, met *metrics.Metrics) *Manager {
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	if met == nil {
		met = metrics.NewNop()
	}
	m := &Manager{
		wsURL:  wsURL,
		creds:  creds,
		delay:  delay,
		met:    met,
		reg:    newRegistry(),
		status: StatusDisconnected,
		dialFn: defaultDial,
	}
	met.SetStatus(string(StatusDisconnected))
	return m
}

// Status returns the current connection status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// LastMessage returns the most recently received message, or nil.
func (m *Manager) LastMessage() *wire.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// SetOnConnect installs fn to run after every successful dial, including
// automatic reconnects. Must be called before Connect or Run.
func (m *Manager) SetOnConnect(fn func()) {
	m.onConnect = fn
}

// Subscribe registers h for messages of the given type — or every message
// when topic is the "*" wildcard — and returns a function that removes
// exactly this registration.
func (m *Manager) Subscribe(topic string, h Handler) func() {
	return m.reg.add(topic, h)
}

// Connect opens the real-time connection. It is a no-op while a dial is in
// flight or a connection is open, and fails fast (status stays disconnected)
// when no credential is stored. A pending reconnect timer is always
// cancelled first, so a manual Connect cannot race a scheduled one into a
// duplicate socket.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.connecting || m.conn != nil {
		m.mu.Unlock()
		slog.Debug("realtime: already connected or connecting, skipping")
		return
	}
	if m.reconnect != nil {
		m.reconnect.Stop()
		m.reconnect = nil
	}

	token := m.creds.Token()
	if token == "" {
		slog.Info("realtime: no credential stored, not connecting")
		m.setStatusLocked(StatusDisconnected)
		m.mu.Unlock()
		return
	}

	m.connecting = true
	m.setStatusLocked(StatusConnecting)
	gen := m.gen
	m.mu.Unlock()

	go m.dial(gen, token)
}

// Disconnect closes the connection with code 1000 (normal closure) and
// cancels any pending reconnect, guaranteeing no further automatic redial.
// Safe to call repeatedly; a later Connect starts a fresh cycle.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reconnect != nil {
		m.reconnect.Stop()
		m.reconnect = nil
	}
	m.gen++
	m.connecting = false

	if m.conn != nil {
		deadline := time.Now().Add(writeTimeout)
		_ = m.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect"),
			deadline)
		m.conn.Close()
		m.conn = nil
		slog.Info("realtime: disconnected")
	}
	m.setStatusLocked(StatusDisconnected)
}

// Send serializes msg and transmits it if the connection is currently open.
// It returns false — without queuing or panicking — in every other case.
func (m *Manager) Send(msg *wire.Message) bool {
	m.mu.Lock()
	conn := m.conn
	open := conn != nil && m.status == StatusConnected
	m.mu.Unlock()

	if !open {
		slog.Warn("realtime: connection not open, message not sent", "type", msg.Type)
		m.met.SendFailures.Inc()
		return false
	}

	data, err := msg.Encode()
	if err != nil {
		slog.Error("realtime: encode failed, message not sent", "type", msg.Type, "err", err)
		m.met.SendFailures.Inc()
		return false
	}

	m.writeMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err = conn.WriteMessage(websocket.TextMessage, data)
	m.writeMu.Unlock()

	if err != nil {
		slog.Warn("realtime: write failed, message not sent", "type", msg.Type, "err", err)
		m.met.SendFailures.Inc()
		return false
	}
	return true
}

// Run connects when a credential already exists, then follows external
// credential changes — a token appearing connects, its removal disconnects —
// until ctx ends, at which point the connection is torn down.
func (m *Manager) Run(ctx context.Context) error {
	defer m.Disconnect()

	if m.creds.Token() != "" {
		m.Connect()
	}
	return m.creds.Watch(ctx, func(token string) {
		if token == "" {
			m.Disconnect()
		} else {
			m.Connect()
		}
	})
}

// --- internal ---------------------------------------------------------------

// dial runs off the caller's goroutine: it opens the connection and installs
// it unless a Disconnect superseded this attempt in the meantime.
func (m *Manager) dial(gen int, token string) {
	url := m.wsURL + "?token=" + neturl.QueryEscape(token)
	conn, err := m.dialFn(context.Background(), url)

	m.mu.Lock()
	if m.gen != gen {
		// Disconnect ran while the dial was in flight.
		m.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	m.connecting = false

	if err != nil {
		slog.Error("realtime: dial failed", "err", err)
		m.setStatusLocked(StatusError)
		m.setStatusLocked(StatusDisconnected)
		m.scheduleReconnectLocked()
		m.mu.Unlock()
		return
	}

	m.conn = conn
	m.setStatusLocked(StatusConnected)
	m.met.ConnectsTotal.Inc()
	m.mu.Unlock()

	slog.Info("realtime: connected", "url", m.wsURL)
	if m.onConnect != nil {
		go m.onConnect()
	}
	go m.readLoop(conn, gen)
}

// readLoop reads frames until the connection fails, decoding and dispatching
// each one. Malformed frames are logged and dropped; they never affect the
// connection.
func (m *Manager) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.handleClose(gen, err)
			return
		}

		msg, derr := wire.Decode(data)
		if derr != nil {
			slog.Error("realtime: dropping malformed frame", "err", derr)
			m.met.FramesDropped.Inc()
			continue
		}

		m.mu.Lock()
		m.last = msg
		m.mu.Unlock()

		m.met.MessagesReceived.WithLabelValues(msg.Type).Inc()
		m.reg.dispatch(msg)
	}
}

// handleClose records the disconnect and schedules a redial unless the peer
// closed normally (1000) or announced shutdown (1001), or an explicit
// Disconnect already took over this connection.
func (m *Manager) handleClose(gen int, err error) {
	code := websocket.CloseAbnormalClosure
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		code = ce.Code
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen != gen {
		return
	}
	m.conn = nil
	m.setStatusLocked(StatusDisconnected)
	slog.Info("realtime: connection closed", "code", code, "err", err)

	if code != websocket.CloseNormalClosure && code != websocket.CloseGoingAway {
		m.scheduleReconnectLocked()
	}
}

// scheduleReconnectLocked arms the single reconnect timer. Callers hold mu.
func (m *Manager) scheduleReconnectLocked() {
	if m.reconnect != nil {
		m.reconnect.Stop()
	}
	m.met.ReconnectsTotal.Inc()
	slog.Info("realtime: reconnect scheduled", "delay", m.delay)
	m.reconnect = time.AfterFunc(m.delay, m.Connect)
}

// setStatusLocked updates the status and its gauge. Callers hold mu.
func (m *Manager) setStatusLocked(s Status) {
	m.status = s
	m.met.SetStatus(string(s))
}

// defaultDial opens a WebSocket connection with the standard dialer.
func defaultDial(ctx context.Context, url string) (*websocket.Conn, error) {
	d := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := d.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial: status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}
