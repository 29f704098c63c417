package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ktabnet/ktabnet-client/internal/metrics"
	"github.com/ktabnet/ktabnet-client/internal/realtime"
	"github.com/ktabnet/ktabnet-client/internal/rest"
	"github.com/ktabnet/ktabnet-client/internal/wire"
)

// Center owns the notification state and bridges it to the real-time
// channel and the REST API.
type Center struct {
	api   *rest.Client
	alert Alerter
	met   *metrics.Metrics

	// visible reports whether the user is watching the client right now;
	// popups fire only when it returns false. Injectable for tests.
	visible func() bool

	now func() time.Time // injectable for deterministic ids in tests

	mu     sync.Mutex
	state  State
	userID int
	unsubs []func()
}

// NewCenter creates a Center. alert may be nil (no side effects), met may
// be nil, visible may be nil (treated as never visible, so popups always
// fire).
func NewCenter(api *rest.Client, alert Alerter, met *metrics.Metrics, visible func() bool) *Center {
	if alert == nil {
		alert = NopAlerter{}
	}
	if met == nil {
		met = metrics.NewNop()
	}
	if visible == nil {
		visible = func() bool { return false }
	}
	return &Center{
		api:     api,
		alert:   alert,
		met:     met,
		visible: visible,
		now:     time.Now,
		state:   State{PerConversation: map[int]int{}},
	}
}

// SetUser records the current user's id, used to suppress echoes of the
// user's own messages.
func (c *Center) SetUser(id int) {
	c.mu.Lock()
	c.userID = id
	c.mu.Unlock()
}

// Attach subscribes the Center to the manager's "private" and wildcard
// topics. Call Detach to unsubscribe.
func (c *Center) Attach(m *realtime.Manager) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsubs = append(c.unsubs,
		m.Subscribe(wire.TypePrivate, c.handlePrivate),
		m.Subscribe(wire.Wildcard, c.handleNotification),
	)
}

// Detach removes the Center's subscriptions.
func (c *Center) Detach() {
	c.mu.Lock()
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

// State returns a snapshot of the current state.
func (c *Center) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Refresh replaces the record list and counters from the REST API.
func (c *Center) Refresh(ctx context.Context) error {
	records, err := c.api.Notifications(ctx)
	if err != nil {
		return err
	}
	notifCount, err := c.api.UnreadNotificationCount(ctx)
	if err != nil {
		return err
	}
	perConv, err := c.api.UnreadPerConversation(ctx)
	if err != nil {
		return err
	}

	// Applied against the state as it is now — pushes that arrived while
	// the fetches were in flight land on top of this snapshot, not under it.
	c.apply(NotificationsLoaded{Records: records})
	c.apply(CountsLoaded{Notifications: notifCount, PerConversation: perConv})
	return nil
}

// MarkNotificationSeen marks one notification seen on the server, then
// commits the local mutation.
func (c *Center) MarkNotificationSeen(ctx context.Context, id int) error {
	if err := c.api.MarkNotificationSeen(ctx, id); err != nil {
		return err
	}
	c.apply(NotificationSeen{ID: id})
	return nil
}

// MarkAllNotificationsSeen marks everything seen on the server, then
// locally.
func (c *Center) MarkAllNotificationsSeen(ctx context.Context) error {
	if err := c.api.MarkAllNotificationsSeen(ctx); err != nil {
		return err
	}
	c.apply(AllNotificationsSeen{})
	return nil
}

// DeleteNotification removes one notification on the server, then locally.
func (c *Center) DeleteNotification(ctx context.Context, id int) error {
	if err := c.api.DeleteNotification(ctx, id); err != nil {
		return err
	}
	c.apply(NotificationDeleted{ID: id})
	return nil
}

// MarkConversationRead marks every message from senderID read on the
// server, then zeroes that conversation's counter locally.
func (c *Center) MarkConversationRead(ctx context.Context, senderID int) error {
	if err := c.api.MarkConversationRead(ctx, senderID); err != nil {
		return err
	}
	c.apply(ConversationRead{PartnerID: senderID})
	return nil
}

// --- real-time handlers -----------------------------------------------------

// handlePrivate runs for every pushed direct message. Messages from the
// current user are echoes of an optimistic send and never count as unread.
func (c *Center) handlePrivate(msg *wire.Message) {
	c.mu.Lock()
	self := c.userID
	c.mu.Unlock()

	if msg.From == 0 || msg.From == self {
		return
	}

	c.apply(MessageReceived{From: msg.From})

	body := msg.Content
	if body == "" {
		body = "You have a new message"
	}
	c.alert.Sound()
	if !c.visible() {
		c.alert.Popup("New Message", body)
	}
}

// handleNotification runs for every message (wildcard topic) and reacts to
// the notification kinds, prepending a record and bumping the counter.
func (c *Center) handleNotification(msg *wire.Message) {
	if !wire.IsNotificationKind(msg.Type) {
		return
	}

	record := rest.Notification{
		ID:             msg.ID,
		SenderID:       msg.SenderID,
		SenderNickname: msg.SenderNickname,
		Type:           msg.Type,
		Message:        msg.Text,
		Seen:           false,
		CreatedAt:      c.now().UTC().Format(time.RFC3339),
	}
	if record.ID == 0 {
		// The server may push without an id; synthesize one locally so
		// the record is addressable until the next Refresh.
		record.ID = int(c.now().UnixMilli())
	}
	if record.SenderNickname == "" {
		record.SenderNickname = "Someone"
	}

	c.apply(NotificationReceived{Record: record})
	slog.Info("notify: notification received",
		"type", record.Type, "sender_id", record.SenderID)

	c.alert.Sound()
	if !c.visible() {
		c.alert.Popup("KtabNet.ma", record.Message)
	}
}

// apply runs the reducer under the lock and mirrors the counters to the
// metrics gauges.
func (c *Center) apply(e Event) {
	c.mu.Lock()
	c.state = Apply(c.state, e)
	notif := c.state.UnreadNotifications
	msgs := c.state.UnreadMessages
	c.mu.Unlock()

	c.met.UnreadNotifications.Set(float64(notif))
	c.met.UnreadMessages.Set(float64(msgs))
}
