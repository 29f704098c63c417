package notify

import (
	"github.com/ktabnet/ktabnet-client/internal/rest"
)

// State is the notification feature's entire in-memory state. Apply treats
// it as immutable: every transition returns a fresh State with copied
// containers, so callers can hold old snapshots safely.
type State struct {
	// Notifications is the record list, newest first.
	Notifications []rest.Notification

	// UnreadNotifications is the aggregate unseen notification count.
	UnreadNotifications int

	// UnreadMessages is the aggregate unread chat message count.
	// Invariant: equals the sum of PerConversation's values.
	UnreadMessages int

	// PerConversation maps conversation partner id to unread count.
	// Zero-count entries are removed rather than kept.
	PerConversation map[int]int
}

// Event is one state transition input.
type Event interface{ isEvent() }

// MessageReceived: a pushed private message from another user arrived.
type MessageReceived struct {
	From int
}

// NotificationReceived: a pushed notification arrived; Record is already
// fully formed (id synthesized upstream if the server omitted one).
type NotificationReceived struct {
	Record rest.Notification
}

// NotificationSeen: one notification was marked seen.
type NotificationSeen struct {
	ID int
}

// AllNotificationsSeen: every notification was marked seen.
type AllNotificationsSeen struct{}

// NotificationDeleted: one notification was removed.
type NotificationDeleted struct {
	ID int
}

// ConversationRead: every message from one partner was marked read.
type ConversationRead struct {
	PartnerID int
}

// NotificationsLoaded: a REST snapshot replaced the record list.
type NotificationsLoaded struct {
	Records []rest.Notification
}

// CountsLoaded: a REST snapshot replaced the unread counters.
type CountsLoaded struct {
	Notifications   int
	PerConversation map[int]int
}

func (MessageReceived) isEvent()      {}
func (NotificationReceived) isEvent() {}
func (NotificationSeen) isEvent()     {}
func (AllNotificationsSeen) isEvent() {}
func (NotificationDeleted) isEvent()  {}
func (ConversationRead) isEvent()     {}
func (NotificationsLoaded) isEvent()  {}
func (CountsLoaded) isEvent()         {}

// Apply computes the next state. It never returns negative counters and
// keeps UnreadMessages equal to the sum of PerConversation.
func Apply(s State, e Event) State {
	switch ev := e.(type) {

	case MessageReceived:
		next := clone(s)
		next.PerConversation[ev.From]++
		next.UnreadMessages++
		return next

	case NotificationReceived:
		next := clone(s)
		next.Notifications = append([]rest.Notification{ev.Record}, next.Notifications...)
		next.UnreadNotifications++
		return next

	case NotificationSeen:
		next := clone(s)
		for i, n := range next.Notifications {
			if n.ID != ev.ID {
				continue
			}
			if !n.Seen {
				next.Notifications[i].Seen = true
				next.UnreadNotifications = clamp(next.UnreadNotifications - 1)
			}
			break
		}
		return next

	case AllNotificationsSeen:
		next := clone(s)
		for i := range next.Notifications {
			next.Notifications[i].Seen = true
		}
		next.UnreadNotifications = 0
		return next

	case NotificationDeleted:
		next := clone(s)
		kept := next.Notifications[:0]
		for _, n := range next.Notifications {
			if n.ID == ev.ID {
				if !n.Seen {
					next.UnreadNotifications = clamp(next.UnreadNotifications - 1)
				}
				continue
			}
			kept = append(kept, n)
		}
		next.Notifications = kept
		return next

	case ConversationRead:
		next := clone(s)
		count := next.PerConversation[ev.PartnerID]
		delete(next.PerConversation, ev.PartnerID)
		next.UnreadMessages = clamp(next.UnreadMessages - count)
		return next

	case NotificationsLoaded:
		next := clone(s)
		next.Notifications = append([]rest.Notification(nil), ev.Records...)
		unseen := 0
		for _, n := range next.Notifications {
			if !n.Seen {
				unseen++
			}
		}
		next.UnreadNotifications = unseen
		return next

	case CountsLoaded:
		next := clone(s)
		next.UnreadNotifications = clamp(ev.Notifications)
		next.PerConversation = make(map[int]int, len(ev.PerConversation))
		total := 0
		for id, c := range ev.PerConversation {
			if c <= 0 {
				continue
			}
			next.PerConversation[id] = c
			total += c
		}
		// The aggregate is derived from the map so the invariant holds
		// even if the server's two count endpoints disagree.
		next.UnreadMessages = total
		return next
	}

	return s
}

// clone deep-copies the containers so Apply never aliases its input.
func clone(s State) State {
	next := s
	next.Notifications = append([]rest.Notification(nil), s.Notifications...)
	next.PerConversation = make(map[int]int, len(s.PerConversation))
	for id, c := range s.PerConversation {
		next.PerConversation[id] = c
	}
	return next
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
