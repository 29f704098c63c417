package wire

import (
	"encoding/json"
	"fmt"
	"time"
)

// TypePrivate is the message type for direct chat messages.
const TypePrivate = "private"

// Wildcard is the subscription topic that matches every message type.
const Wildcard = "*"

// Notification kinds pushed by the server. Each carries at least sender_id,
// usually sender_nickname and message.
const (
	KindFollowRequest = "follow_request"
	KindFollowAccept  = "follow_accept"
	KindNewMessage    = "new_message"
	KindComment       = "comment"
	KindLike          = "like"
	KindBookRequest   = "book_request"
	KindBookAccepted  = "book_accepted"
)

// KindValues lists every notification kind, in a stable order.
var KindValues = []string{
	KindFollowRequest,
	KindFollowAccept,
	KindNewMessage,
	KindComment,
	KindLike,
	KindBookRequest,
	KindBookAccepted,
}

// IsNotificationKind reports whether t is one of the notification kinds.
func IsNotificationKind(t string) bool {
	for _, k := range KindValues {
		if t == k {
			return true
		}
	}
	return false
}

// Message is the envelope for every frame on the real-time channel.
// Type is mandatory; everything else depends on the type. Unknown keys
// survive a decode/encode round trip via Extra.
type Message struct {
	Type string `json:"type"`

	// Private-message fields.
	From      int    `json:"from,omitempty"`
	To        int    `json:"to,omitempty"`
	Content   string `json:"content,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`

	// Notification fields.
	ID             int    `json:"id,omitempty"`
	SenderID       int    `json:"sender_id,omitempty"`
	SenderNickname string `json:"sender_nickname,omitempty"`
	Text           string `json:"message,omitempty"`

	// Extra holds any keys not covered above, raw.
	Extra map[string]json.RawMessage `json:"-"`
}

// knownKeys are the JSON keys decoded into named struct fields.
var knownKeys = map[string]struct{}{
	"type": {}, "from": {}, "to": {}, "content": {}, "timestamp": {},
	"id": {}, "sender_id": {}, "sender_nickname": {}, "message": {},
}

// NewPrivate builds an outbound direct message with the timestamp set to now
// in RFC 3339, the shape the hub expects.
func NewPrivate(from, to int, content string) *Message {
	return &Message{
		Type:      TypePrivate,
		From:      from,
		To:        to,
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Decode parses a raw frame into a Message. It fails if data is not a JSON
// object or if the "type" field is absent or empty.
func Decode(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("wire: decode: %w", err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("wire: decode: missing type field")
	}

	// Second pass to capture extension keys.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("wire: decode: %w", err)
	}
	for k, v := range raw {
		if _, ok := knownKeys[k]; ok {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]json.RawMessage)
		}
		m.Extra[k] = v
	}
	return &m, nil
}

// Encode serializes m, merging Extra keys back into the object. Named fields
// win on key collision.
func (m *Message) Encode() ([]byte, error) {
	if len(m.Extra) == 0 {
		return json.Marshal(m)
	}

	base, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range m.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
