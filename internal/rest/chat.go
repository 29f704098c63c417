package rest

import (
	"context"
	"strconv"
)

// ChatUsers returns the people the user can (or already does) chat with.
func (c *Client) ChatUsers(ctx context.Context) ([]ChatUser, error) {
	var out []ChatUser
	if err := c.getJSON(ctx, "/api/chat-users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChatHistory returns the stored transcript with one conversation partner.
func (c *Client) ChatHistory(ctx context.Context, withUserID int) ([]ChatMessage, error) {
	var out []ChatMessage
	if err := c.getJSON(ctx, "/api/chat/history?with="+strconv.Itoa(withUserID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadMessageCount returns the aggregate unread chat message count.
func (c *Client) UnreadMessageCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.getJSON(ctx, "/api/chat/unread-count", &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// UnreadPerConversation returns unread counts keyed by conversation
// partner id.
func (c *Client) UnreadPerConversation(ctx context.Context) (map[int]int, error) {
	out := make(map[int]int)
	if err := c.getJSON(ctx, "/api/chat/unread-per-conversation", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkConversationRead marks every message from senderID as read.
func (c *Client) MarkConversationRead(ctx context.Context, senderID int) error {
	in := map[string]int{"sender_id": senderID}
	return c.postJSON(ctx, "/api/chat/mark-read", in, nil)
}
