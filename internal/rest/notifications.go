package rest

import "context"

// Notifications returns the user's notification list, newest first.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var out []Notification
	if err := c.getJSON(ctx, "/api/notifications", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadNotificationCount returns the aggregate unseen notification count.
func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.getJSON(ctx, "/api/notifications/unread-count", &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// MarkNotificationSeen marks one notification seen.
func (c *Client) MarkNotificationSeen(ctx context.Context, id int) error {
	in := map[string]any{"notification_id": id, "mark_all": false}
	return c.postJSON(ctx, "/api/notifications/seen", in, nil)
}

// MarkAllNotificationsSeen marks every notification seen.
func (c *Client) MarkAllNotificationsSeen(ctx context.Context) error {
	in := map[string]any{"mark_all": true}
	return c.postJSON(ctx, "/api/notifications/seen", in, nil)
}

// DeleteNotification removes one notification.
func (c *Client) DeleteNotification(ctx context.Context, id int) error {
	in := map[string]any{"notification_id": id}
	return c.postJSON(ctx, "/api/notifications/delete", in, nil)
}
