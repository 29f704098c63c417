package rest

import (
	"context"
	"net/url"
	"strconv"
)

// SearchUsers returns users matching the query string.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]User, error) {
	var out []User
	if err := c.getJSON(ctx, "/api/search?query="+url.QueryEscape(query), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserByID returns one user's public profile.
func (c *Client) UserByID(ctx context.Context, id int) (*User, error) {
	var out User
	if err := c.getJSON(ctx, "/api/users/"+strconv.Itoa(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendFollowRequest asks to follow targetID.
func (c *Client) SendFollowRequest(ctx context.Context, targetID int) error {
	in := map[string]int{"target_id": targetID}
	return c.postJSON(ctx, "/api/follow", in, nil)
}

// FollowStatus returns the relation to targetID: "none", "pending" or
// "accepted".
func (c *Client) FollowStatus(ctx context.Context, targetID int) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/api/follow/status/"+strconv.Itoa(targetID), &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

// AcceptFollow approves a pending follow request from requesterID.
func (c *Client) AcceptFollow(ctx context.Context, requesterID int) error {
	in := map[string]int{"requester_id": requesterID}
	return c.postJSON(ctx, "/api/follow/accept", in, nil)
}

// RejectFollow declines a pending follow request from requesterID.
func (c *Client) RejectFollow(ctx context.Context, requesterID int) error {
	in := map[string]int{"requester_id": requesterID}
	return c.postJSON(ctx, "/api/follow/reject", in, nil)
}

// Unfollow removes the relation to targetID.
func (c *Client) Unfollow(ctx context.Context, targetID int) error {
	in := map[string]int{"target_id": targetID}
	return c.postJSON(ctx, "/api/unfollow", in, nil)
}

// Followers lists the users following userID.
func (c *Client) Followers(ctx context.Context, userID int) ([]User, error) {
	var out []User
	if err := c.getJSON(ctx, "/api/users-followers/"+strconv.Itoa(userID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Following lists the users userID follows.
func (c *Client) Following(ctx context.Context, userID int) ([]User, error) {
	var out []User
	if err := c.getJSON(ctx, "/api/users-following/"+strconv.Itoa(userID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Recipients lists the accepted followers the current user can address
// privately.
func (c *Client) Recipients(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.getJSON(ctx, "/api/recipients", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitReport files a moderation report against a user or a book.
// reportedType is "user" or "book".
func (c *Client) SubmitReport(ctx context.Context, reportedType string, reportedID int, reason, description string) error {
	in := map[string]any{
		"reported_type": reportedType,
		"reported_id":   reportedID,
		"reason":        reason,
		"description":   description,
	}
	return c.postJSON(ctx, "/api/report", in, nil)
}
