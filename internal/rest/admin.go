package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// AdminReports lists moderation reports; status filters ("pending",
// "reviewed", "resolved", "dismissed") narrow the result, "" or "all"
// returns everything.
func (c *Client) AdminReports(ctx context.Context, status string) ([]Report, error) {
	path := "/api/admin/reports"
	if status != "" && status != "all" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out []Report
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveReport updates a report's status and admin notes.
func (c *Client) ResolveReport(ctx context.Context, reportID int, status, adminNotes string) error {
	in := map[string]string{"status": status, "admin_notes": adminNotes}
	return c.sendJSON(ctx, http.MethodPut, "/api/admin/reports/"+strconv.Itoa(reportID), in, nil)
}

// AdminUsers lists every registered user.
func (c *Client) AdminUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.getJSON(ctx, "/api/admin/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetUserRole changes a user's role ("user", "moderator", "admin").
func (c *Client) SetUserRole(ctx context.Context, userID int, role string) error {
	in := map[string]string{"role": role}
	return c.sendJSON(ctx, http.MethodPut, "/api/admin/users/"+strconv.Itoa(userID), in, nil)
}

// DeleteUser removes (bans) a user account.
func (c *Client) DeleteUser(ctx context.Context, userID int) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/admin/users/"+strconv.Itoa(userID), nil, nil)
}

// DeleteBookListing removes a reported listing.
func (c *Client) DeleteBookListing(ctx context.Context, bookID int) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/admin/books/"+strconv.Itoa(bookID), nil, nil)
}
