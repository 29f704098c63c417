package rest

import (
	"context"
	"fmt"
)

// AuthResponse is the login payload: the session bearer token plus the
// authenticated user.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login authenticates with email and password, stores the returned bearer
// token in the credential store, and returns the session user.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	in := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.postJSON(ctx, "/api/login", in, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("rest: login response carried no token")
	}
	if err := c.creds.Set(out.Token); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Register creates an account. The caller logs in separately afterwards.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.postJSON(ctx, "/api/register", reg, nil)
}

// Logout invalidates the session server-side and clears the stored token.
// The local token is cleared even when the server call fails — the user
// asked to be logged out.
func (c *Client) Logout(ctx context.Context) error {
	err := c.postJSON(ctx, "/api/logout", nil, nil)
	if cerr := c.creds.Clear(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Me returns the current session user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.getJSON(ctx, "/api/auth/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
