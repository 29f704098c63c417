package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ktabnet/ktabnet-client/internal/credential"
)

const defaultTimeout = 15 * time.Second

// ErrUnauthorized is returned when the backend rejects the credential.
// The stored token has already been cleared by the time callers see it.
var ErrUnauthorized = errors.New("rest: unauthorized")

// StatusError is returned for non-2xx responses other than 401.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rest: server returned HTTP %d: %s", e.Code, e.Body)
}

// Client calls the KtabNet backend REST API.
type Client struct {
	baseURL string
	creds   *credential.Store
	http    *http.Client
}

// New creates a Client for the backend at baseURL (no trailing slash
// needed). timeout <= 0 selects the default.
func New(baseURL string, creds *credential.Store, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &authRoundTripper{base: http.DefaultTransport, creds: creds},
		},
	}
}

// authRoundTripper injects the bearer token into every outgoing request.
type authRoundTripper struct {
	base  http.RoundTripper
	creds *credential.Store
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.creds.Token(); token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base.RoundTrip(req)
}

// --- request helpers --------------------------------------------------------

// do issues the request and handles the shared error taxonomy. A 401 clears
// the credential; other non-2xx statuses become *StatusError. On success the
// body is decoded into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rest: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		slog.Warn("rest: credential rejected, clearing stored token", "path", req.URL.Path)
		if cerr := c.creds.Clear(); cerr != nil {
			slog.Error("rest: could not clear credential", "err", cerr)
		}
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("rest: %s %s: decode response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// getJSON issues GET <base>+path and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("rest: build request: %w", err)
	}
	return c.do(req, out)
}

// sendJSON issues method <base>+path with a JSON body, decoding into out
// when out is non-nil.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("rest: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("rest: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, out)
}
