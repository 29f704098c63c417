package rest

import "context"

// ExchangeRequests returns both incoming and outgoing exchange requests.
func (c *Client) ExchangeRequests(ctx context.Context) ([]ExchangeRequest, error) {
	var out []ExchangeRequest
	if err := c.getJSON(ctx, "/api/exchange-requests", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateExchangeRequest offers offeredBookID for bookID.
func (c *Client) CreateExchangeRequest(ctx context.Context, bookID, offeredBookID int) error {
	in := map[string]int{"book_id": bookID, "offered_book_id": offeredBookID}
	return c.postJSON(ctx, "/api/exchange-requests", in, nil)
}

// RespondToExchange accepts or declines an incoming request.
// status is "accepted" or "declined".
func (c *Client) RespondToExchange(ctx context.Context, exchangeID int, status string) error {
	in := map[string]any{"exchange_id": exchangeID, "status": status}
	return c.postJSON(ctx, "/api/exchange-requests/update", in, nil)
}

// CancelExchange withdraws an outgoing request.
func (c *Client) CancelExchange(ctx context.Context, exchangeID int) error {
	in := map[string]int{"exchange_id": exchangeID}
	return c.postJSON(ctx, "/api/exchange-requests/cancel", in, nil)
}
