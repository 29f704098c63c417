package rest

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Books returns all available listings.
func (c *Client) Books(ctx context.Context) ([]Book, error) {
	var out []Book
	if err := c.getJSON(ctx, "/api/books", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Book returns one listing by id.
func (c *Client) Book(ctx context.Context, id int) (*Book, error) {
	var out Book
	if err := c.getJSON(ctx, "/api/books/"+strconv.Itoa(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchBooks returns listings matching the query string.
func (c *Client) SearchBooks(ctx context.Context, query string) ([]Book, error) {
	var out []Book
	path := "/api/books/search?query=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyBooks returns the current user's own listings.
func (c *Client) MyBooks(ctx context.Context) ([]Book, error) {
	var out []Book
	if err := c.getJSON(ctx, "/api/my-books", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBook creates a listing from the multipart form in l.
func (c *Client) CreateBook(ctx context.Context, l BookListing) (*Book, error) {
	return c.uploadBook(ctx, http.MethodPost, "/api/books", l)
}

// UpdateBook replaces listing id with the fields in l.
func (c *Client) UpdateBook(ctx context.Context, id int, l BookListing) (*Book, error) {
	return c.uploadBook(ctx, http.MethodPut, "/api/books/"+strconv.Itoa(id), l)
}

// uploadBook writes l as a multipart form — text fields plus the optional
// image part — and decodes the stored listing from the response.
func (c *Client) uploadBook(ctx context.Context, method, path string, l BookListing) (*Book, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       l.Title,
		"author":      l.Author,
		"isbn":        l.ISBN,
		"description": l.Description,
		"genre":       l.Genre,
		"condition":   l.Condition,
		"city":        l.City,
		"available":   strconv.FormatBool(l.Available),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("rest: write form field %q: %w", k, err)
		}
	}

	if len(l.Image) > 0 {
		name := l.ImageName
		if name == "" {
			name = "cover"
		}
		part, err := w.CreateFormFile("image", name)
		if err != nil {
			return nil, fmt.Errorf("rest: create image part: %w", err)
		}
		if _, err := part.Write(l.Image); err != nil {
			return nil, fmt.Errorf("rest: write image part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("rest: finish multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("rest: build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out Book
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
