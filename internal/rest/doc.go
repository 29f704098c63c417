// Package rest is the typed HTTP client for the KtabNet backend API.
//
// Client wraps one *http.Client whose transport injects the bearer token
// from the credential store into every request. Endpoint methods mirror the
// backend surface: auth, notifications, chat, books (including multipart
// image upload), exchange requests, follow relations, reports, and the
// admin moderation endpoints.
//
// Error handling: any 401 response clears the stored credential — the
// session is gone, and the real-time layer will stop reconnecting until a
// new token appears — and surfaces as ErrUnauthorized. Other non-2xx
// statuses become *StatusError carrying the code and response body.
package rest
