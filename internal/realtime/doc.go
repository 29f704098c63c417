// Package realtime maintains the client's WebSocket channel to the KtabNet
// backend and fans incoming messages out to subscribers.
//
// Manager owns at most one live connection. It authenticates each dial with
// the bearer token from the credential store (?token= query parameter),
// redials after a fixed delay when the connection closes abnormally (any
// close code other than 1000 normal / 1001 going away), and keeps retrying
// indefinitely — the token may become valid again or the server may come
// back. An explicit Disconnect cancels any pending redial and is the only
// way to stop the cycle.
//
// Status transitions: disconnected → connecting → connected → disconnected,
// with error as a transient state that always precedes disconnected.
//
// Subscribe registers a handler for one message type, or for the "*"
// wildcard topic which receives every message; both the typed and wildcard
// sets fire for a matching message. Subscribe returns an unsubscribe
// function that removes exactly that registration. Dispatch iterates a
// snapshot of each topic's handler set, so a handler may unsubscribe itself
// (or others) mid-dispatch without corrupting iteration.
//
// Send only transmits while the connection is open: it returns false — and
// never panics or queues — otherwise. Callers doing optimistic UI must treat
// false as "not sent".
//
// Run ties the manager to the credential store: it connects on start when a
// token exists and reacts to external token changes (another process logging
// in or out) by connecting or disconnecting, then tears the channel down
// when its context ends.
package realtime
