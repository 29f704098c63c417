// Package wire defines the JSON envelope exchanged with the KtabNet backend
// over the real-time WebSocket channel.
//
// Every frame is a UTF-8 JSON text message with a mandatory "type" field.
// Beyond "type" the schema is open: well-known fields (from, to, content,
// timestamp, sender_id, sender_nickname, message) are decoded into struct
// fields, and any other keys are preserved verbatim in Message.Extra so that
// subscribers can read extension data without a schema change here.
//
// Known type values:
//
//	"private"                        — direct chat message between two users
//	"follow_request", "follow_accept",
//	"new_message", "comment", "like",
//	"book_request", "book_accepted"  — notification kinds (see KindValues)
//
// Decode rejects frames that are not valid JSON objects or that lack "type".
// Malformed frames are the caller's problem to log and drop — the connection
// itself is never affected by a bad payload.
package wire
