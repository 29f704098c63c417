// Package credential stores the bearer token that proves the user's KtabNet
// session, backed by a single file on disk.
//
// The file plays the role the browser frontend gives localStorage: it is the
// one place the token lives, other processes (a login helper, another client
// instance) may write or remove it, and this package's Watch surfaces those
// external changes the way the frontend observes cross-tab storage events.
//
// Store.Token returns the current token ("" when logged out). Set writes the
// file with 0600 permissions; Clear removes it. Watch(ctx, onChange) uses
// fsnotify on the file's parent directory — the file itself may not exist
// yet — and calls onChange with the new token whenever the file is created,
// rewritten, or removed. Duplicate events carrying an unchanged token are
// suppressed.
package credential
