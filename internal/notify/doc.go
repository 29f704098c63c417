// Package notify keeps the client's notification list and unread counters
// consistent across two inputs: REST snapshots and live pushed messages.
//
// The bookkeeping itself is a pure reducer — Apply(State, Event) State —
// with no I/O, so every counter rule is testable without a connection:
// the aggregate unread message count always equals the sum of the
// per-conversation counts, counters clamp at zero, marking a conversation
// read removes its entry, and a notification is only decremented once no
// matter how operations interleave.
//
// Center wires the reducer to the outside world: it subscribes to the
// real-time "private" and "*" topics, suppresses echoes of the user's own
// messages, synthesizes record ids from the clock when the server omits
// one, refreshes from the REST API, and performs the seen/read/delete
// operations. Local mutations commit only after the paired REST call
// succeeds, and are expressed as delta events applied to the state as it is
// then — not as it was when the call started — so concurrent pushes are
// never lost.
//
// Side effects (a sound cue, a desktop popup when the client is in the
// background) go through the Alerter interface; CommandAlerter shells out
// to configured commands and NopAlerter silences everything.
package notify
