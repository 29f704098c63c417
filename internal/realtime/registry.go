package realtime

import (
	"sync"

	"github.com/ktabnet/ktabnet-client/internal/wire"
)

// Handler receives one dispatched message. Handlers run on the read loop
// goroutine; they must not block.
type Handler func(*wire.Message)

// registry maps subscription topics (message types, plus the wildcard) to
// handler sets. Handlers are keyed by a registration id so the same function
// value can be registered more than once and each registration removed
// independently.
type registry struct {
	mu     sync.Mutex
	nextID int
	topics map[string]map[int]Handler
}

func newRegistry() *registry {
	return &registry{topics: make(map[string]map[int]Handler)}
}

// add registers h under topic and returns a function that removes exactly
// this registration. When a topic's handler set becomes empty the topic
// entry itself is deleted, so repeated subscribe/unsubscribe cycles do not
// leak entries.
func (r *registry) add(topic string, h Handler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.topics[topic]
	if !ok {
		set = make(map[int]Handler)
		r.topics[topic] = set
	}
	id := r.nextID
	r.nextID++
	set[id] = h

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if set, ok := r.topics[topic]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(r.topics, topic)
			}
		}
	}
}

// dispatch invokes every handler subscribed to msg.Type, then every wildcard
// handler. Both sets fire independently. Handlers are called outside the
// lock, on snapshots of the sets, so a handler that mutates subscriptions
// during dispatch cannot corrupt iteration.
func (r *registry) dispatch(msg *wire.Message) {
	for _, h := range r.snapshot(msg.Type) {
		h(msg)
	}
	for _, h := range r.snapshot(wire.Wildcard) {
		h(msg)
	}
}

// snapshot copies a topic's current handler set.
func (r *registry) snapshot(topic string) []Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.topics[topic]
	if len(set) == 0 {
		return nil
	}
	out := make([]Handler, 0, len(set))
	for _, h := range set {
		out = append(out, h)
	}
	return out
}

// topicCount returns the number of live topic entries.
func (r *registry) topicCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topics)
}
