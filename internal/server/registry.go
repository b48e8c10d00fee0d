package server

import (
	"context"
	"sync"
)

// Handler is a callback invoked for a dispatched event. Handlers run
// sequentially on the poll loop goroutine; a slow handler stalls polling,
// so long-running work should keep well under the poll interval or be moved
// to its own goroutine.
type Handler func(ctx context.Context, ev Event) error

// registry maps an event kind to its ordered handler list. Insertion order
// determines dispatch order.
type registry struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

func newRegistry() *registry {
	return &registry{handlers: make(map[Kind][]Handler)}
}

// subscribe appends h under kind and returns it unchanged.
func (r *registry) subscribe(kind Kind, h Handler) Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = append(r.handlers[kind], h)
	return h
}

// registered reports whether any handler is subscribed to kind.
func (r *registry) registered(kind Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[kind]) > 0
}

// size returns the total number of subscribed handlers across all kinds.
func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, hs := range r.handlers {
		n += len(hs)
	}
	return n
}

// snapshot returns the handler list for kind in registration order.
func (r *registry) snapshot(kind Kind) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Handler(nil), r.handlers[kind]...)
}
