package search

import "sync"

// Registry is a publish/subscribe source of additional directory entries,
// help articles for instance. Subscribers receive the full current item list
// on every change; Subscribe also delivers the current list immediately.
type Registry interface {
	Items() []Hit
	Subscribe(listener func(items []Hit)) (unsubscribe func())
}

// MemRegistry is the in-process Registry implementation.
type MemRegistry struct {
	mu        sync.Mutex
	items     []Hit
	listeners map[int]func([]Hit)
	nextID    int
}

// NewMemRegistry returns an empty registry.
func NewMemRegistry() *MemRegistry {
	return &MemRegistry{listeners: make(map[int]func([]Hit))}
}

// Items returns a copy of the current item list.
func (r *MemRegistry) Items() []Hit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Hit(nil), r.items...)
}

// Publish replaces the item list and notifies every subscriber.
func (r *MemRegistry) Publish(items []Hit) {
	r.mu.Lock()
	r.items = append([]Hit(nil), items...)
	listeners := make([]func([]Hit), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	snapshot := append([]Hit(nil), r.items...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

// Subscribe registers a listener and immediately delivers the current list.
func (r *MemRegistry) Subscribe(listener func([]Hit)) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = listener
	snapshot := append([]Hit(nil), r.items...)
	r.mu.Unlock()

	listener(snapshot)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}
