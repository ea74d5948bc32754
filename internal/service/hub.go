package service

import "sync"

type hubKey struct {
	collection string
	owner      string
}

// Hub fans out change notifications to watchers of (collection, owner).
// Notifications coalesce: a watcher that has not consumed the previous
// signal gets no second one, it re-reads the whole set anyway.
type Hub struct {
	mu       sync.Mutex
	watchers map[hubKey]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{watchers: make(map[hubKey]map[chan struct{}]struct{})}
}

// Subscribe registers a watcher. The returned cancel func must be called once done.
func (h *Hub) Subscribe(collection, owner string) (<-chan struct{}, func()) {
	key := hubKey{collection: collection, owner: owner}
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	set, ok := h.watchers[key]
	if !ok {
		set = make(map[chan struct{}]struct{})
		h.watchers[key] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.watchers[key], ch)
			if len(h.watchers[key]) == 0 {
				delete(h.watchers, key)
			}
		})
	}
	return ch, cancel
}

// Notify signals every watcher of (collection, owner).
func (h *Hub) Notify(collection, owner string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.watchers[hubKey{collection: collection, owner: owner}] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watchers returns the number of active watchers of (collection, owner).
func (h *Hub) Watchers(collection, owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[hubKey{collection: collection, owner: owner}])
}
