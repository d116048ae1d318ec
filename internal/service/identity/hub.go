package identity

import "sync"

// Hub keeps the latest session per user and notifies per-user subscribers
// when it changes. Deliveries are serialized; callbacks must not publish.
type Hub struct {
	deliver sync.Mutex
	mu      sync.Mutex
	last    map[string]Session
	subs    map[string]map[int]func(Session)
	nextID  int
}

func NewHub() *Hub {
	return &Hub{
		last: make(map[string]Session),
		subs: make(map[string]map[int]func(Session)),
	}
}

// Publish records s as the current session of userID and notifies its
// subscribers in registration-independent order.
func (h *Hub) Publish(userID string, s Session) {
	h.deliver.Lock()
	defer h.deliver.Unlock()

	h.mu.Lock()
	h.last[userID] = s
	fns := make([]func(Session), 0, len(h.subs[userID]))
	for _, fn := range h.subs[userID] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Forget drops the remembered session of userID without notifying anyone.
func (h *Hub) Forget(userID string) {
	h.mu.Lock()
	delete(h.last, userID)
	h.mu.Unlock()
}

// For returns a Provider scoped to userID. A subscriber receives the last
// published session immediately, if there is one.
func (h *Hub) For(userID string) Provider {
	return ProviderFunc(func(onChange func(Session)) func() {
		h.deliver.Lock()
		h.mu.Lock()
		id := h.nextID
		h.nextID++
		if h.subs[userID] == nil {
			h.subs[userID] = make(map[int]func(Session))
		}
		h.subs[userID][id] = onChange
		last, known := h.last[userID]
		h.mu.Unlock()

		if known {
			onChange(last)
		}
		h.deliver.Unlock()

		var once sync.Once
		return func() {
			once.Do(func() {
				h.mu.Lock()
				delete(h.subs[userID], id)
				if len(h.subs[userID]) == 0 {
					delete(h.subs, userID)
				}
				h.mu.Unlock()
			})
		}
	})
}
