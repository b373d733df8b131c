package web

import "sync"

// layoutHub fans out change notifications for one user's layout to its SSE subscribers.
type layoutHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newLayoutHub() *layoutHub {
	return &layoutHub{subs: map[chan struct{}]struct{}{}}
}

func (h *layoutHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// broadcast never blocks; a subscriber with a full buffer already has a wakeup queued.
func (h *layoutHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *layoutHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// hubRegistry maps user ids to hubs.
type hubRegistry struct {
	mu   sync.Mutex
	hubs map[string]*layoutHub
}

func newHubRegistry() *hubRegistry {
	return &hubRegistry{hubs: map[string]*layoutHub{}}
}

func (r *hubRegistry) hubFor(userID string) *layoutHub {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.hubs[userID]
	if h == nil {
		h = newLayoutHub()
		r.hubs[userID] = h
	}
	return h
}
