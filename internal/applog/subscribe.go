package applog

import "sync"

// subscriberBuffer matches the teacher's Subscribe channel capacity; a
// slow subscriber drops entries rather than blocking the logger.
const subscriberBuffer = 100

// Hub is the pub/sub half of applog, generalizing the teacher's package-
// level subscribers map into a value every Logger owns independently.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Entry]struct{}
}

// NewHub builds an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Entry]struct{})}
}

// Subscribe registers a new listener and returns its channel.
func (h *Hub) Subscribe() chan Entry {
	ch := make(chan Entry, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe deregisters ch and closes it. Safe to call once per channel
// returned by Subscribe.
func (h *Hub) Unsubscribe(ch chan Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; !ok {
		return
	}
	delete(h.subs, ch)
	close(ch)
}

func (h *Hub) publish(e Entry) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
			// Slow subscriber; drop rather than block the logger, same
			// policy as the teacher's AddLog.
		}
	}
}
