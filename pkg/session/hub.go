package session

import (
	"sync"

	"github.com/aretw0/turtle/pkg/domain"
)

// hub fans commands out to per-session subscribers.
type hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan domain.Command]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[chan domain.Command]struct{})}
}

func (h *hub) subscribe(sessionID string, buffer int) (<-chan domain.Command, func()) {
	ch := make(chan domain.Command, buffer)

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan domain.Command]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() { h.unsubscribe(sessionID, ch) }
}

func (h *hub) unsubscribe(sessionID string, ch chan domain.Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subs[sessionID]
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(h.subs, sessionID)
	}
}

func (h *hub) publish(sessionID string, cmds []domain.Command) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[sessionID] {
		for _, cmd := range cmds {
			select {
			case ch <- cmd:
			default:
			}
		}
	}
}

func (h *hub) closeSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[sessionID] {
		close(ch)
	}
	delete(h.subs, sessionID)
}
