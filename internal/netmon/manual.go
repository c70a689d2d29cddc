package netmon

import (
	"sync"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
)

// Manual is a Monitor driven entirely by SetOnline calls. The host
// environment (browser events, OS signals, the syncctl CLI) decides what
// "online" means; Manual just distributes the signal.
type Manual struct {
	mu        sync.Mutex
	online    bool
	nextID    int
	listeners map[int]func(online bool)

	logger *logger.Logger
}

// NewManual builds a manual monitor with the given initial state.
func NewManual(startOnline bool, log *logger.Logger) *Manual {
	return &Manual{
		online:    startOnline,
		listeners: make(map[int]func(online bool)),
		logger:    log,
	}
}

// Online implements Monitor.
func (m *Manual) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.online
}

// SetOnline records the new state and, on a transition, notifies listeners.
// Setting the current state again is a no-op. Listeners run synchronously on
// the caller's goroutine; they must not block.
func (m *Manual) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	notify := make([]func(online bool), 0, len(m.listeners))
	for _, fn := range m.listeners {
		notify = append(notify, fn)
	}
	m.mu.Unlock()

	m.logger.Info().Bool("online", online).Msg("connectivity changed")
	for _, fn := range notify {
		fn(online)
	}
}

// Subscribe implements Monitor.
func (m *Manual) Subscribe(fn func(online bool)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}
