// Package worker turns dispatched engagement events into storage calls.
package worker

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/starwake/engine/internal/storage"
)

// ErrUnexpectedPayload is returned when an event carries a payload of the
// wrong type for its command.
var ErrUnexpectedPayload = errors.New("unexpected payload type")

// Manager routes events to a storage backend.
type Manager struct {
	backend storage.Backend
	logger  *slog.Logger

	mu     sync.Mutex
	counts map[string]int
}

// NewManager creates a new worker manager
func NewManager(backend storage.Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		backend: backend,
		logger:  logger.With("component", "worker"),
		counts:  make(map[string]int),
	}
}

// Counts returns how many events of each command reached the backend.
func (m *Manager) Counts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}

func (m *Manager) count(command string) {
	m.mu.Lock()
	m.counts[command]++
	m.mu.Unlock()
}

// WriteDurationProvider is an optional interface that backends can implement
// to expose their last DB write duration for monitoring.
type WriteDurationProvider interface {
	LastWriteDuration() time.Duration
}

// LastWriteDuration returns the duration of the last DB write cycle.
// Returns 0 if the backend doesn't support this metric.
func (m *Manager) LastWriteDuration() time.Duration {
	if p, ok := m.backend.(WriteDurationProvider); ok {
		return p.LastWriteDuration()
	}
	return 0
}

// PendingProvider is implemented by backends that buffer rows before writing.
type PendingProvider interface {
	Pending() int
}

// Pending returns the number of buffered rows not yet written, or 0 if the
// backend writes synchronously.
func (m *Manager) Pending() int {
	if p, ok := m.backend.(PendingProvider); ok {
		return p.Pending()
	}
	return 0
}
