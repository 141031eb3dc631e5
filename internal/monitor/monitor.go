// Package monitor writes the progress of a running engagement to a status
// file once per interval.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultInterval is used when Dependencies.Interval is zero.
const DefaultInterval = time.Second

// Status is one snapshot of the recording pipeline.
type Status struct {
	Time                time.Time      `json:"time"`
	Engagement          string         `json:"engagement"`
	Tick                uint64         `json:"tick"`
	Events              map[string]int `json:"events"`
	Queued              map[string]int `json:"queued,omitempty"`
	Dropped             int64          `json:"dropped"`
	PendingRows         int            `json:"pendingRows"`
	LastWriteDurationMs float64        `json:"lastWriteDurationMs"`
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger     *slog.Logger
	StatusPath string
	Interval   time.Duration
	// Status is polled every interval. Returning ok=false skips the write.
	Status     func() (Status, bool)
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Render formats a status as indented JSON.
func Render(st Status) ([]byte, error) {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("rendering status: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteOnce polls the status and replaces the status file with it. An empty
// StatusPath makes it a no-op.
func (s *Service) WriteOnce() error {
	if s.deps.StatusPath == "" {
		return nil
	}
	st, ok := s.deps.Status()
	if !ok {
		return nil
	}
	if st.Time.IsZero() {
		st.Time = time.Now()
	}
	data, err := Render(st)
	if err != nil {
		return err
	}
	return os.WriteFile(s.deps.StatusPath, data, 0644)
}

// Start starts the status monitor goroutine
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(s.stopChan, s.done)
}

func (s *Service) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	logger := s.deps.Logger
	logger.Debug("Starting status monitor", "path", s.deps.StatusPath, "interval", s.deps.Interval)

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := s.WriteOnce(); err != nil {
				logger.Error("Error writing status file", "error", err)
			}
		}
	}
}

// Stop stops the status monitor and writes a final status.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()

	<-done
	if err := s.WriteOnce(); err != nil {
		s.deps.Logger.Error("Error writing status file", "error", err)
	}
}
