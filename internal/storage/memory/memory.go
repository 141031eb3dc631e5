// Package memory keeps an engagement in memory and exports it as JSON when
// the engagement ends.
package memory

import (
	"errors"
	"sync"

	"github.com/starwake/engine/internal/config"
	"github.com/starwake/engine/pkg/core"
)

// ErrNotStarted is returned when ending an engagement that was never started.
var ErrNotStarted = errors.New("no engagement to end")

// ShipRecord groups everything a single ship did
type ShipRecord struct {
	Name     string
	Team     string
	Shots    []core.ShotEvent
	Specials []core.SpecialEvent
	Jams     []core.JamEvent
	Slots    []core.SlotEvent
}

// Backend stores engagement data in memory and exports to JSON
type Backend struct {
	cfg        config.MemoryConfig
	engagement *core.Engagement

	ships map[string]*ShipRecord
	order []string // ship names in order of first appearance
	hits  []core.HitEvent

	survivors      map[string]int
	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:   cfg,
		ships: make(map[string]*ShipRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartEngagement begins recording a new engagement
func (b *Backend) StartEngagement(e *core.Engagement) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	e.ID = b.idCounter
	b.engagement = e

	b.ships = make(map[string]*ShipRecord)
	b.order = nil
	b.hits = nil
	b.survivors = nil
	b.lastExportPath = ""
	return nil
}

// EndEngagement finalizes and exports the engagement data
func (b *Backend) EndEngagement(endTick uint64, survivors map[string]int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.engagement == nil {
		return ErrNotStarted
	}
	b.engagement.EndTick = endTick
	b.survivors = survivors
	return b.exportJSON()
}

// ship returns the record for name, creating it on first sight. A known
// team is filled in if the record was created without one.
func (b *Backend) ship(name, team string) *ShipRecord {
	rec, ok := b.ships[name]
	if !ok {
		rec = &ShipRecord{Name: name}
		b.ships[name] = rec
		b.order = append(b.order, name)
	}
	if rec.Team == "" {
		rec.Team = team
	}
	return rec
}

// Ship returns the record of a single ship
func (b *Backend) Ship(name string) (*ShipRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.ships[name]
	return rec, ok
}

// Hits returns a copy of every recorded hit
func (b *Backend) Hits() []core.HitEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]core.HitEvent(nil), b.hits...)
}

// RecordShot records a projectile being fired
func (b *Backend) RecordShot(e *core.ShotEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec := b.ship(e.Ship, e.Team)
	rec.Shots = append(rec.Shots, *e)
	return nil
}

// RecordSpecial records an anti-missile or tractor beam activation
func (b *Backend) RecordSpecial(e *core.SpecialEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec := b.ship(e.Ship, e.Team)
	rec.Specials = append(rec.Specials, *e)
	return nil
}

// RecordJam records a jammed reload cycle
func (b *Backend) RecordJam(e *core.JamEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec := b.ship(e.Ship, e.Team)
	rec.Jams = append(rec.Jams, *e)
	return nil
}

// RecordHit records a projectile striking a ship
func (b *Backend) RecordHit(e *core.HitEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e.Shooter != "" {
		b.ship(e.Shooter, "")
	}
	b.ship(e.Victim, "")
	b.hits = append(b.hits, *e)
	return nil
}

// RecordSlot records a follower's formation slot
func (b *Backend) RecordSlot(e *core.SlotEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ship(e.Leader, e.Team)
	rec := b.ship(e.Ship, e.Team)
	rec.Slots = append(rec.Slots, *e)
	return nil
}

// ExportedFilePath returns the path of the last export, or "" if none.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.lastExportPath
}
