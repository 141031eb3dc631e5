// Package storage defines where recorded engagement events go.
package storage

import "github.com/starwake/engine/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Engagement management (assigns ID to the passed pointer)
	StartEngagement(e *core.Engagement) error
	EndEngagement(endTick uint64, survivors map[string]int) error

	// Event recording
	RecordShot(e *core.ShotEvent) error
	RecordSpecial(e *core.SpecialEvent) error
	RecordJam(e *core.JamEvent) error
	RecordHit(e *core.HitEvent) error
	RecordSlot(e *core.SlotEvent) error
}

// Exportable is an optional interface for backends that write a recording
// file when the engagement ends.
type Exportable interface {
	ExportedFilePath() string
}
