package memory

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/starwake/engine/internal/config"
	"github.com/starwake/engine/internal/storage"
	"github.com/starwake/engine/pkg/core"
)

// Verify Backend implements storage.Backend interface
var _ storage.Backend = (*Backend)(nil)

// Verify Backend implements storage.Exportable interface
var _ storage.Exportable = (*Backend)(nil)

var start = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

func newEngagement() *core.Engagement {
	return &core.Engagement{Name: "Border Skirmish", Seed: 7, StartTime: start}
}

func TestNew(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: "/tmp/test", CompressOutput: true})

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.cfg.OutputDir != "/tmp/test" {
		t.Errorf("expected OutputDir=/tmp/test, got %s", b.cfg.OutputDir)
	}
	if b.ships == nil {
		t.Error("ships map not initialized")
	}
}

func TestInitAndClose(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.Init(); err != nil {
		t.Errorf("Init failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestStartEngagement_AssignsID(t *testing.T) {
	b := New(config.MemoryConfig{})

	first := newEngagement()
	second := newEngagement()
	_ = b.StartEngagement(first)
	_ = b.StartEngagement(second)

	if first.ID != 1 || second.ID != 2 {
		t.Errorf("expected IDs 1 and 2, got %d and %d", first.ID, second.ID)
	}
}

func TestRecordShot(t *testing.T) {
	b := New(config.MemoryConfig{})
	_ = b.StartEngagement(newEngagement())

	shot := &core.ShotEvent{Tick: 3, Ship: "Republic Sparrow 1", Team: "Republic", Weapon: "Beam Laser"}
	if err := b.RecordShot(shot); err != nil {
		t.Fatalf("RecordShot failed: %v", err)
	}

	rec, ok := b.Ship("Republic Sparrow 1")
	if !ok {
		t.Fatal("ship not recorded")
	}
	if rec.Team != "Republic" {
		t.Errorf("expected team Republic, got %s", rec.Team)
	}
	if len(rec.Shots) != 1 || rec.Shots[0].Weapon != "Beam Laser" {
		t.Errorf("unexpected shots %+v", rec.Shots)
	}
}

func TestRecordSpecialAndJam(t *testing.T) {
	b := New(config.MemoryConfig{})
	_ = b.StartEngagement(newEngagement())

	_ = b.RecordSpecial(&core.SpecialEvent{Tick: 5, Ship: "Republic Bastion 1", Team: "Republic", Kind: core.SpecialAntiMissile, Success: true})
	_ = b.RecordJam(&core.JamEvent{Tick: 6, Ship: "Republic Bastion 1", Team: "Republic", Hardpoint: 2})

	rec, _ := b.Ship("Republic Bastion 1")
	if len(rec.Specials) != 1 || !rec.Specials[0].Success {
		t.Errorf("unexpected specials %+v", rec.Specials)
	}
	if len(rec.Jams) != 1 || rec.Jams[0].Hardpoint != 2 {
		t.Errorf("unexpected jams %+v", rec.Jams)
	}
}

func TestRecordHit_RegistersShips(t *testing.T) {
	b := New(config.MemoryConfig{})
	_ = b.StartEngagement(newEngagement())

	_ = b.RecordHit(&core.HitEvent{Tick: 9, Shooter: "Republic Sparrow 1", Victim: "Pirates Quicksilver 1", Damage: 8})

	if len(b.Hits()) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(b.Hits()))
	}
	if _, ok := b.Ship("Pirates Quicksilver 1"); !ok {
		t.Error("victim should be registered")
	}

	// A later event fills in the team
	_ = b.RecordShot(&core.ShotEvent{Ship: "Pirates Quicksilver 1", Team: "Pirates"})
	rec, _ := b.Ship("Pirates Quicksilver 1")
	if rec.Team != "Pirates" {
		t.Errorf("expected team to be filled in, got %q", rec.Team)
	}
}

func TestRecordSlot(t *testing.T) {
	b := New(config.MemoryConfig{})
	_ = b.StartEngagement(newEngagement())

	_ = b.RecordSlot(&core.SlotEvent{
		Tick:     60,
		Team:     "Republic",
		Leader:   "Republic Bastion 1",
		Ship:     "Republic Sparrow 2",
		Index:    1,
		Position: core.Point{X: -80, Y: 880},
	})

	if _, ok := b.Ship("Republic Bastion 1"); !ok {
		t.Error("leader should be registered")
	}
	rec, _ := b.Ship("Republic Sparrow 2")
	if len(rec.Slots) != 1 || rec.Slots[0].Index != 1 {
		t.Errorf("unexpected slots %+v", rec.Slots)
	}
}

func TestStartEngagementResetsEverything(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	_ = b.StartEngagement(newEngagement())
	_ = b.RecordShot(&core.ShotEvent{Ship: "A"})
	_ = b.RecordHit(&core.HitEvent{Victim: "B"})
	_ = b.EndEngagement(10, nil)

	_ = b.StartEngagement(newEngagement())

	if len(b.ships) != 0 || len(b.order) != 0 {
		t.Error("ships not reset")
	}
	if len(b.Hits()) != 0 {
		t.Error("hits not reset")
	}
	if b.ExportedFilePath() != "" {
		t.Error("export path not reset")
	}
}

func TestEndEngagementWithoutStart(t *testing.T) {
	b := New(config.MemoryConfig{})

	err := b.EndEngagement(0, nil)
	if !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	b := New(config.MemoryConfig{})
	_ = b.StartEngagement(newEngagement())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = b.RecordShot(&core.ShotEvent{Tick: uint64(j), Ship: "Republic Sparrow 1", Team: "Republic"})
				_ = b.RecordHit(&core.HitEvent{Tick: uint64(j), Victim: "Pirates Quicksilver 1"})
			}
		}(i)
	}
	wg.Wait()

	rec, _ := b.Ship("Republic Sparrow 1")
	if len(rec.Shots) != 500 {
		t.Errorf("expected 500 shots, got %d", len(rec.Shots))
	}
	if len(b.Hits()) != 500 {
		t.Errorf("expected 500 hits, got %d", len(b.Hits()))
	}
}
