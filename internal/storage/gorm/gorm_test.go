package gormstorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/starwake/engine/internal/config"
	"github.com/starwake/engine/internal/database"
	"github.com/starwake/engine/internal/model"
	"github.com/starwake/engine/internal/storage"
	"github.com/starwake/engine/internal/storage/memory"
	"github.com/starwake/engine/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

var started = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

// newTestBackend creates a Backend with no DB (queue-only mode for unit testing).
func newTestBackend() *Backend {
	return New(Dependencies{})
}

// newSQLiteBackend creates a Backend on a temporary SQLite file. The writer
// interval is long so tests control flushing.
func newSQLiteBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	b := New(Dependencies{DB: db, FlushInterval: time.Hour, BatchSize: 2})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func sampleShot(tick uint64) *core.ShotEvent {
	return &core.ShotEvent{
		Tick:        tick,
		Time:        started.Add(time.Duration(tick) * time.Second / 60),
		Ship:        "Republic Sparrow 1",
		Team:        "Republic",
		Hardpoint:   0,
		Weapon:      "Beam Laser",
		Origin:      core.Point{X: 0, Y: 780},
		Angle:       1.5,
		Velocity:    core.Point{X: 0, Y: -10},
		Lifetime:    30,
		FireEffects: []core.EffectCount{{Effect: "laser flare", Count: 1}},
	}
}

func TestNew(t *testing.T) {
	b := newTestBackend()
	require.NotNil(t, b)
	assert.Equal(t, DefaultFlushInterval, b.deps.FlushInterval)
}

func TestInitClose(t *testing.T) {
	b := newTestBackend()

	require.NoError(t, b.Init())
	require.NotNil(t, b.queues)
	require.NotNil(t, b.stopChan)

	require.NoError(t, b.Close())
	// Second close is harmless.
	require.NoError(t, b.Close())
}

func TestRecord_QueuesToInternalQueues(t *testing.T) {
	b := newTestBackend()
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.RecordShot(sampleShot(1)))
	require.NoError(t, b.RecordSpecial(&core.SpecialEvent{Tick: 2, Kind: core.SpecialTractorBeam}))
	require.NoError(t, b.RecordJam(&core.JamEvent{Tick: 3}))
	require.NoError(t, b.RecordHit(&core.HitEvent{Tick: 4}))
	require.NoError(t, b.RecordSlot(&core.SlotEvent{Tick: 5}))

	assert.Equal(t, 1, b.queues.Shots.Len())
	assert.Equal(t, 1, b.queues.Specials.Len())
	assert.Equal(t, 1, b.queues.Jams.Len())
	assert.Equal(t, 1, b.queues.Hits.Len())
	assert.Equal(t, 1, b.queues.Slots.Len())
	assert.Equal(t, 5, b.Pending())
}

func TestStartEndEngagement_NoDB_NoError(t *testing.T) {
	b := newTestBackend()
	require.NoError(t, b.Init())
	defer b.Close()

	e := &core.Engagement{Name: "Duel"}
	require.NoError(t, b.StartEngagement(e))
	assert.Zero(t, e.ID)
	require.NoError(t, b.EndEngagement(10, nil))
}

func TestStartEngagement_AssignsID(t *testing.T) {
	b := newSQLiteBackend(t)

	e := &core.Engagement{Name: "Border Skirmish", Seed: 3, StartTime: started}
	require.NoError(t, b.StartEngagement(e))
	assert.NotZero(t, e.ID)

	var row model.Engagement
	require.NoError(t, b.DB().First(&row, e.ID).Error)
	assert.Equal(t, "Border Skirmish", row.Name)
	assert.Equal(t, uint64(3), row.Seed)
}

func TestFlush_WritesInBatchesAndStampsEngagement(t *testing.T) {
	b := newSQLiteBackend(t)

	e := &core.Engagement{Name: "Duel", StartTime: started}
	require.NoError(t, b.StartEngagement(e))

	for tick := uint64(1); tick <= 5; tick++ {
		require.NoError(t, b.RecordShot(sampleShot(tick)))
	}
	require.NoError(t, b.RecordHit(&core.HitEvent{Tick: 6, Shooter: "Republic Sparrow 1", Victim: "Pirates Quicksilver 1", Damage: 8}))

	require.NoError(t, b.Flush())
	assert.Equal(t, 0, b.Pending())

	var shots []model.Shot
	require.NoError(t, b.DB().Order("tick").Find(&shots).Error)
	require.Len(t, shots, 5)
	for _, s := range shots {
		assert.Equal(t, e.ID, s.EngagementID)
	}
	assert.Equal(t, uint64(1), shots[0].Tick)

	var hits int64
	require.NoError(t, b.DB().Model(&model.Hit{}).Where("engagement_id = ?", e.ID).Count(&hits).Error)
	assert.Equal(t, int64(1), hits)
}

func TestEndEngagement_StoresEndTickAndSurvivors(t *testing.T) {
	b := newSQLiteBackend(t)

	e := &core.Engagement{Name: "Duel", StartTime: started}
	require.NoError(t, b.StartEngagement(e))
	require.NoError(t, b.RecordJam(&core.JamEvent{Tick: 9, Ship: "Pirates Quicksilver 1"}))

	require.NoError(t, b.EndEngagement(600, map[string]int{"Republic": 2}))
	assert.Equal(t, 0, b.Pending(), "end flushes queued rows")

	var row model.Engagement
	require.NoError(t, b.DB().First(&row, e.ID).Error)
	assert.Equal(t, uint64(600), row.EndTick)
	assert.JSONEq(t, `{"Republic":2}`, string(row.Survivors))
}

func TestClose_FlushesRemainingRows(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "close.db"))
	require.NoError(t, err)

	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	require.NoError(t, b.StartEngagement(&core.Engagement{Name: "Duel"}))
	require.NoError(t, b.RecordSlot(&core.SlotEvent{Tick: 60, Team: "Republic", Ship: "Republic Sparrow 1"}))

	require.NoError(t, b.Close())

	var count int64
	require.NoError(t, db.Model(&model.Slot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWriteLoop_FlushesOnInterval(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "loop.db"))
	require.NoError(t, err)

	b := New(Dependencies{DB: db, FlushInterval: 10 * time.Millisecond})
	require.NoError(t, b.Init())
	defer b.Close()
	require.NoError(t, b.StartEngagement(&core.Engagement{Name: "Duel"}))
	require.NoError(t, b.RecordShot(sampleShot(1)))

	assert.Eventually(t, func() bool { return b.Pending() == 0 }, time.Second, 10*time.Millisecond)
}

func TestReplay_IntoMemoryBackend(t *testing.T) {
	b := newSQLiteBackend(t)

	e := &core.Engagement{Name: "Border Skirmish", Seed: 11, StartTime: started}
	require.NoError(t, b.StartEngagement(e))
	require.NoError(t, b.RecordSlot(&core.SlotEvent{Tick: 60, Team: "Republic", Leader: "Republic Bastion 1", Ship: "Republic Sparrow 1", Index: 1}))
	require.NoError(t, b.RecordShot(sampleShot(61)))
	require.NoError(t, b.RecordShot(sampleShot(62)))
	require.NoError(t, b.RecordSpecial(&core.SpecialEvent{Tick: 63, Ship: "Republic Bastion 1", Team: "Republic", Kind: core.SpecialAntiMissile, Success: true}))
	require.NoError(t, b.RecordHit(&core.HitEvent{Tick: 64, Shooter: "Republic Sparrow 1", Victim: "Pirates Quicksilver 1", Damage: 8, Destroyed: true}))
	require.NoError(t, b.EndEngagement(64, map[string]int{"Republic": 5}))

	list, err := Engagements(b.DB())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Border Skirmish", list[0].Name)

	out := t.TempDir()
	mem := memory.New(config.MemoryConfig{OutputDir: out})
	require.NoError(t, Replay(b.DB(), e.ID, mem))

	export, err := memory.ReadExport(mem.ExportedFilePath())
	require.NoError(t, err)
	assert.Equal(t, uint64(64), export.EndTick)
	assert.Equal(t, uint64(11), export.Seed)
	assert.Equal(t, map[string]int{"Republic": 5}, export.Survivors)

	sparrow, ok := mem.Ship("Republic Sparrow 1")
	require.True(t, ok)
	assert.Len(t, sparrow.Shots, 2)
	assert.Equal(t, core.Point{X: 0, Y: 780}, sparrow.Shots[0].Origin)
	assert.Len(t, mem.Hits(), 1)
}

func TestReplay_UnknownEngagement(t *testing.T) {
	b := newSQLiteBackend(t)
	err := Replay(b.DB(), 42, memory.New(config.MemoryConfig{OutputDir: t.TempDir()}))
	assert.Error(t, err)
}
