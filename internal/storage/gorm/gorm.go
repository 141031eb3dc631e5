// Package gormstorage implements the storage.Backend interface on any gorm
// dialect. Events are converted on arrival and held in queues that a
// background writer drains in batches.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/starwake/engine/internal/database"
	"github.com/starwake/engine/internal/model"
	"github.com/starwake/engine/internal/model/convert"
	"github.com/starwake/engine/internal/queue"
	"github.com/starwake/engine/pkg/core"
	"gorm.io/gorm"
)

// DefaultFlushInterval is used when Dependencies.FlushInterval is zero.
const DefaultFlushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB // nil runs in queue-only mode
	Logger        *slog.Logger
	FlushInterval time.Duration
	BatchSize     int // rows per insert; 0 writes a whole queue at once
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Shots    *queue.Queue[model.Shot]
	Specials *queue.Queue[model.Special]
	Jams     *queue.Queue[model.Jam]
	Hits     *queue.Queue[model.Hit]
	Slots    *queue.Queue[model.Slot]
}

func newQueues() *queues {
	return &queues{
		Shots:    queue.New[model.Shot](),
		Specials: queue.New[model.Special](),
		Jams:     queue.New[model.Jam](),
		Hits:     queue.New[model.Hit](),
		Slots:    queue.New[model.Slot](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps         Dependencies
	logger       *slog.Logger
	queues       *queues
	engagementID atomic.Uint64

	flushMu       sync.Mutex
	lastWriteNano atomic.Int64

	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		deps:   deps,
		logger: logger.With("component", "gorm"),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init creates internal queues, runs schema migration, and starts the DB
// writer goroutine.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})

	if b.deps.DB == nil {
		close(b.done)
		return nil
	}

	b.logger.Info("Migrating schema", "dialect", b.deps.DB.Name())
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	go b.writeLoop()
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	select {
	case <-b.stopChan:
		return nil
	default:
		close(b.stopChan)
	}
	<-b.done
	return b.Flush()
}

// StartEngagement inserts the engagement row and assigns its ID.
func (b *Backend) StartEngagement(e *core.Engagement) error {
	if b.deps.DB == nil {
		return nil
	}

	row := convert.CoreToEngagement(*e)
	row.ID = 0
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert new engagement: %w", err)
	}
	e.ID = row.ID
	b.engagementID.Store(uint64(row.ID))
	b.logger.Info("Engagement started", "id", row.ID, "name", row.Name)
	return nil
}

// SetEngagementID sets the engagement the writer stamps rows with.
func (b *Backend) SetEngagementID(id uint) {
	b.engagementID.Store(uint64(id))
}

// EndEngagement writes everything queued and stores the end tick and
// survivors on the engagement row.
func (b *Backend) EndEngagement(endTick uint64, survivors map[string]int) error {
	if b.deps.DB == nil {
		return nil
	}
	if err := b.Flush(); err != nil {
		return err
	}

	id := uint(b.engagementID.Load())
	err := b.deps.DB.Model(&model.Engagement{}).Where("id = ?", id).Updates(map[string]any{
		"end_tick":  endTick,
		"survivors": convert.SurvivorsToJSON(survivors),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to finalize engagement %d: %w", id, err)
	}
	b.logger.Info("Engagement ended", "id", id, "endTick", endTick)
	return nil
}

// RecordShot converts and queues a shot.
func (b *Backend) RecordShot(e *core.ShotEvent) error {
	b.queues.Shots.Push(convert.CoreToShot(*e))
	return nil
}

// RecordSpecial converts and queues a special system activation.
func (b *Backend) RecordSpecial(e *core.SpecialEvent) error {
	b.queues.Specials.Push(convert.CoreToSpecial(*e))
	return nil
}

// RecordJam converts and queues a jam.
func (b *Backend) RecordJam(e *core.JamEvent) error {
	b.queues.Jams.Push(convert.CoreToJam(*e))
	return nil
}

// RecordHit converts and queues a hit.
func (b *Backend) RecordHit(e *core.HitEvent) error {
	b.queues.Hits.Push(convert.CoreToHit(*e))
	return nil
}

// RecordSlot converts and queues a formation slot.
func (b *Backend) RecordSlot(e *core.SlotEvent) error {
	b.queues.Slots.Push(convert.CoreToSlot(*e))
	return nil
}

// Pending returns the number of rows waiting to be written.
func (b *Backend) Pending() int {
	if b.queues == nil {
		return 0
	}
	return b.queues.Shots.Len() + b.queues.Specials.Len() + b.queues.Jams.Len() +
		b.queues.Hits.Len() + b.queues.Slots.Len()
}

// LastWriteDuration returns how long the most recent flush took.
func (b *Backend) LastWriteDuration() time.Duration {
	return time.Duration(b.lastWriteNano.Load())
}

// Flush writes every queue to the database. Rows that fail to insert are
// put back at the head of their queue.
func (b *Backend) Flush() error {
	if b.deps.DB == nil || b.queues == nil {
		return nil
	}
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	start := time.Now()
	id := uint(b.engagementID.Load())
	size := b.deps.BatchSize

	err := errors.Join(
		writeQueue(b.deps.DB, b.queues.Shots, size, func(r *model.Shot) { r.EngagementID = id }),
		writeQueue(b.deps.DB, b.queues.Specials, size, func(r *model.Special) { r.EngagementID = id }),
		writeQueue(b.deps.DB, b.queues.Jams, size, func(r *model.Jam) { r.EngagementID = id }),
		writeQueue(b.deps.DB, b.queues.Hits, size, func(r *model.Hit) { r.EngagementID = id }),
		writeQueue(b.deps.DB, b.queues.Slots, size, func(r *model.Slot) { r.EngagementID = id }),
	)
	b.lastWriteNano.Store(int64(time.Since(start)))
	if err != nil {
		b.logger.Error("Write cycle failed", "error", err)
	}
	return err
}

// writeQueue drains q in batches of size rows, each in its own transaction.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], size int, stamp func(*T)) error {
	for !q.Empty() {
		items := q.Drain(size)
		for i := range items {
			stamp(&items[i])
		}

		tx := db.Begin()
		if err := tx.Create(&items).Error; err != nil {
			tx.Rollback()
			q.Requeue(items...)
			var zero T
			return fmt.Errorf("error creating %T rows: %w", zero, err)
		}
		if err := tx.Commit().Error; err != nil {
			q.Requeue(items...)
			return fmt.Errorf("error committing: %w", err)
		}
	}
	return nil
}

// writeLoop periodically drains the queues until Close.
func (b *Backend) writeLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			_ = b.Flush()
		}
	}
}
