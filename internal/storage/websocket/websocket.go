package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/starwake/engine/pkg/core"
	"github.com/starwake/engine/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams engagement events over WebSocket as they are recorded.
// Nothing is kept locally, so it does not implement storage.Exportable.
type Backend struct {
	conn *connection
	cfg  Config
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger.With("component", "websocket")),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	return b.conn.dial(ctx, b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// Dropped returns how many messages were discarded because the send queue
// was full.
func (b *Backend) Dropped() uint64 {
	return b.conn.dropped.Load()
}

func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(streaming.Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope is fire-and-forget.
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartEngagement sends the engagement header and waits for the server ack.
func (b *Backend) StartEngagement(e *core.Engagement) error {
	if e.StartTime.IsZero() {
		e.StartTime = time.Now()
	}
	data, err := marshalEnvelope(streaming.TypeStartEngagement, streaming.StartEngagementPayload{Engagement: e})
	if err != nil {
		return err
	}

	b.conn.mu.Lock()
	b.conn.startMsg = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartEngagement, ackTimeout)
}

// EndEngagement sends the result and waits for the server ack.
func (b *Backend) EndEngagement(endTick uint64, survivors map[string]int) error {
	data, err := marshalEnvelope(streaming.TypeEndEngagement, streaming.EndEngagementPayload{
		EndTick:   endTick,
		Survivors: survivors,
	})
	if err != nil {
		return err
	}
	err = b.conn.sendAndWait(data, streaming.TypeEndEngagement, ackTimeout)

	b.conn.mu.Lock()
	b.conn.startMsg = nil
	b.conn.mu.Unlock()

	return err
}

func (b *Backend) RecordShot(e *core.ShotEvent) error {
	return b.sendEnvelope(streaming.TypeShot, e)
}

func (b *Backend) RecordSpecial(e *core.SpecialEvent) error {
	return b.sendEnvelope(streaming.TypeSpecial, e)
}

func (b *Backend) RecordJam(e *core.JamEvent) error {
	return b.sendEnvelope(streaming.TypeJam, e)
}

func (b *Backend) RecordHit(e *core.HitEvent) error {
	return b.sendEnvelope(streaming.TypeHit, e)
}

func (b *Backend) RecordSlot(e *core.SlotEvent) error {
	return b.sendEnvelope(streaming.TypeSlot, e)
}
