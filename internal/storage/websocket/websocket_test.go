package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starwake/engine/internal/storage"
	"github.com/starwake/engine/pkg/core"
	"github.com/starwake/engine/pkg/streaming"
)

// Compile-time interface check.
var _ storage.Backend = (*Backend)(nil)

// testServer creates an httptest server that upgrades to WebSocket,
// records received messages and acks start/end messages.
func testServer(t *testing.T) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ml.setSecret(r.URL.Query().Get("secret"))
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			if env.Type == streaming.TypeStartEngagement || env.Type == streaming.TypeEndEngagement {
				data, _ := json.Marshal(streaming.AckMessage{Type: "ack", For: env.Type})
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))

	return srv, ml
}

type messageLog struct {
	mu       sync.Mutex
	secret   string
	messages []streaming.Envelope
}

func (m *messageLog) setSecret(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secret = s
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, env)
}

func (m *messageLog) all() []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]streaming.Envelope, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStartAndEndEngagement(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "test"}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartEngagement(&core.Engagement{Name: "Border Skirmish", Seed: 7}))
	require.NoError(t, b.EndEngagement(600, map[string]int{"Red": 2}))

	msgs := ml.all()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, streaming.TypeStartEngagement, msgs[0].Type)
	assert.Equal(t, streaming.TypeEndEngagement, msgs[len(msgs)-1].Type)

	var start streaming.StartEngagementPayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &start))
	assert.Equal(t, "Border Skirmish", start.Engagement.Name)
	assert.Equal(t, uint64(7), start.Engagement.Seed)

	var end streaming.EndEngagementPayload
	require.NoError(t, json.Unmarshal(msgs[len(msgs)-1].Payload, &end))
	assert.Equal(t, uint64(600), end.EndTick)
	assert.Equal(t, 2, end.Survivors["Red"])

	ml.mu.Lock()
	assert.Equal(t, "test", ml.secret)
	ml.mu.Unlock()
}

func TestFireAndForgetMessages(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "s"}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartEngagement(&core.Engagement{Name: "Duel"}))

	require.NoError(t, b.RecordShot(&core.ShotEvent{Tick: 1, Ship: "Red Gunboat 1", Weapon: "Heavy Laser"}))
	require.NoError(t, b.RecordSpecial(&core.SpecialEvent{Tick: 2, Kind: core.SpecialAntiMissile}))
	require.NoError(t, b.RecordJam(&core.JamEvent{Tick: 3}))
	require.NoError(t, b.RecordHit(&core.HitEvent{Tick: 4, Damage: 12}))
	require.NoError(t, b.RecordSlot(&core.SlotEvent{Tick: 0, Index: 1}))

	require.NoError(t, b.EndEngagement(4, nil))

	// Messages share one ordered queue, so the end ack means all arrived.
	msgs := ml.all()

	types := make(map[string]int)
	for _, m := range msgs {
		types[m.Type]++
	}

	assert.Equal(t, 1, types[streaming.TypeStartEngagement])
	assert.Equal(t, 1, types[streaming.TypeEndEngagement])
	assert.Equal(t, 1, types[streaming.TypeShot])
	assert.Equal(t, 1, types[streaming.TypeSpecial])
	assert.Equal(t, 1, types[streaming.TypeJam])
	assert.Equal(t, 1, types[streaming.TypeHit])
	assert.Equal(t, 1, types[streaming.TypeSlot])
	assert.Zero(t, b.Dropped())
}

func TestStartEngagement_TimesOutWithoutAck(t *testing.T) {
	upgrader := ws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	b := New(Config{URL: wsURL(srv)}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	data, err := marshalEnvelope(streaming.TypeStartEngagement, nil)
	require.NoError(t, err)
	err = b.conn.sendAndWait(data, streaming.TypeStartEngagement, 50*time.Millisecond)
	assert.ErrorContains(t, err, "timeout")
}

func TestInit_InvalidURL(t *testing.T) {
	b := New(Config{URL: "://bad"}, nil)
	assert.Error(t, b.Init())
}

func TestClose_Idempotent(t *testing.T) {
	srv, _ := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv)}, nil)
	require.NoError(t, b.Init())
	require.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}
