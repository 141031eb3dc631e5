package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOnce_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	s := NewService(Dependencies{
		StatusPath: path,
		Status: func() (Status, bool) {
			return Status{
				Engagement:  "Border Skirmish",
				Tick:        120,
				Events:      map[string]int{":FIRED:": 14},
				Queued:      map[string]int{":HIT:": 2},
				Dropped:     1,
				PendingRows: 3,
			}, true
		},
	})

	require.NoError(t, s.WriteOnce())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Status
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Border Skirmish", got.Engagement)
	assert.Equal(t, uint64(120), got.Tick)
	assert.Equal(t, 14, got.Events[":FIRED:"])
	assert.Equal(t, 2, got.Queued[":HIT:"])
	assert.Equal(t, int64(1), got.Dropped)
	assert.Equal(t, 3, got.PendingRows)
	assert.False(t, got.Time.IsZero())
}

func TestWriteOnce_SkipsWhenNotReady(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	s := NewService(Dependencies{
		StatusPath: path,
		Status:     func() (Status, bool) { return Status{}, false },
	})

	require.NoError(t, s.WriteOnce())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	var tick atomic.Uint64
	s := NewService(Dependencies{
		StatusPath: path,
		Interval:   5 * time.Millisecond,
		Status: func() (Status, bool) {
			return Status{Tick: tick.Add(1)}, true
		},
	})

	s.Start()
	s.Start() // no second goroutine
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()

	// Stop writes a final snapshot.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Status
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, tick.Load(), got.Tick)
}

func TestWriteOnce_NoPath(t *testing.T) {
	called := false
	s := NewService(Dependencies{Status: func() (Status, bool) {
		called = true
		return Status{}, true
	}})

	assert.NoError(t, s.WriteOnce())
	assert.False(t, called)
}
