package postgres

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/starwake/engine/internal/config"
	"github.com/starwake/engine/internal/database"
	"github.com/starwake/engine/internal/model"
	"github.com/starwake/engine/internal/storage"
	"github.com/starwake/engine/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface checks
var (
	_ storage.Backend    = (*Backend)(nil)
	_ storage.Exportable = (*Backend)(nil)
)

// unreachable points at a port nothing listens on so Connect falls back.
var unreachable = config.DBConfig{
	Host:     "127.0.0.1",
	Port:     "1",
	Username: "starwake",
	Password: "starwake",
	Database: "starwake",
}

func TestNew(t *testing.T) {
	b := New(Dependencies{DB: unreachable})
	require.NotNil(t, b)
	assert.False(t, b.Local())
	assert.Empty(t, b.ExportedFilePath())
}

func TestClose_BeforeInit(t *testing.T) {
	b := New(Dependencies{DB: unreachable})
	assert.NoError(t, b.Close())
}

func TestInit_FallsBackToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.db")

	b := New(Dependencies{DB: unreachable, FallbackPath: path, DBLogger: zerolog.Nop()})
	require.NoError(t, b.Init())
	assert.True(t, b.Local())
	assert.Equal(t, path, b.ExportedFilePath())

	require.NoError(t, b.StartEngagement(&core.Engagement{Name: "Fallback"}))
	require.NoError(t, b.RecordJam(&core.JamEvent{Tick: 3, Ship: "Red Gunboat 1", Hardpoint: 1, Weapon: "Heavy Laser"}))
	require.NoError(t, b.EndEngagement(3, nil))
	require.NoError(t, b.Close())

	_, err := os.Stat(path)
	require.NoError(t, err)

	disk, err := database.OpenSQLite(path)
	require.NoError(t, err)

	var jams []model.Jam
	require.NoError(t, disk.Find(&jams).Error)
	require.Len(t, jams, 1)
	assert.Equal(t, "Heavy Laser", jams[0].Weapon)
}
