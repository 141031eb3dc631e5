package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"sim": { "ticks": 600, "seed": 99 },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 600, viper.GetInt("sim.ticks"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./starwake-logs", viper.GetString("logsDir"))
	assert.Equal(t, "./data", viper.GetString("data.path"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "postgres", viper.GetString("db.username"))
	assert.Equal(t, "starwake", viper.GetString("db.database"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./recordings", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, true, viper.GetBool("storage.memory.compressOutput"))
	assert.Equal(t, "3m", viper.GetString("storage.sqlite.dumpInterval"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "starwake", viper.GetString("otel.serviceName"))
	assert.Equal(t, "5s", viper.GetString("otel.batchTimeout"))
	assert.Equal(t, true, viper.GetBool("otel.insecure"))
	assert.Equal(t, "1s", viper.GetString("monitor.interval"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadOptional_MissingFileUsesDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, LoadOptional(t.TempDir()))
	assert.Equal(t, 3600, GetSimConfig().Ticks)
}

func TestLoadOptional_BadFileFails(t *testing.T) {
	t.Cleanup(viper.Reset)

	assert.Error(t, LoadOptional(writeConfig(t, `{ not json`)))
}

func TestGetters(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	viper.Set("testInt", 42)
	viper.Set("testBool", true)
	viper.Set("testDuration", "250ms")
	assert.Equal(t, "testValue", GetString("testKey"))
	assert.Equal(t, 42, GetInt("testInt"))
	assert.Equal(t, true, GetBool("testBool"))
	assert.Equal(t, 250*time.Millisecond, GetDuration("testDuration"))
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "./recordings", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, 3*time.Minute, cfg.SQLite.DumpInterval)
	assert.Equal(t, "./recordings/engagements.db", cfg.SQLite.Path)
	assert.Equal(t, "starwake", cfg.DB.Database)
	assert.Equal(t, "ws://localhost:5000/api/v1/stream", cfg.WebSocket.URL)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "dumpInterval": "10m", "path": "/tmp/rec.db" }
		},
		"websocket": { "url": "ws://example:9000/stream", "secret": "s3cret" }
	}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, 10*time.Minute, sc.SQLite.DumpInterval)
	assert.Equal(t, "/tmp/rec.db", sc.SQLite.Path)
	assert.Equal(t, "s3cret", sc.WebSocket.Secret)
}

func TestGetSimConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"sim": {"engagement": "Duel", "seed": 12345, "formationScale": 2.5}}`)))

	sc := GetSimConfig()
	assert.Equal(t, "Duel", sc.Engagement)
	assert.Equal(t, uint64(12345), sc.Seed)
	assert.Equal(t, 3600, sc.Ticks)
	assert.Equal(t, 60, sc.SlotInterval)
	assert.Equal(t, 2.5, sc.FormationScale)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetInfluxConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	ic := GetInfluxConfig()
	assert.False(t, ic.Enabled)
	assert.Equal(t, "8086", ic.Port)
	assert.Equal(t, "hardpoints", ic.Bucket)
	assert.Equal(t, uint64(1), ic.Every)

	viper.Reset()
	require.NoError(t, Load(writeConfig(t, `{"influx": {"every": 10}}`)))
	assert.Equal(t, uint64(10), GetInfluxConfig().Every)
}

func TestBindFlags(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("sim.ticks", 0, "")
	flags.String("storage.type", "", "")
	require.NoError(t, flags.Parse([]string{"--sim.ticks=90", "--storage.type=sqlite"}))
	require.NoError(t, BindFlags(flags))

	assert.Equal(t, 90, GetSimConfig().Ticks)
	assert.Equal(t, "sqlite", GetStorageConfig().Type)
}

func TestGetAPIConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	setDefaults()

	cfg := GetAPIConfig()
	assert.Empty(t, cfg.ServerURL)
	assert.Equal(t, "sim", cfg.Tag)

	viper.Set("api.serverURL", "http://replay.local:5000")
	viper.Set("api.apiKey", "k")
	cfg = GetAPIConfig()
	assert.Equal(t, "http://replay.local:5000", cfg.ServerURL)
	assert.Equal(t, "k", cfg.APIKey)
}
