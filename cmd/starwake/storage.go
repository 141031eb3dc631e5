package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starwake/engine/internal/config"
	"github.com/starwake/engine/internal/storage"
	"github.com/starwake/engine/internal/storage/memory"
	pgstorage "github.com/starwake/engine/internal/storage/postgres"
	sqlitestorage "github.com/starwake/engine/internal/storage/sqlite"
	wsstorage "github.com/starwake/engine/internal/storage/websocket"
)

func createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, error) {
	switch storageCfg.Type {
	case storage.TypePostgres:
		Logger.Info("Postgres storage backend selected", "host", storageCfg.DB.Host)
		return pgstorage.New(pgstorage.Dependencies{
			DB:           storageCfg.DB,
			FallbackPath: sessionDBPath(storageCfg.SQLite.Path),
			Logger:       SlogManager.Logger(),
			DBLogger:     ZLogger.With().Str("component", "database").Logger(),
		}), nil

	case storage.TypeSQLite:
		backend, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: storageCfg.SQLite.DumpInterval,
			DumpPath:     sessionDBPath(storageCfg.SQLite.Path),
		}, SlogManager.Logger())
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		Logger.Info("SQLite storage backend selected")
		return backend, nil

	case storage.TypeWebSocket:
		wsURL := httpToWS(storageCfg.WebSocket.URL)
		Logger.Info("WebSocket storage backend selected", "url", wsURL)
		return wsstorage.New(wsstorage.Config{
			URL:    wsURL,
			Secret: storageCfg.WebSocket.Secret,
		}, SlogManager.Logger()), nil

	case storage.TypeMemory, "":
		Logger.Info("Memory storage backend selected")
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrUnknownBackend, storageCfg.Type)
	}
}

// sessionDBPath stamps the session start into a database file name so every
// run dumps to its own file: recordings/engagements.db becomes
// recordings/engagements_20060102_150405.db.
func sessionDBPath(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		ext = ".db"
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return fmt.Sprintf("%s_%s%s", base, SessionStartTime.Format("20060102_150405"), ext)
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
