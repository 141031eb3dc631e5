// Package postgres records engagements into PostgreSQL/PostGIS. When the
// server cannot be reached the backend keeps recording into an in-memory
// SQLite database that is dumped to disk on close.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"
	"github.com/starwake/engine/internal/config"
	"github.com/starwake/engine/internal/database"
	gormstorage "github.com/starwake/engine/internal/storage/gorm"
)

// Dependencies holds all dependencies for the Postgres storage backend.
type Dependencies struct {
	DB           config.DBConfig
	FallbackPath string // dump target when falling back to SQLite
	Logger       *slog.Logger
	DBLogger     zerolog.Logger
}

// Backend connects through a database.Manager and hands the connection to
// the embedded gorm backend.
type Backend struct {
	*gormstorage.Backend
	deps    Dependencies
	manager *database.Manager
}

// New creates a new Postgres storage backend. No connection is made until
// Init.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps:    deps,
		manager: database.NewManager(deps.DBLogger),
	}
}

// Init connects, runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if err := b.manager.Connect(b.deps.DB, b.deps.FallbackPath); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	if err := b.manager.Setup(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:     b.manager.DB,
		Logger: b.deps.Logger,
	})
	return b.Backend.Init()
}

// Local reports whether the backend fell back to SQLite.
func (b *Backend) Local() bool {
	return b.manager.Local
}

// ExportedFilePath returns the SQLite dump path in fallback mode.
func (b *Backend) ExportedFilePath() string {
	if !b.manager.Local {
		return ""
	}
	return b.manager.DumpPath
}

// Close flushes pending rows and closes the connection.
func (b *Backend) Close() error {
	if b.Backend != nil {
		if err := b.Backend.Close(); err != nil {
			return err
		}
	}
	return b.manager.Close()
}
