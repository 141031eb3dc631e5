// Package influx writes per-tick ship and hardpoint telemetry to InfluxDB.
// When the server is unreachable points go to a gzipped line protocol file
// that can be imported later.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/starwake/engine/internal/config"
	"github.com/starwake/engine/internal/sim"
)

// DefaultBucket is used when the config leaves influx.bucket empty.
const DefaultBucket = "engagement_telemetry"

// Measurement names.
const (
	MeasurementShip      = "ship"
	MeasurementHardpoint = "hardpoint"
)

// ErrDisabled is returned by Connect when telemetry is switched off.
var ErrDisabled = errors.New("influx telemetry is disabled")

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writer       influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	Logger       zerolog.Logger
	BackupPath   string

	// Every samples one tick in Every. Zero or one writes every tick.
	Every uint64

	cfg        config.InfluxConfig
	engagement string
	backupFile *os.File
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, cfg config.InfluxConfig, backupPath string) *Manager {
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}
	return &Manager{
		Logger:     log,
		BackupPath: backupPath,
		Every:      cfg.Every,
		cfg:        cfg,
	}
}

// SetEngagement tags every following point with the engagement name.
func (m *Manager) SetEngagement(name string) {
	m.engagement = name
}

// Connect establishes a connection to InfluxDB, falling back to the backup
// file.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf("%s://%s:%s", m.cfg.Protocol, m.cfg.Host, m.cfg.Port),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.IsValid = false
		m.Logger.Info().Err(err).Str("backupPath", m.BackupPath).
			Msg("Failed to initialize InfluxDB client, writing to backup file")
		return m.openBackup()
	}

	if err := m.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}
	m.createWriter()
	m.IsValid = true
	m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	if m.BackupWriter != nil {
		return nil
	}
	if m.BackupPath == "" {
		return errors.New("influxDB unreachable and no backup path configured")
	}
	file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupOrganizationAndBucket(ctx context.Context) error {
	orgs := m.Client.OrganizationsAPI()

	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.Logger.Info().Str("org", m.cfg.Org).Msg("Organization not found, creating")
		org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", m.cfg.Org).Msg("Error creating organization")
			return err
		}
	}

	// 30 day retention
	if _, err := m.Client.BucketsAPI().FindBucketByName(ctx, m.cfg.Bucket); err != nil {
		m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")
		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, org, m.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: 60 * 60 * 24 * 30,
		})
		if err != nil {
			m.Logger.Error().Err(err).Str("bucket", m.cfg.Bucket).Msg("Error creating bucket")
			return err
		}
	}
	return nil
}

func (m *Manager) createWriter() {
	m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.Writer.Errors())
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	if m.IsValid {
		m.Writer.WritePoint(point)
		return nil
	}
	if m.BackupWriter == nil {
		return errors.New("influxDB client not initialized and backup writer not available")
	}
	line := strings.TrimRight(influxdb2_write.PointToLineProtocol(point, time.Nanosecond), "\n")
	if _, err := m.BackupWriter.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// ObserveTick implements sim.Observer. It is a no-op before Connect
// succeeds.
func (m *Manager) ObserveTick(_ context.Context, tick uint64, at time.Time, ships []*sim.Ship) {
	if !m.IsValid && m.BackupWriter == nil {
		return
	}
	if m.Every > 1 && tick%m.Every != 0 {
		return
	}
	for _, p := range Points(m.engagement, tick, at, ships) {
		if err := m.WritePoint(p); err != nil {
			m.Logger.Warn().Err(err).Uint64("tick", tick).Msg("Dropping telemetry")
			return
		}
	}
}

// Close flushes pending points and releases the client and backup file.
func (m *Manager) Close() error {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
	if m.BackupWriter != nil {
		if err := m.BackupWriter.Close(); err != nil {
			return err
		}
		m.BackupWriter = nil
	}
	if m.backupFile != nil {
		err := m.backupFile.Close()
		m.backupFile = nil
		return err
	}
	return nil
}

// Points builds one ship point per live ship and one hardpoint point per
// installed weapon.
func Points(engagement string, tick uint64, at time.Time, ships []*sim.Ship) []*influxdb2_write.Point {
	var points []*influxdb2_write.Point
	for _, s := range ships {
		if s.IsDestroyed() {
			continue
		}
		tags := map[string]string{"ship": s.Name(), "team": s.Team()}
		if engagement != "" {
			tags["engagement"] = engagement
		}
		pos := s.Position()
		points = append(points, influxdb2.NewPoint(MeasurementShip, tags, map[string]any{
			"tick":    int64(tick),
			"x":       pos.X,
			"y":       pos.Y,
			"hull":    s.Hull(),
			"shields": s.Shields(),
			"energy":  s.Energy(),
			"heat":    s.Heat(),
			"fuel":    s.Fuel(),
		}, at))

		for i, h := range s.Hardpoints() {
			w := h.Weapon()
			if w == nil {
				continue
			}
			htags := map[string]string{
				"ship":      s.Name(),
				"team":      s.Team(),
				"hardpoint": strconv.Itoa(i),
				"weapon":    w.Name,
			}
			if engagement != "" {
				htags["engagement"] = engagement
			}
			points = append(points, influxdb2.NewPoint(MeasurementHardpoint, htags, map[string]any{
				"tick":         int64(tick),
				"angle":        h.Angle().Degrees(),
				"reload":       h.ReloadRemaining(),
				"burst":        h.BurstRemaining(),
				"burst_reload": h.BurstReloadRemaining(),
				"firing":       h.WasFiring(),
			}, at))
		}
	}
	return points
}
