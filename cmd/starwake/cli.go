package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"github.com/starwake/engine/internal/api"
	"github.com/starwake/engine/internal/catalog"
	"github.com/starwake/engine/internal/config"
	"github.com/starwake/engine/internal/database"
	"github.com/starwake/engine/internal/dispatcher"
	"github.com/starwake/engine/internal/formation"
	"github.com/starwake/engine/internal/geo"
	"github.com/starwake/engine/internal/influx"
	"github.com/starwake/engine/internal/logging"
	"github.com/starwake/engine/internal/monitor"
	"github.com/starwake/engine/internal/report"
	"github.com/starwake/engine/internal/sim"
	"github.com/starwake/engine/internal/storage"
	gormstorage "github.com/starwake/engine/internal/storage/gorm"
	"github.com/starwake/engine/internal/storage/memory"
	"github.com/starwake/engine/internal/worker"
	"github.com/starwake/engine/pkg/core"
)

// parseFlags registers the shared flags, parses args and loads the config
// with the flags bound on top.
func parseFlags(name string, args []string, extra func(*pflag.FlagSet)) (*pflag.FlagSet, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	configDir := fs.String("config", ".", "directory containing "+config.FileName)
	fs.String("data.path", "", "data file or directory of .txt data files")
	fs.String("logLevel", "", "debug, info, warn or error")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := config.LoadOptional(*configDir); err != nil {
		return nil, err
	}
	// Only flags the user set override the file.
	var changed pflag.FlagSet
	fs.Visit(func(f *pflag.Flag) { changed.AddFlag(f) })
	if err := config.BindFlags(&changed); err != nil {
		return nil, err
	}
	return fs, nil
}

// dataFiles expands path into the data files to load. A directory yields
// every .txt file in it, sorted by name.
func dataFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	files, err := filepath.Glob(filepath.Join(path, "*.txt"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no data files in %s", path)
	}
	sort.Strings(files)
	return files, nil
}

func loadCatalog() (*catalog.Catalog, []string, error) {
	files, err := dataFiles(config.GetSimConfig().DataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("finding data files: %w", err)
	}
	c := catalog.New(SlogManager.Component("catalog"))
	if err := c.LoadFiles(files...); err != nil {
		return nil, nil, fmt.Errorf("loading data: %w", err)
	}
	return c, files, nil
}

// tickObserver publishes the current tick for the log context and forwards
// to the telemetry writer.
type tickObserver struct {
	next sim.Observer
}

func (o tickObserver) ObserveTick(ctx context.Context, tick uint64, at time.Time, ships []*sim.Ship) {
	currentTick.Store(tick)
	if o.next != nil {
		o.next.ObserveTick(ctx, tick, at, ships)
	}
}

func runCommand(ctx context.Context, args []string) error {
	_, err := parseFlags("run", args, func(fs *pflag.FlagSet) {
		fs.String("sim.engagement", "", "engagement to simulate")
		fs.Int("sim.ticks", 0, "maximum ticks to run")
		fs.Uint64("sim.seed", 0, "random seed")
		fs.String("storage.type", "", "memory, sqlite, postgres or websocket")
	})
	if err != nil {
		return err
	}
	if err := setupLogging(ctx); err != nil {
		return err
	}

	simCfg := config.GetSimConfig()
	c, files, err := loadCatalog()
	if err != nil {
		return err
	}

	storageCfg := config.GetStorageConfig()
	backend, err := createStorageBackend(storageCfg)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return err
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err)
		return err
	}
	Logger.Info("Storage backend initialized", "type", storageCfg.Type)
	closeBackend := sync.OnceFunc(func() {
		if err := backend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
	})
	defer closeBackend()

	eventDispatcher, err := dispatcher.New(logging.NewDispatcherLogger(ZLogger.With().Str("component", "dispatcher").Logger()))
	if err != nil {
		return err
	}
	defer eventDispatcher.Close()
	workerManager := worker.NewManager(backend, SlogManager.Component("worker"))
	workerManager.RegisterHandlers(eventDispatcher)

	telemetry := influx.NewManager(ZLogger.With().Str("component", "influx").Logger(),
		config.GetInfluxConfig(),
		filepath.Join(config.GetString("logsDir"), fmt.Sprintf("telemetry_%s.lp.gz", SessionStartTime.Format("20060102_150405"))))
	telemetry.SetEngagement(simCfg.Engagement)
	if err := telemetry.Connect(ctx); err != nil && !errors.Is(err, influx.ErrDisabled) {
		Logger.Warn("Telemetry unavailable", "error", err)
	}
	closeTelemetry := sync.OnceFunc(func() {
		if err := telemetry.Close(); err != nil {
			Logger.Warn("Failed to close telemetry", "error", err)
		}
	})
	defer closeTelemetry()

	engagement, err := sim.New(c, simCfg.Engagement,
		sim.WithSeed(simCfg.Seed),
		sim.WithPublisher(eventDispatcher),
		sim.WithObserver(tickObserver{next: telemetry}),
		sim.WithLogger(SlogManager.Component("sim")),
		sim.WithStartTime(SessionStartTime),
		sim.WithSlotInterval(simCfg.SlotInterval),
		sim.WithFormationScale(simCfg.FormationScale),
	)
	if err != nil {
		return err
	}
	currentEngagement.Store(engagement.Name())
	defer currentEngagement.Store("")

	record := &core.Engagement{
		Name:      engagement.Name(),
		DataFile:  strings.Join(files, ","),
		Seed:      simCfg.Seed,
		StartTime: SessionStartTime,
	}
	if err := backend.StartEngagement(record); err != nil {
		return fmt.Errorf("starting engagement: %w", err)
	}

	var statusPath string
	if dir := config.GetString("logsDir"); dir != "" {
		statusPath = filepath.Join(dir, "status.json")
	}
	status := monitor.NewService(monitor.Dependencies{
		Logger:     SlogManager.Component("monitor"),
		StatusPath: statusPath,
		Interval:   config.GetDuration("monitor.interval"),
		Status: func() (monitor.Status, bool) {
			st := monitor.Status{
				Engagement:          record.Name,
				Tick:                currentTick.Load(),
				Events:              workerManager.Counts(),
				Queued:              make(map[string]int),
				PendingRows:         workerManager.Pending(),
				LastWriteDurationMs: float64(workerManager.LastWriteDuration().Microseconds()) / 1000,
			}
			for _, q := range eventDispatcher.Stats() {
				st.Queued[q.Command] = q.Queued
				st.Dropped += q.Dropped
			}
			return st, true
		},
	})
	status.Start()

	summary, runErr := engagement.Run(ctx, simCfg.Ticks)

	// Drain buffered handlers before the backend sees the end.
	eventDispatcher.Close()
	status.Stop()
	if err := backend.EndEngagement(summary.Ticks, summary.Survivors); err != nil {
		Logger.Error("Failed to end engagement", "error", err)
	}
	// The recording path is only final once the backend is closed.
	closeBackend()
	closeTelemetry()

	Logger.Info("Engagement recorded",
		"ticks", summary.Ticks,
		"shots", summary.Shots,
		"hits", summary.Hits,
		"events", workerManager.Counts(),
		"lastWrite", workerManager.LastWriteDuration())

	printSummary(record.Name, summary)
	if exp, ok := backend.(storage.Exportable); ok && exp.ExportedFilePath() != "" {
		fmt.Println("recording:", exp.ExportedFilePath())
		uploadRecording(ctx, exp.ExportedFilePath(), record, summary.Ticks)
	}
	return runErr
}

func printSummary(name string, s sim.Summary) {
	fmt.Printf("%s: %d ticks (%.1fs)\n", name, s.Ticks, float64(s.Ticks)/sim.TicksPerSecond)
	fmt.Printf("  shots %d, specials %d, jams %d, hits %d\n", s.Shots, s.Specials, s.Jams, s.Hits)
	teams := make([]string, 0, len(s.Survivors))
	for team := range s.Survivors {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	for _, team := range teams {
		fmt.Printf("  %s: %d ships left\n", team, s.Survivors[team])
	}
	for _, name := range s.Destroyed {
		fmt.Printf("  destroyed: %s\n", name)
	}
}

func weaponsCommand(args []string) error {
	if _, err := parseFlags("weapons", args, nil); err != nil {
		return err
	}
	c, _, err := loadCatalog()
	if err != nil {
		return err
	}
	return report.WriteWeapons(os.Stdout, c.Weapons())
}

// fixedLead is a stationary formation leader.
type fixedLead struct {
	pos    core.Point
	facing core.Angle
}

func (l fixedLead) Position() core.Point { return l.pos }
func (l fixedLead) Facing() core.Angle   { return l.facing }

func formationCommand(args []string) error {
	var at string
	var facing, scale float64
	fs, err := parseFlags("formation", args, func(fs *pflag.FlagSet) {
		fs.StringVar(&at, "at", "0,0", "leader position as x,y")
		fs.Float64Var(&facing, "facing", 0, "leader facing in degrees")
		fs.Float64Var(&scale, "scale", 0, "pattern scale, defaults to sim.formationScale")
	})
	if err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: %s formation <name> <count>", AppName)
	}
	count, err := strconv.Atoi(fs.Arg(1))
	if err != nil || count < 0 {
		return fmt.Errorf("invalid count %q", fs.Arg(1))
	}
	pos, err := geo.PointFromString(at)
	if err != nil {
		return err
	}
	if scale == 0 {
		scale = config.GetSimConfig().FormationScale
	}

	c, _, err := loadCatalog()
	if err != nil {
		return err
	}
	pattern, ok := c.Formations.Find(fs.Arg(0))
	if !ok {
		return fmt.Errorf("unknown formation %q", fs.Arg(0))
	}

	p := formation.NewPositioner(fixedLead{pos: pos, facing: core.NewAngle(facing)}, pattern, formation.WithScale(scale))
	p.Start()
	slots := make([]core.Point, 0, count)
	for range count {
		slots = append(slots, p.NextPosition())
	}
	fmt.Println(geo.SlotsWKT(slots))
	return nil
}

func exportCommand(args []string) error {
	var dbPath, outDir string
	var id uint
	var list bool
	_, err := parseFlags("export", args, func(fs *pflag.FlagSet) {
		fs.StringVar(&dbPath, "db", "", "SQLite recording, defaults to the newest in the sqlite dump dir")
		fs.UintVar(&id, "id", 0, "engagement ID, defaults to the latest")
		fs.StringVar(&outDir, "out", "", "output dir, defaults to storage.memory.outputDir")
		fs.BoolVar(&list, "list", false, "list recorded engagements and exit")
	})
	if err != nil {
		return err
	}
	if err := setupLogging(context.Background()); err != nil {
		return err
	}

	storageCfg := config.GetStorageConfig()
	if dbPath == "" {
		paths, err := database.BackupPaths(filepath.Dir(storageCfg.SQLite.Path))
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no recordings in %s", filepath.Dir(storageCfg.SQLite.Path))
		}
		dbPath = paths[0]
	}

	db, err := database.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	engagements, err := gormstorage.Engagements(db)
	if err != nil {
		return err
	}
	if len(engagements) == 0 {
		return fmt.Errorf("no engagements in %s", dbPath)
	}

	if list {
		for _, e := range engagements {
			fmt.Printf("%d\t%s\t%s\t%d ticks\n", e.ID, e.Name, e.StartTime.Format("2006-01-02 15:04:05"), e.EndTick)
		}
		return nil
	}
	if id == 0 {
		id = engagements[len(engagements)-1].ID
	}

	memCfg := storageCfg.Memory
	if outDir != "" {
		memCfg.OutputDir = outDir
	}
	dst := memory.New(memCfg)
	if err := gormstorage.Replay(db, id, dst); err != nil {
		return err
	}
	Logger.Info("Exported engagement", "id", id, "db", dbPath, "path", dst.ExportedFilePath())
	fmt.Println(dst.ExportedFilePath())
	return nil
}

// uploadRecording sends the recording to the replay server when one is
// configured. Failures are logged and leave the local file in place.
func uploadRecording(ctx context.Context, path string, record *core.Engagement, ticks uint64) {
	cfg := config.GetAPIConfig()
	if cfg.ServerURL == "" {
		return
	}
	client := api.New(cfg.ServerURL, cfg.APIKey)
	if err := client.Healthcheck(ctx); err != nil {
		Logger.Warn("Replay server unreachable, skipping upload", "error", err)
		return
	}
	meta := api.Metadata{
		Engagement: record.Name,
		DataFile:   record.DataFile,
		Seed:       record.Seed,
		Duration:   float64(ticks) / sim.TicksPerSecond,
		Tag:        cfg.Tag,
	}
	if err := client.Upload(ctx, path, meta); err != nil {
		Logger.Error("Failed to upload recording", "path", path, "error", err)
		return
	}
	Logger.Info("Recording uploaded", "path", path, "server", cfg.ServerURL)
}
