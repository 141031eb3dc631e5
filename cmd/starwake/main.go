// Command starwake simulates fleet engagements from game data files and
// records every weapon event to the configured storage backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/starwake/engine/internal/config"
	"github.com/starwake/engine/internal/logging"
	intOtel "github.com/starwake/engine/internal/otel"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion = "0.1.0"
	BuildDate      = "unknown"

	AppName = "starwake"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager = logging.NewSlogManager()

	// Logger is the slog logger (convenience reference)
	Logger = slog.Default()

	// ZLogger is used by the database, influx and dispatcher adapters.
	ZLogger = zerolog.Nop()

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime = time.Now()

	LogFile     *os.File
	OTelLogFile *os.File

	// updated by the running engagement, read by the log context provider
	currentEngagement atomic.Value
	currentTick       atomic.Uint64
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "run":
		err = runCommand(ctx, args)
	case "weapons":
		err = weaponsCommand(args)
	case "formation":
		err = formationCommand(args)
	case "export":
		err = exportCommand(args)
	case "version":
		fmt.Printf("%s %s (%s)\n", AppName, CurrentVersion, BuildDate)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	shutdown()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: %s <command> [flags]

commands:
  run                      simulate an engagement and record it
  weapons                  print weapon stats as CSV
  formation <name> <count> print formation slots as WKT
  export                   write a recorded engagement as JSON
  version                  print the version
`, AppName)
}

// setupLogging opens the session log file and wires slog, zerolog and the
// OTel bridge. Without a logs dir everything goes to stdout.
func setupLogging(ctx context.Context) error {
	level := config.GetString("logLevel")
	logsDir := config.GetString("logsDir")

	var out io.Writer
	if logsDir != "" {
		f, err := logging.OpenLogFile(logsDir, AppName, SessionStartTime)
		if err != nil {
			return err
		}
		LogFile = f
		out = f
	}

	otelCfg := config.GetOTelConfig()
	var otelWriter io.Writer
	if otelCfg.Enabled && logsDir != "" {
		f, err := logging.OpenLogFile(logsDir, AppName+".otel", SessionStartTime)
		if err != nil {
			return err
		}
		OTelLogFile = f
		otelWriter = f
	}

	var err error
	OTelProvider, err = intOtel.New(ctx, intOtel.FromConfig(otelCfg, otelWriter))
	if err != nil {
		return fmt.Errorf("setting up otel: %w", err)
	}

	SlogManager.SetContextProvider(engagementContext)
	SlogManager.Setup(logging.Options{
		Output:   out,
		Level:    level,
		Provider: OTelProvider.LoggerProvider(),
		Scope:    otelCfg.ServiceName,
	})
	Logger = SlogManager.Logger()

	zlevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		zlevel = zerolog.InfoLevel
	}
	zout := zerolog.ConsoleWriter{Out: os.Stdout, NoColor: true}
	if out != nil {
		zout.Out = out
	}
	ZLogger = zerolog.New(zout).Level(zlevel).With().Timestamp().Logger()

	Logger.Info("Starting up", "version", CurrentVersion, "build", BuildDate, "logsDir", filepath.Clean(logsDir))
	return nil
}

// engagementContext supplies the engagement and tick attrs for every log
// record while a run is active.
func engagementContext() []slog.Attr {
	name, _ := currentEngagement.Load().(string)
	if name == "" {
		return nil
	}
	return []slog.Attr{
		slog.String("engagement", name),
		slog.Uint64("tick", currentTick.Load()),
	}
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := SlogManager.Flush(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "flushing logs:", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "otel shutdown:", err)
		}
	}
	for _, f := range []*os.File{LogFile, OTelLogFile} {
		if f != nil {
			_ = f.Close()
		}
	}
}
