package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Swapped in tests to capture console output.
var (
	osStdout io.Writer = os.Stdout
	osPipe             = os.Pipe
)

// Options configures SlogManager.Setup.
type Options struct {
	// Output receives text records. Nil means stdout.
	Output io.Writer
	// Level is debug, info, warn or error. Anything else is info.
	Level string
	// Provider bridges records to OpenTelemetry when non-nil.
	Provider *sdklog.LoggerProvider
	// Scope names the OpenTelemetry instrumentation scope.
	Scope string
}

// SlogManager owns the process slog logger.
type SlogManager struct {
	logger      *slog.Logger
	context     ContextProvider
	logProvider *sdklog.LoggerProvider
}

func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

func parseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// utcTime renders record times as RFC3339 in UTC.
func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339))
	}
	return a
}

// SetContextProvider installs attrs appended to every record, such as the
// running engagement and its tick. It takes effect on the next Setup.
func (m *SlogManager) SetContextProvider(provider ContextProvider) {
	m.context = provider
}

// Setup replaces the logger. Records from loggers handed out earlier keep
// going to the old output.
func (m *SlogManager) Setup(opts Options) {
	out := opts.Output
	if out == nil {
		out = osStdout
	}
	scope := opts.Scope
	if scope == "" {
		scope = "starwake"
	}

	text := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:       parseLevel(opts.Level),
		ReplaceAttr: utcTime,
	})
	var bridge slog.Handler
	if opts.Provider != nil {
		bridge = otelslog.NewHandler(scope, otelslog.WithLoggerProvider(opts.Provider))
	}

	var handler slog.Handler = NewMultiHandler(text, bridge)
	if m.context != nil {
		handler = NewContextHandler(handler, m.context)
	}

	m.logProvider = opts.Provider
	m.logger = slog.New(handler)
	m.logger.Info("Logging initialized", "level", parseLevel(opts.Level).String())
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Component returns a logger tagged with component=name.
func (m *SlogManager) Component(name string) *slog.Logger {
	return m.Logger().With("component", name)
}

// Flush pushes buffered OpenTelemetry records to their exporter.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider == nil {
		return nil
	}
	return m.logProvider.ForceFlush(ctx)
}
