package logging

import "github.com/rs/zerolog"

// DispatcherLogger lets the event dispatcher log through zerolog.
// Key-value pairs become zerolog fields; non-string keys and a trailing
// key without a value are skipped.
type DispatcherLogger struct {
	logger zerolog.Logger
}

func NewDispatcherLogger(logger zerolog.Logger) *DispatcherLogger {
	return &DispatcherLogger{logger: logger}
}

func (l *DispatcherLogger) Debug(msg string, keysAndValues ...any) {
	l.log(l.logger.Debug(), msg, keysAndValues)
}

func (l *DispatcherLogger) Info(msg string, keysAndValues ...any) {
	l.log(l.logger.Info(), msg, keysAndValues)
}

func (l *DispatcherLogger) Error(msg string, keysAndValues ...any) {
	l.log(l.logger.Error(), msg, keysAndValues)
}

// log is a no-op for levels the logger filters, where e is nil.
func (l *DispatcherLogger) log(e *zerolog.Event, msg string, keysAndValues []any) {
	if e == nil {
		return
	}
	if len(keysAndValues)%2 == 1 {
		keysAndValues = keysAndValues[:len(keysAndValues)-1]
	}
	e.Fields(keysAndValues).Msg(msg)
}
