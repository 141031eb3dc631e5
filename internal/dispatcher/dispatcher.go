// Package dispatcher routes engagement events to the handlers registered for
// their command. Handlers run inline or behind a per-command queue drained by
// its own goroutine, so events of one command are handled in dispatch order.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Event is one record produced by the simulation, routed by its command.
type Event struct {
	Command   string
	Tick      uint64
	Payload   any
	Timestamp time.Time
}

var (
	// ErrClosed is returned by Dispatch after Close.
	ErrClosed = errors.New("dispatcher closed")
	// ErrUnknownCommand is returned for a command with no handler.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrQueueFull is returned when a non-blocking queue drops an event.
	ErrQueueFull = errors.New("queue full")
)

// Queued is the result of dispatching to a buffered handler.
const Queued = "queued"

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*options)

type options struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered runs the handler on its own goroutine behind a queue of size events.
func Buffered(size int) Option {
	return func(o *options) { o.bufferSize = size }
}

// Blocking makes a full queue block the caller instead of dropping the event.
func Blocking() Option {
	return func(o *options) { o.blocking = true }
}

// Logged logs each event at debug level and failures at error level.
func Logged() Option {
	return func(o *options) { o.logged = true }
}

// Stats counts the events one command has seen.
type Stats struct {
	Command   string
	Queued    int // waiting in the queue right now
	Processed int64
	Failed    int64
	Dropped   int64
}

type route struct {
	command  string
	handle   HandlerFunc
	queue    chan Event // nil for inline handlers
	blocking bool
	attr     metric.MeasurementOption

	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// Dispatcher routes events to registered handlers.
type Dispatcher struct {
	logger  Logger
	metrics instruments

	mu     sync.RWMutex
	routes map[string]*route
	wg     sync.WaitGroup
	closed bool
}

// New creates a Dispatcher. Metrics go to the global OTel meter, which is a
// no-op until a provider is installed.
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		logger: logger,
		routes: make(map[string]*route),
	}
	if err := d.metrics.init(meter(), d.observeQueues); err != nil {
		return nil, err
	}
	return d, nil
}

// Register installs h for command, replacing any earlier handler. The
// queue of a replaced buffered handler is drained in the background.
// Registering after Close does nothing.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := &route{
		command:  command,
		handle:   h,
		blocking: o.blocking,
		attr:     metric.WithAttributes(attribute.String("command", command)),
	}
	if o.logged {
		r.handle = d.withLogging(command, r.handle)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if old, ok := d.routes[command]; ok && old.queue != nil {
		close(old.queue)
	}
	if o.bufferSize > 0 {
		r.queue = make(chan Event, o.bufferSize)
		d.wg.Add(1)
		go d.drain(r)
	}
	d.routes[command] = r
}

// Dispatch routes an event to its registered handler. Buffered handlers
// return Queued once the event is accepted.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrClosed
	}
	r, ok := d.routes[e.Command]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, e.Command)
	}

	if r.queue == nil {
		return d.run(r, e)
	}
	if r.blocking {
		r.queue <- e
		return Queued, nil
	}
	select {
	case r.queue <- e:
		return Queued, nil
	default:
		r.dropped.Add(1)
		d.metrics.dropped.Add(context.Background(), 1, r.attr)
		return nil, fmt.Errorf("%w: %s", ErrQueueFull, e.Command)
	}
}

// Close stops accepting events and waits until every buffered handler has
// drained its queue.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, r := range d.routes {
		if r.queue != nil {
			close(r.queue)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// HasHandler returns true if a handler is registered for the command.
func (d *Dispatcher) HasHandler(command string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.routes[command]
	return ok
}

// Stats returns per-command counters sorted by command.
func (d *Dispatcher) Stats() []Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Stats, 0, len(d.routes))
	for _, r := range d.routes {
		out = append(out, Stats{
			Command:   r.command,
			Queued:    len(r.queue),
			Processed: r.processed.Load(),
			Failed:    r.failed.Load(),
			Dropped:   r.dropped.Load(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Command < out[j].Command })
	return out
}

func (d *Dispatcher) run(r *route, e Event) (any, error) {
	result, err := r.handle(e)
	r.processed.Add(1)
	d.metrics.processed.Add(context.Background(), 1, r.attr)
	if err != nil {
		r.failed.Add(1)
	}
	return result, err
}

func (d *Dispatcher) drain(r *route) {
	defer d.wg.Done()
	for e := range r.queue {
		if _, err := d.run(r, e); err != nil {
			d.logger.Error("buffered event failed", "command", r.command, "tick", e.Tick, "error", err)
		}
	}
}

func (d *Dispatcher) observeQueues(o metric.Observer, gauge metric.Int64ObservableGauge) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, r := range d.routes {
		if r.queue != nil {
			o.ObserveInt64(gauge, int64(len(r.queue)), metric.WithAttributes(attribute.String("command", r.command)))
		}
	}
}

func (d *Dispatcher) withLogging(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "tick", e.Tick)

		result, err := h(e)

		if err != nil {
			d.logger.Error("event failed", "command", command, "tick", e.Tick, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "command", command, "duration", time.Since(start))
		}
		return result, err
	}
}
