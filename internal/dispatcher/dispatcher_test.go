package dispatcher

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) log(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("%s: %s %v", level, msg, kv))
}

func (l *testLogger) Debug(msg string, kv ...any) { l.log("DEBUG", msg, kv) }
func (l *testLogger) Info(msg string, kv ...any)  { l.log("INFO", msg, kv) }
func (l *testLogger) Error(msg string, kv ...any) { l.log("ERROR", msg, kv) }

func (l *testLogger) count(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range l.messages {
		if strings.HasPrefix(m, prefix) {
			n++
		}
	}
	return n
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	t.Helper()
	logger := &testLogger{}
	d, err := New(logger)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}
	t.Cleanup(d.Close)
	return d, logger
}

func statsFor(d *Dispatcher, command string) Stats {
	for _, s := range d.Stats() {
		if s.Command == command {
			return s
		}
	}
	return Stats{}
}

func TestDispatch_Inline(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register(":HIT:", func(e Event) (any, error) {
		if e.Tick != 7 || e.Payload != "shot" {
			t.Errorf("unexpected event: %+v", e)
		}
		return "result", nil
	})

	result, err := d.Dispatch(Event{Command: ":HIT:", Tick: 7, Payload: "shot"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "result" {
		t.Errorf("expected 'result', got %v", result)
	}
	if s := statsFor(d, ":HIT:"); s.Processed != 1 || s.Failed != 0 {
		t.Errorf("unexpected stats: %+v", s)
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(Event{Command: ":UNKNOWN:"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestDispatch_BufferedKeepsOrder(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var mu sync.Mutex
	var ticks []uint64
	d.Register(":FIRED:", func(e Event) (any, error) {
		mu.Lock()
		ticks = append(ticks, e.Tick)
		mu.Unlock()
		return nil, nil
	}, Buffered(100))

	for i := uint64(0); i < 50; i++ {
		result, err := d.Dispatch(Event{Command: ":FIRED:", Tick: i})
		if err != nil || result != Queued {
			t.Fatalf("dispatch %d: result=%v err=%v", i, result, err)
		}
	}
	d.Close()

	if len(ticks) != 50 {
		t.Fatalf("expected 50 handled, got %d", len(ticks))
	}
	for i, tick := range ticks {
		if tick != uint64(i) {
			t.Fatalf("event %d handled out of order: tick %d", i, tick)
		}
	}
}

func TestDispatch_NonBlockingDropsWhenFull(t *testing.T) {
	d, _ := newTestDispatcher(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	d.Register(":SLOT:", func(e Event) (any, error) {
		once.Do(func() { close(started) })
		<-release
		return nil, nil
	}, Buffered(2))

	d.Dispatch(Event{Command: ":SLOT:"})
	<-started // first event is now in the handler, queue is empty
	d.Dispatch(Event{Command: ":SLOT:"})
	d.Dispatch(Event{Command: ":SLOT:"})

	_, err := d.Dispatch(Event{Command: ":SLOT:"})
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	s := statsFor(d, ":SLOT:")
	if s.Dropped != 1 || s.Queued != 2 {
		t.Errorf("unexpected stats: %+v", s)
	}
	close(release)
}

func TestDispatch_BlockingWaitsForRoom(t *testing.T) {
	d, _ := newTestDispatcher(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var handled atomic.Int32
	d.Register(":JAM:", func(e Event) (any, error) {
		once.Do(func() { close(started) })
		<-release
		handled.Add(1)
		return nil, nil
	}, Buffered(1), Blocking())

	d.Dispatch(Event{Command: ":JAM:"})
	<-started
	d.Dispatch(Event{Command: ":JAM:"})

	done := make(chan struct{})
	go func() {
		d.Dispatch(Event{Command: ":JAM:"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("dispatch should have blocked")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-done
	d.Close()
	if handled.Load() != 3 {
		t.Errorf("expected 3 handled, got %d", handled.Load())
	}
}

func TestDispatch_Logged(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(":SPECIAL:", func(e Event) (any, error) { return "ok", nil }, Logged())
	d.Register(":HIT:", func(e Event) (any, error) { return nil, errors.New("storage down") }, Logged())

	d.Dispatch(Event{Command: ":SPECIAL:", Tick: 3})
	if got := logger.count("DEBUG"); got != 2 {
		t.Errorf("expected 2 debug messages, got %d", got)
	}

	_, err := d.Dispatch(Event{Command: ":HIT:"})
	if err == nil {
		t.Fatal("expected handler error")
	}
	if got := logger.count("ERROR"); got != 1 {
		t.Errorf("expected 1 error message, got %d", got)
	}
	if s := statsFor(d, ":HIT:"); s.Failed != 1 {
		t.Errorf("expected 1 failure, got %+v", s)
	}
}

func TestDispatch_BufferedErrorIsLogged(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(":FIRED:", func(e Event) (any, error) {
		return nil, errors.New("storage down")
	}, Buffered(1))

	d.Dispatch(Event{Command: ":FIRED:", Tick: 9})
	d.Close()

	if got := logger.count("ERROR: buffered event failed"); got != 1 {
		t.Fatalf("expected 1 error message, got %d: %v", got, logger.messages)
	}
}

func TestClose_DrainsAndRejects(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var processed atomic.Int32
	d.Register(":HIT:", func(e Event) (any, error) {
		time.Sleep(time.Millisecond)
		processed.Add(1)
		return nil, nil
	}, Buffered(50), Blocking())

	for i := 0; i < 20; i++ {
		if _, err := d.Dispatch(Event{Command: ":HIT:", Tick: uint64(i)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	d.Close()

	if processed.Load() != 20 {
		t.Errorf("expected 20 processed after close, got %d", processed.Load())
	}
	if _, err := d.Dispatch(Event{Command: ":HIT:"}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	d.Register(":LATE:", func(e Event) (any, error) { return nil, nil }, Buffered(1))
	if d.HasHandler(":LATE:") {
		t.Error("register after close should be ignored")
	}
	d.Close()
}

func TestRegister_ReplacesBufferedHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var first, second atomic.Int32
	d.Register(":FIRED:", func(e Event) (any, error) { first.Add(1); return nil, nil }, Buffered(10), Blocking())
	d.Dispatch(Event{Command: ":FIRED:"})

	d.Register(":FIRED:", func(e Event) (any, error) { second.Add(1); return nil, nil }, Buffered(10), Blocking())
	d.Dispatch(Event{Command: ":FIRED:"})
	d.Close()

	if first.Load() != 1 || second.Load() != 1 {
		t.Errorf("expected one event per handler, got %d and %d", first.Load(), second.Load())
	}
}

func TestStats_SortedByCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)
	noop := func(Event) (any, error) { return nil, nil }
	d.Register(":SLOT:", noop)
	d.Register(":FIRED:", noop)
	d.Register(":HIT:", noop)

	stats := d.Stats()
	if len(stats) != 3 {
		t.Fatalf("expected 3 stats, got %d", len(stats))
	}
	want := []string{":FIRED:", ":HIT:", ":SLOT:"}
	for i, s := range stats {
		if s.Command != want[i] {
			t.Errorf("stats[%d] = %s, want %s", i, s.Command, want[i])
		}
	}
	if !d.HasHandler(":HIT:") || d.HasHandler(":JAM:") {
		t.Error("HasHandler disagrees with registrations")
	}
}
