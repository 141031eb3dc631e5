package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/starwake/engine/internal/dispatcher"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type instruments struct {
	queueDepth metric.Int64ObservableGauge
	processed  metric.Int64Counter
	dropped    metric.Int64Counter
}

// init creates the dispatcher instruments on m. observe reports queue depths
// whenever the gauge is collected.
func (in *instruments) init(m metric.Meter, observe func(metric.Observer, metric.Int64ObservableGauge)) error {
	var err error
	in.queueDepth, err = m.Int64ObservableGauge("starwake.dispatcher.queue.depth",
		metric.WithDescription("Events waiting in a buffered handler queue"))
	if err != nil {
		return fmt.Errorf("creating queue depth gauge: %w", err)
	}
	_, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		observe(o, in.queueDepth)
		return nil
	}, in.queueDepth)
	if err != nil {
		return fmt.Errorf("registering queue callback: %w", err)
	}
	in.processed, err = m.Int64Counter("starwake.dispatcher.events.processed",
		metric.WithDescription("Events handled, including failures"))
	if err != nil {
		return fmt.Errorf("creating processed counter: %w", err)
	}
	in.dropped, err = m.Int64Counter("starwake.dispatcher.events.dropped",
		metric.WithDescription("Events dropped by a full non-blocking queue"))
	if err != nil {
		return fmt.Errorf("creating dropped counter: %w", err)
	}
	return nil
}
