package workers

import (
	"chat-hub/contract"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"context"
	"log/slog"
	"time"
)

var _ contract.Worker = (*EventFanoutWorker)(nil)

// EventFanoutWorker pushes computed deliveries into per-session sinks.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// durability, or retries: a sink that is gone or full loses the event.
// Within one session, events keep their emission order because a single
// worker drains the delivery channel sequentially.
type EventFanoutWorker struct {
	log         *slog.Logger
	coordinator contract.ICoordinator
	deliveries  chan []event.Delivery
	sinkTimeout time.Duration
}

func NewEventFanoutWorker(
	log *slog.Logger,
	coordinator contract.ICoordinator,
	deliveries chan []event.Delivery,
	sinkTimeout time.Duration) *EventFanoutWorker {
	return &EventFanoutWorker{
		log:         log,
		coordinator: coordinator,
		deliveries:  deliveries,
		sinkTimeout: sinkTimeout,
	}
}

func (w *EventFanoutWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case batch, ok := <-w.deliveries:
			if !ok {
				return nil
			}
			w.Fanout(ctx, batch)
		}
	}
}

// Fanout sends one batch. Sessions that disappeared between computation and
// emission are skipped silently: their cleanup is already in the pipeline.
func (w *EventFanoutWorker) Fanout(ctx context.Context, batch []event.Delivery) {
	for _, d := range batch {
		sink, ok := w.coordinator.Sink(d.SessionID)
		if !ok {
			w.log.Debug("Delivery to a gone session dropped",
				"session_id", d.SessionID, "event", d.Event.EventName())
			continue
		}
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		switch err := sink.Consume(sinkCtx, d.Event); err {
		case nil:
		case errors.ErrSinkOverflow:
			// Backpressure: the client is not draining its connection.
			w.log.Warn("Sink full, shedding event",
				"session_id", d.SessionID, "event", d.Event.EventName())
		default:
			w.log.Debug("Sink refused event",
				"session_id", d.SessionID, "event", d.Event.EventName(), "error", err)
		}
		cancel()
	}
}
