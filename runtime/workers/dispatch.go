package workers

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"log/slog"
)

// Ensure *DispatchWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*DispatchWorker)(nil)

// DispatchWorker is the single consumer of the inbound command channel.
// Running exactly one keeps the coordinator's command stream totally
// ordered, so a disconnect racing an in-flight join for the same user
// resolves to one consistent terminal state.
type DispatchWorker struct {
	coordinator contract.ICoordinator
	commands    chan domain.Command
	deliveries  chan []event.Delivery
	log         *slog.Logger
}

func NewDispatchWorker(
	coordinator contract.ICoordinator,
	commands chan domain.Command,
	deliveries chan []event.Delivery,
	log *slog.Logger) *DispatchWorker {
	return &DispatchWorker{
		coordinator: coordinator,
		commands:    commands,
		deliveries:  deliveries,
		log:         log,
	}
}

func (w *DispatchWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Command channel is closed")
				return nil
			}
			deliveries := w.coordinator.Handle(cmd)
			if len(deliveries) == 0 {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case w.deliveries <- deliveries:
			}
		}
	}
}
