// Package runtime owns presence state and event propagation. It orchestrates
// the command pipeline without containing transport or storage logic.
package runtime

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"time"
)

var _ contract.IOrchestrator = (*Orchestrator)(nil)

// Orchestrator wires the pipeline: inbound commands flow through one
// dispatch worker into the coordinator, whose deliveries a fanout worker
// pushes into per-session sinks. All workers run under the supervisor.
type Orchestrator struct {
	log               *slog.Logger
	supervisor        contract.ISupervisor
	coordinator       *Coordinator
	commands          chan domain.Command
	deliveries        chan []event.Delivery
	sinkTimeout       time.Duration
	telemetryInterval time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	coordinator *Coordinator, bufferSize int,
	sinkTimeout, telemetryInterval time.Duration) *Orchestrator {
	return &Orchestrator{
		log:               log,
		supervisor:        supervisor,
		coordinator:       coordinator,
		commands:          make(chan domain.Command, bufferSize),
		deliveries:        make(chan []event.Delivery, bufferSize),
		sinkTimeout:       sinkTimeout,
		telemetryInterval: telemetryInterval,
	}
}

// Connect attaches a new transport session synchronously: the sink must be
// reachable before any command referencing the session enters the pipeline.
func (o *Orchestrator) Connect(sessionID domain.SessionID, sink contract.EventSink) {
	o.coordinator.Connect(sessionID, sink)
}

// Dispatch hands a command to the pipeline. Commands that mutate presence
// state block until accepted: dropping a join or leave would desync rosters
// for the rest of the session. Pure fanout commands (typing, messages) shed
// on a full pipeline instead, delivery there is best-effort at-most-once.
func (o *Orchestrator) Dispatch(cmd domain.Command) {
	switch cmd.(type) {
	case domain.AddUserCommand, domain.JoinRoomCommand, domain.LeaveRoomCommand:
		o.commands <- cmd
	default:
		select {
		case o.commands <- cmd:
		default:
			o.log.Warn(fmt.Sprintf("Command channel full, dropping %s", cmd.CommandName()))
		}
	}
}

// Disconnect enqueues the session teardown. Unlike Dispatch it blocks until
// accepted: dropping a disconnect would leak presence entries, and the
// command must serialize behind any in-flight join for the same user.
func (o *Orchestrator) Disconnect(sessionID domain.SessionID) {
	o.commands <- domain.DisconnectCommand{SessionID: sessionID}
}

// Start registers all workers and launches the supervision loop.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.supervisor.Add(
		workers.NewDispatchWorker(o.coordinator, o.commands, o.deliveries, o.log),
		workers.NewEventFanoutWorker(o.log, o.coordinator, o.deliveries, o.sinkTimeout),
		workers.NewTelemetryWorker(o.log, o.coordinator, o.telemetryInterval),
	)

	o.log.Info("Starting orchestrator and all supervised workers")
	go o.supervisor.Run(ctx)
	return nil
}

// Stop initiates a graceful shutdown by canceling the supervised context.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
