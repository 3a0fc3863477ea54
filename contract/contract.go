//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one live connection's receiving end. Consume must never
// block the caller beyond ctx: fanout is fire-and-forget.
type EventSink interface {
	Consume(ctx context.Context, e event.OutboundEvent) error
}

// ICoordinator owns all presence state. Handle applies one inbound command
// and returns the deliveries its side effects produced, computed after the
// mutation so rosters are never stale snapshots.
type ICoordinator interface {
	Connect(sessionID domain.SessionID, sink EventSink)
	Handle(cmd domain.Command) []event.Delivery
	Sink(sessionID domain.SessionID) (EventSink, bool)
}

type IOrchestrator interface {
	Connect(sessionID domain.SessionID, sink EventSink)
	Dispatch(cmd domain.Command)
	Disconnect(sessionID domain.SessionID)
	Start(ctx context.Context) error
	Stop()
}
