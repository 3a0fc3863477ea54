// Package sink provides the per-connection receiving ends the fanout
// worker writes into.
package sink

import (
	"chat-hub/domain/event"
	"chat-hub/errors"
	"context"
)

// SessionSink buffers outbound events for one transport connection.
// The websocket write pump drains Events in order.
type SessionSink struct {
	Events chan event.OutboundEvent
}

func NewSessionSink(bufferSize int) *SessionSink {
	return &SessionSink{Events: make(chan event.OutboundEvent, bufferSize)}
}

// Consume is called by the fanout worker. A full buffer means the client
// is not keeping up; the event is shed rather than stalling the fanout of
// everyone else, and ErrSinkOverflow tells the caller shedding happened.
// History is durably reconstructed from storage on reconnect, so transient
// loss is non-fatal.
func (s *SessionSink) Consume(ctx context.Context, e event.OutboundEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkOverflow
	}
}
