/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package notifier delivers session lifecycle events to the relying party's sinks.
package notifier

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel/propagation"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/event/spi"
	"github.com/trustbloc/vp-verifier/pkg/session"
)

var logger = log.New("notifier")

// Sink receives session events.
type Sink interface {
	Send(ctx context.Context, event *spi.Event) error
}

// MultiSink fans session events out to every sink. Delivery failures are logged and never
// reported back to the caller.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink returns a fan-out over the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Notify builds the event envelope for the snapshot and sends it to every sink.
func (m *MultiSink) Notify(ctx context.Context, sessionID string, event session.Event, snapshot *session.Snapshot) {
	e, err := NewSessionEvent(sessionID, event, snapshot)
	if err != nil {
		logger.Warnc(ctx, "Failed to create session event", logfields.WithSessionID(sessionID),
			logfields.WithSessionEvent(string(event)), log.WithError(err))

		return
	}

	e.Tracing = traceParent(ctx)

	for _, sink := range m.sinks {
		if err = sink.Send(ctx, e); err != nil {
			logger.Warnc(ctx, "Failed to deliver session event", logfields.WithSessionID(sessionID),
				logfields.WithSessionEvent(string(event)), log.WithError(err))
		}
	}
}

// traceParent returns the W3C traceparent of the span in ctx, or an empty string.
func traceParent(ctx context.Context) string {
	carrier := propagation.MapCarrier{}
	propagation.TraceContext{}.Inject(ctx, carrier)

	return carrier.Get("traceparent")
}

// NewSessionEvent wraps a session snapshot into an event envelope.
func NewSessionEvent(sessionID string, event session.Event, snapshot *session.Snapshot) (*spi.Event, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	e := spi.NewEventWithPayload(uuid.NewString(), spi.SessionEventSource, spi.EventType(event), payload)
	e.TransactionID = sessionID

	return e, nil
}
