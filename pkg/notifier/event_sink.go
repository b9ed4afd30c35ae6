/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package notifier

import (
	"context"
	"fmt"

	"github.com/trustbloc/vp-verifier/pkg/event/spi"
)

type eventPublisher interface {
	Publish(ctx context.Context, topic string, events ...*spi.Event) error
}

// EventSink publishes session events to an event bus topic.
type EventSink struct {
	publisher eventPublisher
	topic     string
}

// NewEventSink returns a sink publishing to the given topic.
func NewEventSink(publisher eventPublisher, topic string) *EventSink {
	if topic == "" {
		topic = spi.SessionEventTopic
	}

	return &EventSink{publisher: publisher, topic: topic}
}

// Send publishes the event.
func (s *EventSink) Send(ctx context.Context, event *spi.Event) error {
	if err := s.publisher.Publish(ctx, s.topic, event); err != nil {
		return fmt.Errorf("publish event to topic %s: %w", s.topic, err)
	}

	return nil
}
