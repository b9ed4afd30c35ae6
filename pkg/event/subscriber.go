/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package event

import (
	"context"
	"fmt"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/event/spi"
	"github.com/trustbloc/vp-verifier/pkg/lifecycle"
)

// Handler handles a received event.
type Handler func(event *spi.Event) error

//go:generate mockgen -destination gomocks_test.go -package event -source=subscriber.go -mock_names eventSubscriber=MockEventSubscriber

type eventSubscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *spi.Event, error)
}

// Subscriber implements an event subscriber.
type Subscriber struct {
	*lifecycle.Lifecycle

	subscriber eventSubscriber
	handler    Handler

	eventChan <-chan *spi.Event
	done      chan struct{}
}

// NewEventSubscriber returns a new subscriber.
func NewEventSubscriber(sub eventSubscriber, topic string, handler Handler) (*Subscriber, error) {
	h := &Subscriber{
		subscriber: sub,
		handler:    handler,
		done:       make(chan struct{}),
	}

	h.Lifecycle = lifecycle.New("event-subscriber",
		lifecycle.WithStart(h.start),
	)

	logger.Debug("subscribing to topic", logfields.WithTopic(topic))

	ch, err := sub.Subscribe(context.Background(), topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe to topic [%s]: %w", topic, err)
	}

	h.eventChan = ch

	return h, nil
}

// Done is closed once the event channel was closed and the listener has exited.
func (h *Subscriber) Done() <-chan struct{} {
	return h.done
}

func (h *Subscriber) start() {
	go h.listen()
}

func (h *Subscriber) listen() {
	defer close(h.done)

	logger.Debug("starting event listener...")

	for e := range h.eventChan {
		logger.Debug("received new event", logfields.WithEvent(e))

		h.handleEvent(e)
	}

	logger.Info("event channel closed")
}

func (h *Subscriber) handleEvent(e *spi.Event) {
	err := h.handler(e)
	if err != nil {
		logger.Error("failed to handle event", logfields.WithEvent(e), log.WithError(err))
	}
}

// LogHandler logs every received event.
func LogHandler(e *spi.Event) error {
	logger.Info("handling event", logfields.WithEvent(e))

	return nil
}
