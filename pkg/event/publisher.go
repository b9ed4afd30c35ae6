/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package event

import (
	"context"

	"github.com/trustbloc/vp-verifier/pkg/event/spi"
)

type eventPublisher interface {
	Publish(ctx context.Context, topic string, events ...*spi.Event) error
}

// Publisher publishes events to a fixed topic.
type Publisher struct {
	publisher eventPublisher
	topic     string
}

// NewEventPublisher creates event publisher for the given topic.
func NewEventPublisher(pub eventPublisher, topic string) *Publisher {
	return &Publisher{
		publisher: pub,
		topic:     topic,
	}
}

// Publish publishes events to the publisher's topic.
func (p *Publisher) Publish(ctx context.Context, events ...*spi.Event) error {
	return p.publisher.Publish(ctx, p.topic, events...)
}
