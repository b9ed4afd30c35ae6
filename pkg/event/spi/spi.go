/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package spi defines the envelope of verification session events.
package spi

import (
	"bytes"
	"encoding/json"
	"time"
)

const (
	// SessionEventTopic is the topic verification session events are published to.
	SessionEventTopic = "vp-verifier-session"

	// SessionEventSource identifies the verifier as the event producer.
	SessionEventSource = "source://vp-verifier/session"

	specVersion     = "1.0"
	jsonContentType = "application/json"
)

// EventType names a session lifecycle change.
type EventType string

const (
	SessionAttemptedPresentation           = EventType("attempted_presentation")
	SessionValidatedPresentationsAvailable = EventType("validated_presentations_available")
	SessionPresentationValidationFailed    = EventType("presentation_validation_failed")
	SessionDCQLFulfillmentCheckFailed      = EventType("dcql_fulfillment_check_failed")
	SessionPresentationFulfilsDCQLQuery    = EventType("presentation_fulfils_dcql_query")
	SessionPolicyResultsAvailable          = EventType("policy_results_available")
)

// Event is a CloudEvents style envelope. For session events TransactionID carries the session
// ID, Data the session snapshot and Tracing the W3C traceparent of the request that caused it.
type Event struct {
	SpecVersion     string          `json:"specVersion"`
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	Type            EventType       `json:"type"`
	Time            *time.Time      `json:"time"`
	DataContentType string          `json:"dataContentType,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
	TransactionID   string          `json:"txnId,omitempty"`
	Subject         string          `json:"subject,omitempty"`
	Tracing         string          `json:"tracing,omitempty"`
}

// Copy returns an event that shares nothing mutable with e, so each subscriber may modify
// its own instance.
func (e *Event) Copy() *Event {
	c := *e

	if e.Time != nil {
		t := *e.Time
		c.Time = &t
	}

	if e.Data != nil {
		c.Data = bytes.Clone(e.Data)
	}

	return &c
}

// NewEventWithPayload returns an event carrying a JSON payload.
func NewEventWithPayload(id, source string, eventType EventType, payload json.RawMessage) *Event {
	e := NewEvent(id, source, eventType)
	e.Data = payload
	e.DataContentType = jsonContentType

	return e
}

// NewEvent returns an event without payload, stamped with the current UTC time.
func NewEvent(id, source string, eventType EventType) *Event {
	now := time.Now().UTC()

	return &Event{
		SpecVersion: specVersion,
		ID:          id,
		Source:      source,
		Type:        eventType,
		Time:        &now,
	}
}
