/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package metrics declares the verifier metrics and the providers that back them.
package metrics

import (
	"time"
)

// Namespace prefixes every verifier metric.
const Namespace = "vpverifier"

// Subsystems group metrics by the layer that records them.
const (
	SubsystemController = "controller"
	SubsystemService    = "service"
	SubsystemSession    = "session"
)

// Metric names, relative to their subsystem.
const (
	AuthorizationResponseSeconds = "authorization_response_seconds"
	PresentationSeconds          = "presentation_verification_seconds"
	PresentationsRejectedTotal   = "presentations_rejected_total"
	VerificationSeconds          = "verification_seconds"
	PolicyEvaluationSeconds      = "policy_evaluation_seconds"
	TransitionsTotal             = "transitions_total"
)

// Label names.
const (
	LabelKind   = "kind"
	LabelEvent  = "event"
	LabelStatus = "status"
)

// Provider owns the lifecycle of a metrics backend. Create starts whatever the backend needs
// (for example a scrape endpoint) and Destroy releases it.
type Provider interface {
	Create() error
	Destroy() error
	Metrics() Metrics
}

// Metrics records verifier activity.
//
//nolint:interfacebloat
type Metrics interface {
	// CheckAuthorizationResponseTime observes one wallet response request end to end.
	CheckAuthorizationResponseTime(value time.Duration)
	// PresentationVerificationTime observes the verification of one presentation.
	PresentationVerificationTime(value time.Duration)
	// PresentationRejected counts a presentation rejected with the given error kind.
	PresentationRejected(kind string)
	// VerificationTime observes the verification of a whole vp_token.
	VerificationTime(value time.Duration)
	PolicyEvaluationTime(value time.Duration)
	SessionTransition(event, status string)
}
