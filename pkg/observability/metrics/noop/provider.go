/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package noop discards every metric. It is used when no metrics provider is configured.
package noop

import (
	"time"

	"github.com/trustbloc/vp-verifier/pkg/observability/metrics"
)

// Provider is a metrics provider without a backend.
type Provider struct{}

// NewProvider returns a provider whose metrics are discarded.
func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Create() error  { return nil }
func (p *Provider) Destroy() error { return nil }

// Metrics returns the shared no-op metrics.
func (p *Provider) Metrics() metrics.Metrics {
	return GetMetrics()
}

type discard struct{}

// GetMetrics returns metrics that record nothing.
func GetMetrics() metrics.Metrics {
	return discard{}
}

func (discard) CheckAuthorizationResponseTime(time.Duration) {}
func (discard) PresentationVerificationTime(time.Duration)   {}
func (discard) PresentationRejected(string)                  {}
func (discard) VerificationTime(time.Duration)               {}
func (discard) PolicyEvaluationTime(time.Duration)           {}
func (discard) SessionTransition(string, string)             {}
