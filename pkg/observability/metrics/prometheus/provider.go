/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package prometheus records verifier metrics in Prometheus collectors.
package prometheus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/observability/metrics"
)

var logger = log.New("metrics-provider")

var (
	defaultOnce    sync.Once    //nolint:gochecknoglobals
	defaultMetrics *PromMetrics //nolint:gochecknoglobals
)

// Provider serves the default registry from an optional HTTP server.
type Provider struct {
	server *http.Server
}

// NewPrometheusProvider returns a provider. A nil server records metrics without exposing them,
// which suits deployments where the default registry is scraped through another endpoint.
func NewPrometheusProvider(server *http.Server) *Provider {
	return &Provider{server: server}
}

// Create starts the metrics server in the background.
func (p *Provider) Create() error {
	if p.server == nil {
		return nil
	}

	go func() {
		logger.Info("Starting metrics server", log.WithURL(p.server.Addr))

		if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", log.WithError(err))
		}
	}()

	return nil
}

// Metrics returns the process wide Prometheus metrics.
func (p *Provider) Metrics() metrics.Metrics {
	return GetMetrics()
}

// Destroy shuts the metrics server down.
func (p *Provider) Destroy() error {
	if p.server == nil {
		return nil
	}

	return p.server.Shutdown(context.Background())
}

// GetMetrics returns the metrics registered with the default registry. Collectors are registered
// once per process.
func GetMetrics() metrics.Metrics {
	defaultOnce.Do(func() {
		m, err := NewMetrics(prometheus.DefaultRegisterer)
		if err != nil {
			panic(err)
		}

		defaultMetrics = m
	})

	return defaultMetrics
}

// PromMetrics implements metrics.Metrics with Prometheus histograms and counters.
type PromMetrics struct {
	authorizationResponse prometheus.Histogram
	presentation          prometheus.Histogram
	rejected              *prometheus.CounterVec
	verification          prometheus.Histogram
	policyEvaluation      prometheus.Histogram
	transitions           *prometheus.CounterVec
}

// NewMetrics creates the verifier collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*PromMetrics, error) {
	pm := &PromMetrics{
		authorizationResponse: histogram(metrics.SubsystemController, metrics.AuthorizationResponseSeconds,
			"Time to handle a wallet authorization response."),
		presentation: histogram(metrics.SubsystemService, metrics.PresentationSeconds,
			"Time to verify one presentation."),
		rejected: counterVec(metrics.SubsystemService, metrics.PresentationsRejectedTotal,
			"Rejected presentations by error kind.", metrics.LabelKind),
		verification: histogram(metrics.SubsystemService, metrics.VerificationSeconds,
			"Time to verify a whole vp_token."),
		policyEvaluation: histogram(metrics.SubsystemService, metrics.PolicyEvaluationSeconds,
			"Time to evaluate the policies of a session."),
		transitions: counterVec(metrics.SubsystemSession, metrics.TransitionsTotal,
			"Applied session events by resulting status.", metrics.LabelEvent, metrics.LabelStatus),
	}

	for _, c := range []prometheus.Collector{
		pm.authorizationResponse, pm.presentation, pm.rejected,
		pm.verification, pm.policyEvaluation, pm.transitions,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	return pm, nil
}

func (pm *PromMetrics) CheckAuthorizationResponseTime(value time.Duration) {
	pm.authorizationResponse.Observe(value.Seconds())

	logger.Debug("Authorization response handled", log.WithDuration(value))
}

func (pm *PromMetrics) PresentationVerificationTime(value time.Duration) {
	pm.presentation.Observe(value.Seconds())
}

func (pm *PromMetrics) PresentationRejected(kind string) {
	pm.rejected.WithLabelValues(kind).Inc()
}

func (pm *PromMetrics) VerificationTime(value time.Duration) {
	pm.verification.Observe(value.Seconds())

	logger.Debug("vp_token verified", log.WithDuration(value))
}

func (pm *PromMetrics) PolicyEvaluationTime(value time.Duration) {
	pm.policyEvaluation.Observe(value.Seconds())
}

func (pm *PromMetrics) SessionTransition(event, status string) {
	pm.transitions.WithLabelValues(event, status).Inc()

	logger.Debug("Session transition", logfields.WithSessionEvent(event), logfields.WithSessionStatus(status))
}

func counterVec(subsystem, name, help string, labelNames ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labelNames)
}

func histogram(subsystem, name, help string) prometheus.Histogram {
	return prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 9), //nolint:gomnd
	})
}
