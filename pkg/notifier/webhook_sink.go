/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/event/spi"
)

const (
	defaultMaxRetries      = 3
	defaultInitialInterval = 200 * time.Millisecond
	defaultMaxInterval     = 5 * time.Second
)

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookConfig configures a webhook sink.
type WebhookConfig struct {
	URL             string
	HTTPClient      httpClient
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// WebhookSink posts session events to a relying party endpoint, retrying with exponential
// backoff. Client errors (4xx) are not retried.
type WebhookSink struct {
	url             string
	client          httpClient
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
}

// NewWebhookSink returns a webhook sink.
func NewWebhookSink(config *WebhookConfig) *WebhookSink {
	s := &WebhookSink{
		url:             config.URL,
		client:          config.HTTPClient,
		maxRetries:      config.MaxRetries,
		initialInterval: config.InitialInterval,
		maxInterval:     config.MaxInterval,
	}

	if s.client == nil {
		s.client = http.DefaultClient
	}

	if s.maxRetries == 0 {
		s.maxRetries = defaultMaxRetries
	}

	if s.initialInterval <= 0 {
		s.initialInterval = defaultInitialInterval
	}

	if s.maxInterval <= 0 {
		s.maxInterval = defaultMaxInterval
	}

	return s
}

// Send posts the event as JSON.
func (s *WebhookSink) Send(ctx context.Context, event *spi.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialInterval
	b.MaxInterval = s.maxInterval

	return backoff.RetryNotify(
		func() error {
			return s.post(ctx, body)
		},
		backoff.WithContext(backoff.WithMaxRetries(b, s.maxRetries), ctx),
		func(retryErr error, d time.Duration) {
			logger.Debugc(ctx, "Webhook delivery failed, will retry", log.WithURL(s.url),
				logfields.WithSessionID(event.TransactionID), log.WithDuration(d), log.WithError(retryErr))
		},
	)
}

func (s *WebhookSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return nil
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		return backoff.Permanent(fmt.Errorf("webhook rejected event: status %d", resp.StatusCode))
	default:
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
}
