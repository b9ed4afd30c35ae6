/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/trustbloc/logutil-go/pkg/log"
)

const maxWebhookResponseSize = 1 << 20

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type webhookArgs struct {
	URL string `json:"url"`
}

func (a *webhookArgs) UnmarshalJSON(b []byte) error {
	var url string
	if err := json.Unmarshal(b, &url); err == nil {
		a.URL = url

		return nil
	}

	type plain webhookArgs

	return json.Unmarshal(b, (*plain)(a))
}

type webhookRequest struct {
	Policy     string      `json:"policy"`
	QueryID    string      `json:"query_id"`
	Issuer     string      `json:"issuer,omitempty"`
	Format     string      `json:"format"`
	Credential interface{} `json:"credential"`
}

// WebhookPolicy posts the disclosed claims to a URL; any 2xx response passes.
type WebhookPolicy struct {
	client httpClient
}

// NewWebhookPolicy returns a webhook policy using client.
func NewWebhookPolicy(client httpClient) *WebhookPolicy {
	return &WebhookPolicy{client: client}
}

func (*WebhookPolicy) Name() string    { return "webhook" }
func (*WebhookPolicy) Scopes() []Scope { return vcOnly }

func (p *WebhookPolicy) Run(ctx context.Context, args json.RawMessage, in *Input) (interface{}, error) {
	var a webhookArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	if a.URL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}

	body, err := json.Marshal(&webhookRequest{
		Policy:     p.Name(),
		QueryID:    in.QueryID,
		Issuer:     in.Credential.Issuer,
		Format:     string(in.Credential.Format),
		Credential: in.Credential.Claims,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal webhook request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook %s: %w", a.URL, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warnc(ctx, "failed to close webhook response body", log.WithError(closeErr))
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxWebhookResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}

	var result interface{}
	if len(respBody) > 0 && json.Valid(respBody) {
		result = json.RawMessage(respBody)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return result, fmt.Errorf("webhook %s responded with status %d", a.URL, resp.StatusCode)
	}

	return result, nil
}
