/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"net/http"
	"time"

	"github.com/trustbloc/vp-verifier/pkg/doc/validator/jsonschema"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

// RegistryOpt customizes NewDefaultRegistry.
type RegistryOpt func(o *registryOpts)

type registryOpts struct {
	now        func() time.Time
	httpClient httpClient
	statusKeys *validator.IssuerKeys
}

// WithClock sets the time source of the time based policies.
func WithClock(now func() time.Time) RegistryOpt {
	return func(o *registryOpts) {
		o.now = now
	}
}

// WithStatusListKeys sets the keys status list signatures are verified with. Without them status
// lists are read unverified.
func WithStatusListKeys(keys *validator.IssuerKeys) RegistryOpt {
	return func(o *registryOpts) {
		o.statusKeys = keys
	}
}

// WithHTTPClient sets the client the webhook and status list policies use.
func WithHTTPClient(client httpClient) RegistryOpt {
	return func(o *registryOpts) {
		o.httpClient = client
	}
}

// NewDefaultRegistry returns a registry with the built-in policies.
func NewDefaultRegistry(opts ...RegistryOpt) (*Registry, error) {
	o := &registryOpts{
		now:        time.Now,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		opt(o)
	}

	celPolicy, err := NewCELPolicy()
	if err != nil {
		return nil, err
	}

	return NewRegistry().
		Register(SignaturePolicy{}).
		Register(ExpiredPolicy{now: o.now}).
		Register(NotBeforePolicy{now: o.now}).
		Register(AllowedIssuerPolicy{}).
		Register(RegexPolicy{}).
		Register(SchemaPolicy{validator: jsonschema.NewCache()}).
		Register(NewWebhookPolicy(o.httpClient)).
		Register(HolderBindingPolicy{}).
		Register(MinimumCredentialsPolicy{}).
		Register(MaximumCredentialsPolicy{}).
		Register(NewRevokedStatusListPolicy(o.httpClient, o.statusKeys, o.now)).
		Register(NewCredentialStatusPolicy(o.httpClient, o.statusKeys, o.now)).
		Register(celPolicy), nil
}
