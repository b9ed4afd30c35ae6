/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package validator declares the format validator capability used to verify a single
// presentation of a vp_token, together with the typed error taxonomy its implementations report.
package validator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/trustbloc/vp-verifier/pkg/dcql"
	"github.com/trustbloc/vp-verifier/pkg/doc/verifiable"
)

// Channel is the OpenID4VP transport the presentation arrived through.
type Channel string

const (
	ChannelRedirect       Channel = "redirect"
	ChannelDirectPost     Channel = "direct_post"
	ChannelDirectPostJWT  Channel = "direct_post_jwt"
	ChannelDCAPI          Channel = "dc_api"
	ChannelDCAPIEncrypted Channel = "dc_api_jwt"
)

// IsDCAPI reports whether the channel is a Digital Credentials API channel.
func (c Channel) IsDCAPI() bool {
	return c == ChannelDCAPI || c == ChannelDCAPIEncrypted
}

// IsEncrypted reports whether the response was encrypted to the verifier, which binds the
// presentation to the verifier's ephemeral key.
func (c Channel) IsEncrypted() bool {
	return c == ChannelDirectPostJWT || c == ChannelDCAPIEncrypted
}

// Expected carries everything a presentation is bound to.
type Expected struct {
	Audience      string
	Nonce         string
	ResponseURI   string
	ClientID      string
	Origin        string
	JWKThumbprint []byte
	Channel       Channel
	ClaimsQuery   *dcql.CredentialQuery
	Now           func() time.Time
}

// Time returns the verification time.
func (e *Expected) Time() time.Time {
	if e.Now == nil {
		return time.Now()
	}

	return e.Now()
}

// Presentation is a successfully verified presentation.
type Presentation struct {
	Format              verifiable.Format `json:"format"`
	Holder              string            `json:"holder,omitempty"`
	HolderKeyThumbprint string            `json:"holder_key_thumbprint,omitempty"`
	Credentials         []Credential      `json:"credentials"`
}

// Credential is a verified credential with its disclosed claims.
type Credential struct {
	Format            verifiable.Format `json:"format"`
	Issuer            string            `json:"issuer,omitempty"`
	Subject           string            `json:"subject,omitempty"`
	Types             []string          `json:"types,omitempty"`
	Vct               string            `json:"vct,omitempty"`
	Doctype           string            `json:"doctype,omitempty"`
	IssuedAt          *time.Time        `json:"issued_at,omitempty"`
	ExpiresAt         *time.Time        `json:"expires_at,omitempty"`
	NotBefore         *time.Time        `json:"not_before,omitempty"`
	Claims            map[string]any    `json:"claims"`
	ClaimsJSON        json.RawMessage   `json:"-"`
	Raw               string            `json:"-"`
	SignatureVerified bool              `json:"signature_verified"`
	HolderBound       bool              `json:"holder_bound"`
}

// Identity returns the values DCQL meta constraints are matched against.
func (c *Credential) Identity() dcql.CredentialIdentity {
	return dcql.CredentialIdentity{
		Vct:     c.Vct,
		Doctype: c.Doctype,
		Types:   c.Types,
	}
}

// Validator verifies one presentation of a single credential format.
type Validator interface {
	Validate(ctx context.Context, presentation string, expected *Expected) (*Presentation, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, presentation string, expected *Expected) (*Presentation, error)

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, presentation string, expected *Expected) (*Presentation, error) {
	return f(ctx, presentation, expected)
}
