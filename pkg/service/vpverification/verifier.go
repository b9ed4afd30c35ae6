/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vpverification

import (
	"context"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/dcql"
	"github.com/trustbloc/vp-verifier/pkg/session"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

var logger = log.New("vp-verification")

// PresentationVerifier verifies one presentation against a credential query and the session
// it was requested in.
type PresentationVerifier struct {
	registry validatorRegistry
	now      func() time.Time
}

// NewPresentationVerifier returns a verifier resolving format validators from registry.
func NewPresentationVerifier(registry validatorRegistry, now func() time.Time) *PresentationVerifier {
	if now == nil {
		now = time.Now
	}

	return &PresentationVerifier{registry: registry, now: now}
}

// Verify validates the presentation for cq. The returned error is always a *validator.Error.
// The session is read only. A session without a nonce panics with ErrMissingNonce.
func (v *PresentationVerifier) Verify(
	ctx context.Context,
	presentation string,
	cq *dcql.CredentialQuery,
	s *session.Session,
) (*validator.Presentation, error) {
	if s.Nonce == "" {
		panic(ErrMissingNonce)
	}

	expected := v.expected(cq, s)

	p, vErr := v.verify(ctx, presentation, cq, expected)
	if vErr != nil {
		logger.Infoc(ctx, "Presentation rejected", logfields.WithSessionID(s.ID), logfields.WithQueryID(cq.ID),
			logfields.WithFormat(string(cq.Format)), logfields.WithAudience(expected.Audience), log.WithError(vErr))

		return nil, vErr
	}

	logger.Debugc(ctx, "Presentation verified", logfields.WithSessionID(s.ID), logfields.WithQueryID(cq.ID),
		logfields.WithFormat(string(cq.Format)))

	return p, nil
}

func (v *PresentationVerifier) verify(
	ctx context.Context,
	presentation string,
	cq *dcql.CredentialQuery,
	expected *validator.Expected,
) (*validator.Presentation, *validator.Error) {
	fv, err := v.registry.Resolve(cq.Format)
	if err != nil {
		return nil, validator.AsError(err, validator.KindUnsupportedFormat)
	}

	p, err := fv.Validate(ctx, presentation, expected)
	if err != nil {
		return nil, validator.AsError(err, validator.KindInternal)
	}

	if p == nil {
		return nil, validator.Errorf(validator.KindInternal, "validator returned no presentation")
	}

	if qErr := validator.CheckPresentationQuery(cq, p); qErr != nil {
		return nil, qErr
	}

	return p, nil
}

func (v *PresentationVerifier) expected(cq *dcql.CredentialQuery, s *session.Session) *validator.Expected {
	channel := s.ResponseMode.Channel()

	expected := &validator.Expected{
		Audience:    s.Audience(),
		Nonce:       s.Nonce,
		ResponseURI: s.ResponseURI,
		ClientID:    s.ClientID,
		Origin:      s.ExpectedOrigin,
		Channel:     channel,
		ClaimsQuery: cq,
		Now:         v.now,
	}

	if channel.IsEncrypted() {
		expected.JWKThumbprint = s.JWKThumbprint
	}

	return expected
}
