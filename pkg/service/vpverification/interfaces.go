/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination gomocks_test.go -self_package mocks -package vpverification_test -source=interfaces.go -mock_names validatorRegistry=MockValidatorRegistry,presentationVerifier=MockPresentationVerifier,policyEvaluator=MockPolicyEvaluator,metricsProvider=MockMetricsProvider

package vpverification

import (
	"context"
	"time"

	"github.com/trustbloc/vp-verifier/pkg/dcql"
	"github.com/trustbloc/vp-verifier/pkg/doc/verifiable"
	"github.com/trustbloc/vp-verifier/pkg/policy"
	"github.com/trustbloc/vp-verifier/pkg/session"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

type validatorRegistry interface {
	Resolve(format verifiable.Format) (validator.Validator, error)
}

type presentationVerifier interface {
	Verify(ctx context.Context, presentation string, cq *dcql.CredentialQuery,
		s *session.Session) (*validator.Presentation, error)
}

type policyEvaluator interface {
	Evaluate(ctx context.Context, set *policy.Set, presented []policy.QueryPresentations) *policy.Result
}

type metricsProvider interface {
	PresentationVerificationTime(value time.Duration)
	PresentationRejected(kind string)
	VerificationTime(value time.Duration)
}
