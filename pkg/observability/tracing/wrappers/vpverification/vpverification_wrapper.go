/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination gomocks_test.go -package vpverification . Service

package vpverification

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/vp-verifier/pkg/doc/vptoken"
	"github.com/trustbloc/vp-verifier/pkg/observability/tracing/attributeutil"
	"github.com/trustbloc/vp-verifier/pkg/session"
)

// Service runs the verification of a wallet response.
type Service interface {
	ExecuteAllVerification(ctx context.Context, bundle *vptoken.Bundle, s *session.Session, apply session.ApplyFunc) error
}

// Wrapper traces Service calls.
type Wrapper struct {
	svc    Service
	tracer trace.Tracer
}

func Wrap(svc Service, tracer trace.Tracer) *Wrapper {
	return &Wrapper{svc: svc, tracer: tracer}
}

// ExecuteAllVerification traces the call. Presentations are redacted from the span.
func (w *Wrapper) ExecuteAllVerification(
	ctx context.Context,
	bundle *vptoken.Bundle,
	s *session.Session,
	apply session.ApplyFunc,
) error {
	ctx, span := w.tracer.Start(ctx, "vpverification.ExecuteAllVerification")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", s.ID))
	span.SetAttributes(attribute.String("response_mode", string(s.ResponseMode)))
	span.SetAttributes(attributeutil.PresentationCounts("presentations", bundle))
	span.SetAttributes(attributeutil.RedactedBundle("vp_token", bundle))
	span.SetAttributes(attributeutil.JSON("dcql_query", s.Query))
	span.SetAttributes(attribute.StringSlice("policies", s.Policies.Names()))

	if err := w.svc.ExecuteAllVerification(ctx, bundle, s, apply); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	return nil
}
