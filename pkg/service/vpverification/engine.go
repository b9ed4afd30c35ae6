/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vpverification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/dcql"
	"github.com/trustbloc/vp-verifier/pkg/doc/vptoken"
	"github.com/trustbloc/vp-verifier/pkg/policy"
	"github.com/trustbloc/vp-verifier/pkg/session"
)

// Config configures the engine.
type Config struct {
	// Verifier verifies single presentations. Defaults to a PresentationVerifier over Registry.
	Verifier presentationVerifier
	Registry validatorRegistry
	// Workers bounds concurrent presentation verifications.
	Workers         int
	PolicyEvaluator policyEvaluator
	Metrics         metricsProvider
	// FailOnAnyPresentationError fails the session on any presentation error, even when the
	// query is fulfilled by the remaining presentations.
	FailOnAnyPresentationError bool
	Now                        func() time.Time
}

// Engine runs the whole verification pipeline for one wallet response.
type Engine struct {
	orchestrator *Orchestrator
	evaluator    policyEvaluator
	metrics      metricsProvider
	strict       bool
}

// New returns a new engine.
func New(config *Config) *Engine {
	verifier := config.Verifier
	if verifier == nil {
		verifier = NewPresentationVerifier(config.Registry, config.Now)
	}

	return &Engine{
		orchestrator: NewOrchestrator(verifier, config.Workers, config.Metrics),
		evaluator:    config.PolicyEvaluator,
		metrics:      config.Metrics,
		strict:       config.FailOnAnyPresentationError,
	}
}

// ExecuteAllVerification verifies the bundle, checks query fulfillment and evaluates the
// session's policies, driving the session through apply. It returns an
// *AggregateVerificationError when the session ends FAILED, and any error apply returns.
func (e *Engine) ExecuteAllVerification(
	ctx context.Context,
	bundle *vptoken.Bundle,
	s *session.Session,
	apply session.ApplyFunc,
) error {
	start := time.Now()

	defer func() {
		if e.metrics != nil {
			e.metrics.VerificationTime(time.Since(start))
		}

		logger.Debugc(ctx, "ExecuteAllVerification", logfields.WithSessionID(s.ID), log.WithDuration(time.Since(start)))
	}()

	result := e.orchestrator.VerifyAll(ctx, bundle, s)

	// The outcome is recorded even when ctx expired during verification.
	applyCtx := context.WithoutCancel(ctx)

	rawToken, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshal vp_token: %w", err)
	}

	presented := result.PresentedMap()

	if _, err = apply(applyCtx, session.EventValidatedPresentationsAvailable, func(sess *session.Session) error {
		if sess.PresentedRawData == nil {
			sess.PresentedRawData = &session.PresentedRawData{}
		}

		sess.PresentedRawData.VPToken = rawToken
		sess.PresentedCredentials = presented

		return nil
	}); err != nil {
		return err
	}

	if result.HasErrors() && (e.strict || errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		return e.fail(applyCtx, s, apply, &AggregateVerificationError{
			Stage:  StagePresentationValidation,
			Event:  session.EventPresentationValidationFailed,
			Result: result,
		})
	}

	if fErr := dcql.CheckFulfillment(s.Query, result.SatisfiedIDs()); fErr != nil {
		logger.Infoc(ctx, "DCQL query not fulfilled", logfields.WithSessionID(s.ID),
			logfields.WithQueryIDs(result.QueryIDs()), log.WithError(fErr))

		var ferr *dcql.FulfillmentError
		if errors.As(fErr, &ferr) {
			for i := range ferr.UnmetSets {
				logger.Debugc(ctx, "Unmet credential set", logfields.WithSessionID(s.ID),
					logfields.WithUnmetCredentialSet(ferr.UnmetSets[i]))
			}
		}

		return e.fail(applyCtx, s, apply, &AggregateVerificationError{
			Stage:       StageDCQLFulfillment,
			Event:       session.EventDCQLFulfillmentCheckFailed,
			Result:      result,
			Fulfillment: fErr,
		})
	}

	if _, err = apply(applyCtx, session.EventPresentationFulfilsDCQLQuery, nil); err != nil {
		return err
	}

	policyResult := e.evaluatePolicies(ctx, s, result)

	updated, err := apply(applyCtx, session.EventPolicyResultsAvailable, func(sess *session.Session) error {
		sess.PolicyResult = policyResult

		if !policyResult.OverallSuccess {
			sess.StatusReason = policyFailureReason(policyResult)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if updated.Status != session.StatusSuccessful {
		return &AggregateVerificationError{
			Stage:        StagePolicy,
			Event:        session.EventPolicyResultsAvailable,
			Result:       result,
			PolicyResult: policyResult,
		}
	}

	logger.Infoc(ctx, "Presentation verification succeeded", logfields.WithSessionID(s.ID),
		logfields.WithQueryIDs(result.QueryIDs()))

	return nil
}

func (e *Engine) evaluatePolicies(ctx context.Context, s *session.Session, result *AggregatedResult) *policy.Result {
	if e.evaluator == nil {
		return &policy.Result{OverallSuccess: true}
	}

	return e.evaluator.Evaluate(ctx, &s.Policies, result.Presented())
}

func (e *Engine) fail(
	ctx context.Context,
	s *session.Session,
	apply session.ApplyFunc,
	verr *AggregateVerificationError,
) error {
	reason := string(verr.Stage)
	if verr.Fulfillment != nil {
		reason = verr.Fulfillment.Error()
	} else if kinds := verr.Kinds(); len(kinds) > 0 {
		reason = fmt.Sprintf("%s: %s", verr.Stage, kinds[0])
	}

	if _, err := apply(ctx, verr.Event, func(sess *session.Session) error {
		sess.StatusReason = reason

		return nil
	}); err != nil {
		return err
	}

	logger.Infoc(ctx, "Presentation verification failed", logfields.WithSessionID(s.ID),
		logfields.WithSessionEvent(string(verr.Event)), log.WithError(verr))

	return verr
}

func policyFailureReason(r *policy.Result) string {
	failed := r.Failed()
	if len(failed) == 0 {
		return "policy evaluation failed"
	}

	return fmt.Sprintf("policy %s failed", failed[0].Policy)
}
