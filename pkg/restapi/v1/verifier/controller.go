/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination gomocks_test.go -self_package mocks -package verifier_test -source=controller.go -mock_names sessionService=MockSessionService,verificationService=MockVerificationService,policyValidator=MockPolicyValidator,metricsProvider=MockMetricsProvider

package verifier

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/dcql"
	"github.com/trustbloc/vp-verifier/pkg/doc/vptoken"
	noopMetricsProvider "github.com/trustbloc/vp-verifier/pkg/observability/metrics/noop"
	"github.com/trustbloc/vp-verifier/pkg/observability/tracing/attributeutil"
	"github.com/trustbloc/vp-verifier/pkg/policy"
	"github.com/trustbloc/vp-verifier/pkg/restapi/resterr"
	"github.com/trustbloc/vp-verifier/pkg/restapi/resterr/oidc4vp"
	"github.com/trustbloc/vp-verifier/pkg/restapi/v1/util"
	"github.com/trustbloc/vp-verifier/pkg/service/vpverification"
	"github.com/trustbloc/vp-verifier/pkg/session"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

const (
	vpTokenParam  = "vp_token"
	stateParam    = "state"
	responseParam = "response"

	responseStatusReceived = "received"
)

var logger = log.New("verifier-restapi")

type sessionService interface {
	Create(ctx context.Context, req *session.CreateRequest) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	ApplyEvent(ctx context.Context, id string, event session.Event,
		mutate func(*session.Session) error) (*session.Session, error)
}

type verificationService interface {
	ExecuteAllVerification(ctx context.Context, bundle *vptoken.Bundle, s *session.Session,
		apply session.ApplyFunc) error
}

type policyValidator interface {
	Validate(set *policy.Set) error
}

type metricsProvider interface {
	CheckAuthorizationResponseTime(value time.Duration)
}

// Config configures the controller.
type Config struct {
	SessionSvc      sessionService
	VerificationSvc verificationService
	PolicyRegistry  policyValidator
	Metrics         metricsProvider
	Tracer          trace.Tracer
	// ExternalURL is the public base URL of the verifier. Session response URIs are derived from it
	// unless the relying party supplies its own.
	ExternalURL string
	// DefaultClientID is used for sessions created without a client_id.
	DefaultClientID string
	Now             func() time.Time
}

// Controller exposes the verification session API.
type Controller struct {
	sessionSvc      sessionService
	verificationSvc verificationService
	policyRegistry  policyValidator
	metrics         metricsProvider
	tracer          trace.Tracer
	externalURL     string
	defaultClientID string
	now             func() time.Time
}

// NewController returns a new controller.
func NewController(config *Config) *Controller {
	c := &Controller{
		sessionSvc:      config.SessionSvc,
		verificationSvc: config.VerificationSvc,
		policyRegistry:  config.PolicyRegistry,
		metrics:         config.Metrics,
		tracer:          config.Tracer,
		externalURL:     strings.TrimSuffix(config.ExternalURL, "/"),
		defaultClientID: config.DefaultClientID,
		now:             config.Now,
	}

	if c.metrics == nil {
		c.metrics = noopMetricsProvider.GetMetrics()
	}

	if c.tracer == nil {
		c.tracer = trace.NewNoopTracerProvider().Tracer("")
	}

	if c.now == nil {
		c.now = time.Now
	}

	return c
}

// InitiateVerificationRequest is the relying party's request to start a verification session.
type InitiateVerificationRequest struct {
	ClientID           string               `json:"client_id,omitempty"`
	ResponseMode       session.ResponseMode `json:"response_mode,omitempty"`
	ExpectedOrigin     string               `json:"expected_origin,omitempty"`
	ResponseURI        string               `json:"response_uri,omitempty"`
	JWKThumbprint      string               `json:"jwk_thumbprint,omitempty"`
	DCQLQuery          json.RawMessage      `json:"dcql_query"`
	Policies           *policy.Set          `json:"policies,omitempty"`
	SuccessRedirectURI string               `json:"success_redirect_uri,omitempty"`
	ErrorRedirectURI   string               `json:"error_redirect_uri,omitempty"`
}

// InitiateVerificationResponse carries the values the relying party embeds in its authorization
// request.
type InitiateVerificationResponse struct {
	SessionID    string               `json:"session_id"`
	Nonce        string               `json:"nonce"`
	State        string               `json:"state"`
	ClientID     string               `json:"client_id"`
	ResponseURI  string               `json:"response_uri,omitempty"`
	ResponseMode session.ResponseMode `json:"response_mode"`
	ExpiresAt    time.Time            `json:"expires_at"`
}

// AuthorizationResponseResult is returned to the wallet once its response was processed.
type AuthorizationResponseResult struct {
	Status      string `json:"status,omitempty"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

// InitiateVerification creates a verification session.
// POST /verification.
func (c *Controller) InitiateVerification(e echo.Context) error {
	ctx := e.Request().Context()

	var body InitiateVerificationRequest

	if err := util.ReadBody(e, &body); err != nil {
		return err
	}

	req, err := c.createRequest(&body)
	if err != nil {
		return err
	}

	s, err := c.sessionSvc.Create(ctx, req)
	if err != nil {
		return resterr.NewSystemError(resterr.SessionSvcComponent, "create-session", err)
	}

	logger.Infoc(ctx, "Verification session initiated", logfields.WithSessionID(s.ID),
		logfields.WithQueryIDs(s.Query.IDs()))

	return util.WriteOutputWithCode(http.StatusCreated, e)(&InitiateVerificationResponse{
		SessionID:    s.ID,
		Nonce:        s.Nonce,
		State:        s.State,
		ClientID:     s.ClientID,
		ResponseURI:  s.ResponseURI,
		ResponseMode: s.ResponseMode,
		ExpiresAt:    s.ExpiresAt,
	}, nil)
}

func (c *Controller) createRequest(body *InitiateVerificationRequest) (*session.CreateRequest, error) {
	if len(body.DCQLQuery) == 0 {
		return nil, resterr.NewValidationError(resterr.InvalidValue, "dcql_query", errors.New("value is missed"))
	}

	query, err := dcql.Parse(body.DCQLQuery)
	if err != nil {
		return nil, resterr.NewValidationError(resterr.InvalidValue, "dcql_query", err)
	}

	policies := policy.Set{}

	if body.Policies != nil {
		policies = *body.Policies

		if c.policyRegistry != nil {
			if err = c.policyRegistry.Validate(&policies); err != nil {
				return nil, resterr.NewValidationError(resterr.InvalidValue, "policies", err)
			}
		}
	}

	mode := body.ResponseMode
	if mode == "" {
		mode = session.ResponseModeDirectPost
	}

	if err = mode.Validate(); err != nil {
		return nil, resterr.NewValidationError(resterr.InvalidValue, "response_mode", err)
	}

	if mode.Channel().IsDCAPI() && body.ExpectedOrigin == "" {
		return nil, resterr.NewValidationError(resterr.InvalidValue, "expected_origin",
			fmt.Errorf("value is required for response mode %s", mode))
	}

	var thumbprint []byte

	if body.JWKThumbprint != "" {
		if thumbprint, err = base64.RawURLEncoding.DecodeString(body.JWKThumbprint); err != nil {
			return nil, resterr.NewValidationError(resterr.InvalidValue, "jwk_thumbprint", err)
		}
	}

	id := uuid.NewString()

	responseURI := body.ResponseURI
	if responseURI == "" && !mode.Channel().IsDCAPI() {
		responseURI = c.externalURL + "/verification/" + id + "/response"
	}

	req := &session.CreateRequest{
		ID:             id,
		ClientID:       lo.Ternary(body.ClientID != "", body.ClientID, c.defaultClientID),
		ExpectedOrigin: body.ExpectedOrigin,
		ResponseURI:    responseURI,
		ResponseMode:   mode,
		JWKThumbprint:  thumbprint,
		Query:          query,
		Policies:       policies,
	}

	if body.SuccessRedirectURI != "" || body.ErrorRedirectURI != "" {
		req.Redirects = &session.Redirects{
			SuccessRedirectURI: body.SuccessRedirectURI,
			ErrorRedirectURI:   body.ErrorRedirectURI,
		}
	}

	if req.ClientID == "" {
		return nil, resterr.NewValidationError(resterr.InvalidValue, "client_id", errors.New("value is missed"))
	}

	return req, nil
}

// CheckAuthorizationResponse receives the wallet's direct_post response and runs the
// verification pipeline for it.
// POST /verification/{sessionID}/response.
func (c *Controller) CheckAuthorizationResponse(e echo.Context, sessionID string) error {
	startTime := time.Now()

	defer func() {
		c.metrics.CheckAuthorizationResponseTime(time.Since(startTime))
		logger.Debug("CheckAuthorizationResponse end", log.WithDuration(time.Since(startTime)))
	}()

	ctx, span := c.tracer.Start(e.Request().Context(), "verifier.CheckAuthorizationResponse")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	resp, err := c.checkAuthorizationResponse(ctx, e, sessionID, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	return util.WriteOutput(e)(resp, nil)
}

func (c *Controller) checkAuthorizationResponse(
	ctx context.Context,
	e echo.Context,
	sessionID string,
	span trace.Span,
) (*AuthorizationResponseResult, error) {
	vpToken, state, err := readAuthorizationResponse(e)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attributeutil.FormParams("form", e.Request().PostForm,
		attributeutil.WithRedacted(vpTokenParam)))

	s, err := c.accessSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if s.Attempted {
		return nil, oidc4vp.NewInvalidSessionStateError(session.ErrAlreadyAttempted).UsePublicAPIResponse()
	}

	if s.IsExpired(c.now()) {
		return nil, oidc4vp.NewInvalidSessionStateError(errors.New("session expired")).UsePublicAPIResponse()
	}

	if subtle.ConstantTimeCompare([]byte(s.State), []byte(state)) != 1 {
		return nil, oidc4vp.NewInvalidRequestError(errors.New("state does not match the session")).
			UsePublicAPIResponse()
	}

	bundle, err := vptoken.Parse([]byte(vpToken))
	if err != nil {
		return nil, oidc4vp.NewInvalidRequestError(fmt.Errorf("malformed vp_token: %w", err)).UsePublicAPIResponse()
	}

	span.SetAttributes(attributeutil.PresentationCounts("presentations", bundle))

	s, err = c.sessionSvc.ApplyEvent(ctx, sessionID, session.EventAttemptedPresentation,
		func(sess *session.Session) error {
			sess.PresentedRawData = &session.PresentedRawData{State: state}

			return nil
		})
	if err != nil {
		if errors.Is(err, session.ErrAlreadyAttempted) {
			return nil, oidc4vp.NewInvalidSessionStateError(err).UsePublicAPIResponse()
		}

		return nil, resterr.NewSystemError(resterr.SessionSvcComponent, "apply-attempted-presentation", err)
	}

	apply := func(ctx context.Context, event session.Event, mutate func(*session.Session) error) (*session.Session, error) {
		return c.sessionSvc.ApplyEvent(ctx, sessionID, event, mutate)
	}

	err = c.verificationSvc.ExecuteAllVerification(ctx, bundle, s, apply)
	if err != nil {
		var verr *vpverification.AggregateVerificationError
		if !errors.As(err, &verr) {
			c.failSession(ctx, sessionID, err)

			return nil, resterr.NewSystemError(resterr.VerificationEngineComponent, "execute-verification", err)
		}

		logger.Infoc(ctx, "Presentation rejected", logfields.WithSessionID(sessionID), log.WithError(err))

		if s.Redirects != nil && s.Redirects.ErrorRedirectURI != "" {
			return &AuthorizationResponseResult{RedirectURI: s.Redirects.ErrorRedirectURI}, nil
		}

		return nil, publicVerificationError(verr)
	}

	if s.Redirects != nil && s.Redirects.SuccessRedirectURI != "" {
		return &AuthorizationResponseResult{RedirectURI: s.Redirects.SuccessRedirectURI}, nil
	}

	return &AuthorizationResponseResult{Status: responseStatusReceived}, nil
}

// failSession moves a session the engine could not finish to FAILED.
func (c *Controller) failSession(ctx context.Context, sessionID string, cause error) {
	ctx = context.WithoutCancel(ctx)

	s, err := c.sessionSvc.Get(ctx, sessionID)
	if err != nil {
		logger.Errorc(ctx, "Failed to mark session as failed", logfields.WithSessionID(sessionID),
			log.WithError(err))

		return
	}

	if s.Status.IsTerminal() {
		return
	}

	_, err = c.sessionSvc.ApplyEvent(ctx, sessionID, session.EventPresentationValidationFailed,
		func(sess *session.Session) error {
			sess.StatusReason = "verification error: " + cause.Error()

			return nil
		})
	if err != nil {
		logger.Errorc(ctx, "Failed to mark session as failed", logfields.WithSessionID(sessionID),
			log.WithError(err))
	}
}

// GetVerificationInfo returns the session snapshot.
// GET /verification/{sessionID}/info.
func (c *Controller) GetVerificationInfo(e echo.Context, sessionID string) error {
	ctx := e.Request().Context()

	s, err := c.accessSession(ctx, sessionID)
	if err != nil {
		return err
	}

	snapshot, err := session.NewSnapshot(s)
	if err != nil {
		return resterr.NewSystemError(resterr.SessionSvcComponent, "snapshot-session", err)
	}

	return util.WriteOutput(e)(snapshot, nil)
}

func (c *Controller) accessSession(ctx context.Context, sessionID string) (*session.Session, error) {
	s, err := c.sessionSvc.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrDataNotFound) {
			return nil, oidc4vp.NewSessionNotFoundError(fmt.Errorf("session %s not found", sessionID)).
				UsePublicAPIResponse()
		}

		return nil, resterr.NewSystemError(resterr.SessionStoreComponent, "get-session", err)
	}

	return s, nil
}

func readAuthorizationResponse(e echo.Context) (string, string, error) {
	form, err := util.ReadForm(e)
	if err != nil {
		return "", "", oidc4vp.NewInvalidRequestError(err).UsePublicAPIResponse()
	}

	if form.Get(responseParam) != "" {
		return "", "", oidc4vp.NewInvalidRequestError(
			errors.New("encrypted responses are not accepted by this endpoint")).UsePublicAPIResponse()
	}

	vpToken := form.Get(vpTokenParam)
	if vpToken == "" {
		return "", "", oidc4vp.NewInvalidRequestError(errors.New("vp_token is missed")).UsePublicAPIResponse()
	}

	return vpToken, form.Get(stateParam), nil
}

// publicVerificationError maps a failed verification to an error safe to return to the wallet.
// Only error kinds are exposed, never the underlying cryptographic error text.
func publicVerificationError(verr *vpverification.AggregateVerificationError) error {
	switch verr.Stage {
	case vpverification.StagePolicy:
		return oidc4vp.NewAccessDeniedError(errors.New("policy check failed")).UsePublicAPIResponse()
	case vpverification.StageDCQLFulfillment:
		return oidc4vp.NewInvalidPresentationError(errors.New("dcql query not fulfilled")).UsePublicAPIResponse()
	default:
		kinds := lo.Map(verr.Kinds(), func(k validator.ErrorKind, _ int) string { return string(k) })

		return oidc4vp.NewInvalidPresentationError(
			fmt.Errorf("presentation rejected: %s", strings.Join(kinds, ","))).UsePublicAPIResponse()
	}
}
