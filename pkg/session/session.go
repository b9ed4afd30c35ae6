/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package session holds the verification session and the state machine that drives it.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/trustbloc/vp-verifier/pkg/dcql"
	"github.com/trustbloc/vp-verifier/pkg/policy"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

var (
	// ErrDataNotFound is returned by stores when a session does not exist.
	ErrDataNotFound = errors.New("data not found")
	// ErrAlreadyAttempted is returned when a second response is submitted for a session.
	ErrAlreadyAttempted = errors.New("presentation already attempted")
	// ErrInvalidTransition is returned when an event would move the session along an edge that
	// does not exist in the state graph.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrTerminalState is the panic value (wrapped in *TerminalStateError) raised when an event
	// is applied to a session that already reached a terminal status.
	ErrTerminalState = errors.New("session is in a terminal state")
)

// Status is the lifecycle status of a verification session.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusValidating Status = "VALIDATING"
	StatusSuccessful Status = "SUCCESSFUL"
	StatusFailed     Status = "FAILED"
)

// IsTerminal reports whether no further event may be applied.
func (s Status) IsTerminal() bool {
	return s == StatusSuccessful || s == StatusFailed
}

// Event is a session lifecycle event.
type Event string

const (
	EventAttemptedPresentation           Event = "attempted_presentation"
	EventValidatedPresentationsAvailable Event = "validated_presentations_available"
	EventPresentationValidationFailed    Event = "presentation_validation_failed"
	EventDCQLFulfillmentCheckFailed      Event = "dcql_fulfillment_check_failed"
	EventPresentationFulfilsDCQLQuery    Event = "presentation_fulfils_dcql_query"
	EventPolicyResultsAvailable          Event = "policy_results_available"
)

// ResponseMode is the OpenID4VP response mode the session was created for.
type ResponseMode string

const (
	ResponseModeDirectPost    ResponseMode = "direct_post"
	ResponseModeDirectPostJWT ResponseMode = "direct_post.jwt"
	ResponseModeDCAPI         ResponseMode = "dc_api"
	ResponseModeDCAPIJWT      ResponseMode = "dc_api.jwt"
)

// Channel maps the response mode to the transport channel presentations are bound to.
func (m ResponseMode) Channel() validator.Channel {
	switch m {
	case ResponseModeDirectPostJWT:
		return validator.ChannelDirectPostJWT
	case ResponseModeDCAPI:
		return validator.ChannelDCAPI
	case ResponseModeDCAPIJWT:
		return validator.ChannelDCAPIEncrypted
	default:
		return validator.ChannelDirectPost
	}
}

// Validate checks that the response mode is supported.
func (m ResponseMode) Validate() error {
	switch m {
	case ResponseModeDirectPost, ResponseModeDirectPostJWT, ResponseModeDCAPI, ResponseModeDCAPIJWT:
		return nil
	default:
		return fmt.Errorf("unsupported response mode %q", m)
	}
}

// Redirects are returned to the wallet once the response was processed.
type Redirects struct {
	SuccessRedirectURI string `json:"success_redirect_uri,omitempty"`
	ErrorRedirectURI   string `json:"error_redirect_uri,omitempty"`
}

// PresentedRawData is the raw wallet response.
type PresentedRawData struct {
	VPToken json.RawMessage `json:"vp_token,omitempty"`
	State   string          `json:"state,omitempty"`
}

// Session is a verification session.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	Status    Status `json:"status"`
	Attempted bool   `json:"attempted"`

	ClientID       string       `json:"client_id"`
	ExpectedOrigin string       `json:"expected_origin,omitempty"`
	Nonce          string       `json:"nonce"`
	State          string       `json:"state,omitempty"`
	ResponseURI    string       `json:"response_uri,omitempty"`
	ResponseMode   ResponseMode `json:"response_mode"`
	JWKThumbprint  []byte       `json:"jwk_thumbprint,omitempty"`

	Query    *dcql.Query `json:"dcql_query"`
	Policies policy.Set  `json:"policies"`

	PolicyResult         *policy.Result                       `json:"policy_results,omitempty"`
	PresentedRawData     *PresentedRawData                    `json:"presented_raw_data,omitempty"`
	PresentedCredentials map[string][]*validator.Presentation `json:"presented_credentials,omitempty"`
	StatusReason         string                               `json:"status_reason,omitempty"`

	Redirects *Redirects `json:"redirects,omitempty"`
}

// Audience is the audience presentations must be bound to: the origin for Digital Credentials
// API channels, the client ID otherwise.
func (s *Session) Audience() string {
	if s.ResponseMode.Channel().IsDCAPI() {
		return "origin:" + s.ExpectedOrigin
	}

	return s.ClientID
}

// IsExpired reports whether the session can no longer accept a response.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// TerminalStateError is raised (as a panic) when an event targets a terminal session.
type TerminalStateError struct {
	SessionID string
	Status    Status
	Event     Event
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("apply %s to session %s: status %s: %s", e.Event, e.SessionID, e.Status, ErrTerminalState)
}

// Is matches ErrTerminalState.
func (e *TerminalStateError) Is(target error) bool {
	return target == ErrTerminalState
}
