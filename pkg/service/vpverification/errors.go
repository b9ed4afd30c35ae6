/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vpverification

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/trustbloc/vp-verifier/pkg/policy"
	"github.com/trustbloc/vp-verifier/pkg/session"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

var (
	// ErrMissingNonce is the panic value raised when a session without a nonce is verified.
	ErrMissingNonce = errors.New("verification session has no nonce")
	// ErrVerificationFailed is matched by every *AggregateVerificationError.
	ErrVerificationFailed = errors.New("presentation verification failed")
)

// PresentationError is the rejection of one submitted presentation.
type PresentationError struct {
	QueryID string
	// Index is the position of the presentation in the submitted list for QueryID.
	Index int
	Err   *validator.Error
}

func (e *PresentationError) Error() string {
	return fmt.Sprintf("credential query %s presentation %d: %s", e.QueryID, e.Index, e.Err.Error())
}

func (e *PresentationError) Unwrap() error {
	return e.Err
}

// Kind returns the error kind.
func (e *PresentationError) Kind() validator.ErrorKind {
	return e.Err.Kind
}

type presentationErrorJSON struct {
	QueryID string              `json:"query_id"`
	Index   int                 `json:"index"`
	Kind    validator.ErrorKind `json:"kind"`
	Message string              `json:"message"`
}

// MarshalJSON writes the error as {query_id, index, kind, message}.
func (e *PresentationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&presentationErrorJSON{
		QueryID: e.QueryID,
		Index:   e.Index,
		Kind:    e.Err.Kind,
		Message: e.Err.Error(),
	})
}

// Stage names the step of the verification pipeline that failed.
type Stage string

const (
	StagePresentationValidation Stage = "presentation_validation"
	StageDCQLFulfillment        Stage = "dcql_fulfillment"
	StagePolicy                 Stage = "policy"
)

// AggregateVerificationError is returned by ExecuteAllVerification when the session failed.
// It carries every per-presentation error, the fulfillment error and the policy result that
// led to the failure.
type AggregateVerificationError struct {
	Stage        Stage
	Event        session.Event
	Result       *AggregatedResult
	Fulfillment  error
	PolicyResult *policy.Result
}

func (e *AggregateVerificationError) Error() string {
	var details []string

	if e.Result != nil {
		for _, pErr := range e.Result.Errors() {
			details = append(details, pErr.Error())
		}
	}

	if e.Fulfillment != nil {
		details = append(details, e.Fulfillment.Error())
	}

	if e.PolicyResult != nil {
		for _, o := range e.PolicyResult.Failed() {
			details = append(details, fmt.Sprintf("policy %s (%s %s): %s", o.Policy, o.Scope, o.QueryID, o.Error))
		}
	}

	msg := fmt.Sprintf("%s at %s", ErrVerificationFailed, e.Stage)

	if len(details) == 0 {
		return msg
	}

	return msg + ": " + strings.Join(details, "; ")
}

// Is matches ErrVerificationFailed.
func (e *AggregateVerificationError) Is(target error) bool {
	return target == ErrVerificationFailed //nolint:errorlint
}

// Unwrap exposes the presentation errors and the fulfillment error to errors.Is and errors.As.
func (e *AggregateVerificationError) Unwrap() []error {
	var errs []error

	if e.Result != nil {
		for _, pErr := range e.Result.Errors() {
			errs = append(errs, pErr)
		}
	}

	if e.Fulfillment != nil {
		errs = append(errs, e.Fulfillment)
	}

	return errs
}

// Kinds returns the distinct presentation error kinds in order of first occurrence.
func (e *AggregateVerificationError) Kinds() []validator.ErrorKind {
	var kinds []validator.ErrorKind

	if e.Result == nil {
		return nil
	}

	seen := map[validator.ErrorKind]struct{}{}

	for _, pErr := range e.Result.Errors() {
		if _, ok := seen[pErr.Kind()]; ok {
			continue
		}

		seen[pErr.Kind()] = struct{}{}
		kinds = append(kinds, pErr.Kind())
	}

	return kinds
}
