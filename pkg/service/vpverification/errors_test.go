/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vpverification_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vp-verifier/pkg/doc/vptoken"
	"github.com/trustbloc/vp-verifier/pkg/policy"
	"github.com/trustbloc/vp-verifier/pkg/service/vpverification"
	"github.com/trustbloc/vp-verifier/pkg/session"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

func TestPresentationError(t *testing.T) {
	pErr := &vpverification.PresentationError{
		QueryID: "pid",
		Index:   2,
		Err:     validator.Errorf(validator.KindExpired, "credential expired"),
	}

	require.Equal(t, "credential query pid presentation 2: expired: credential expired", pErr.Error())
	require.Equal(t, validator.KindExpired, pErr.Kind())
	require.ErrorIs(t, pErr, validator.NewError(validator.KindExpired, nil))

	b, err := json.Marshal(pErr)
	require.NoError(t, err)
	require.JSONEq(t, `{"query_id":"pid","index":2,"kind":"expired","message":"expired: credential expired"}`,
		string(b))
}

func TestAggregateVerificationError(t *testing.T) {
	s := newTestSession(session.ResponseModeDirectPost, multiQuery())

	bundle := &vptoken.Bundle{}
	bundle.Add("diplomas", "err:expired", "ok", "err:signature_invalid", "err:expired")

	result := newOrchestrator(&fakeValidator{}, 2).VerifyAll(context.Background(), bundle, s)

	t.Run("presentation stage", func(t *testing.T) {
		verr := &vpverification.AggregateVerificationError{
			Stage:  vpverification.StagePresentationValidation,
			Event:  session.EventPresentationValidationFailed,
			Result: result,
		}

		require.ErrorIs(t, verr, vpverification.ErrVerificationFailed)
		require.Equal(t, []validator.ErrorKind{validator.KindExpired, validator.KindSignatureInvalid}, verr.Kinds())
		require.Len(t, verr.Unwrap(), 3)
		require.Contains(t, verr.Error(), "at presentation_validation: credential query diplomas presentation 0")
	})

	t.Run("policy stage", func(t *testing.T) {
		verr := &vpverification.AggregateVerificationError{
			Stage: vpverification.StagePolicy,
			PolicyResult: &policy.Result{
				VC: []*policy.Outcome{{Policy: "expired", Scope: policy.ScopeVC, QueryID: "pid", Error: "expired"}},
			},
		}

		require.Equal(t, "presentation verification failed at policy: policy expired (vc pid): expired", verr.Error())
		require.Empty(t, verr.Kinds())
		require.Empty(t, verr.Unwrap())
	})

	t.Run("result json keeps order", func(t *testing.T) {
		b, err := json.Marshal(result)
		require.NoError(t, err)

		var decoded map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(b, &decoded))
		require.Contains(t, decoded, "diplomas")
	})
}
