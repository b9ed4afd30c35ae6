/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package noop_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vp-verifier/pkg/observability/metrics"
	"github.com/trustbloc/vp-verifier/pkg/observability/metrics/noop"
)

func TestProvider(t *testing.T) {
	var p metrics.Provider = noop.NewProvider()

	require.NoError(t, p.Create())
	require.NoError(t, p.Destroy())

	m := p.Metrics()
	require.NotNil(t, m)

	require.NotPanics(t, func() {
		m.CheckAuthorizationResponseTime(time.Second)
		m.PresentationVerificationTime(time.Millisecond)
		m.PresentationRejected("expired")
		m.VerificationTime(time.Second)
		m.PolicyEvaluationTime(time.Millisecond)
		m.SessionTransition("attempted_presentation", "VALIDATING")
	})
}
