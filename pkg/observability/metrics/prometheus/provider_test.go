/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestProvider(t *testing.T) {
	t.Run("with server", func(t *testing.T) {
		provider := NewPrometheusProvider(NewServer("127.0.0.1:0"))

		require.NoError(t, provider.Create())
		require.NotNil(t, provider.Metrics())
		require.NoError(t, provider.Destroy())
	})

	t.Run("without server", func(t *testing.T) {
		provider := NewPrometheusProvider(nil)

		require.NoError(t, provider.Create())
		require.Same(t, GetMetrics(), provider.Metrics())
		require.NoError(t, provider.Destroy())
	})
}

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	pm, err := NewMetrics(reg)
	require.NoError(t, err)

	pm.CheckAuthorizationResponseTime(time.Second)
	pm.PresentationVerificationTime(time.Millisecond)
	pm.VerificationTime(time.Second)
	pm.PolicyEvaluationTime(time.Millisecond)

	pm.PresentationRejected("expired")
	pm.PresentationRejected("expired")
	pm.SessionTransition("policy_results_available", "SUCCESSFUL")

	require.Equal(t, float64(2), testutil.ToFloat64(pm.rejected.WithLabelValues("expired")))
	require.Equal(t, float64(1),
		testutil.ToFloat64(pm.transitions.WithLabelValues("policy_results_available", "SUCCESSFUL")))
	require.Equal(t, 1, testutil.CollectAndCount(pm.verification))

	t.Run("registering twice fails", func(t *testing.T) {
		_, err = NewMetrics(reg)
		require.ErrorContains(t, err, "register collector")
	})
}

func TestGetMetrics(t *testing.T) {
	require.Same(t, GetMetrics(), GetMetrics())
}
