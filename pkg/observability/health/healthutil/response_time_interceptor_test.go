/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package healthutil_test

import (
	"context"
	"testing"
	"time"

	"github.com/alexliesenfeld/health"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vp-verifier/pkg/observability/health/healthutil"
)

func TestResponseTimeInterceptor(t *testing.T) {
	times := healthutil.NewResponseTimes()

	_, ok := times.Get("redis")
	require.False(t, ok)

	calls := 0
	delays := []time.Duration{10 * time.Millisecond, 30 * time.Millisecond}

	next := func(_ context.Context, name string, state health.CheckState) health.CheckState {
		require.Equal(t, "redis", name)
		time.Sleep(delays[calls])
		calls++

		return state
	}

	run := healthutil.ResponseTimeInterceptor(times)(next)

	run(context.Background(), "redis", health.CheckState{})

	first, ok := times.Get("redis")
	require.True(t, ok)
	require.GreaterOrEqual(t, first.LastResponseTime, 10*time.Millisecond)
	require.Equal(t, first.LastResponseTime, first.AverageResponseTime)

	run(context.Background(), "redis", health.CheckState{})

	second, _ := times.Get("redis")
	require.GreaterOrEqual(t, second.LastResponseTime, 30*time.Millisecond)
	require.Equal(t, (first.AverageResponseTime+second.LastResponseTime)/2, second.AverageResponseTime)
	require.Equal(t, 2, calls)
}
