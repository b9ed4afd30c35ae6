/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package healthutil_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexliesenfeld/health"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vp-verifier/pkg/observability/health/healthutil"
)

func TestJSONResultWriter_Write(t *testing.T) {
	times := healthutil.NewResponseTimes()

	healthutil.ResponseTimeInterceptor(times)(func(_ context.Context, _ string, state health.CheckState) health.CheckState {
		return state
	})(context.Background(), "redis", health.CheckState{})

	rw := httptest.NewRecorder()

	err := healthutil.NewJSONResultWriter(times, "v1.0.0").Write(&health.CheckerResult{
		Status: health.StatusDown,
		Details: map[string]health.CheckResult{
			"redis":     {Status: health.StatusUp, Timestamp: time.Now()},
			"event-bus": {Status: health.StatusDown, Timestamp: time.Now(), Error: errors.New("not running")},
		},
	}, http.StatusServiceUnavailable, rw, nil)
	require.NoError(t, err)

	require.Equal(t, http.StatusServiceUnavailable, rw.Code)
	require.Equal(t, "application/json", rw.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rw.Header().Get("Cache-Control"))

	var body struct {
		Status     string                            `json:"status"`
		Version    string                            `json:"version"`
		Components map[string]map[string]interface{} `json:"components"`
	}

	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
	require.Equal(t, "down", body.Status)
	require.Equal(t, "v1.0.0", body.Version)
	require.Contains(t, body.Components["redis"], "last_response_time_ms")
	require.Contains(t, body.Components["redis"], "avg_response_time_ms")
	require.NotContains(t, body.Components["redis"], "error")
	require.Equal(t, "not running", body.Components["event-bus"]["error"])
	require.NotContains(t, body.Components["event-bus"], "last_response_time_ms")
}

func TestJSONResultWriter_NoComponents(t *testing.T) {
	rw := httptest.NewRecorder()

	err := healthutil.NewJSONResultWriter(healthutil.NewResponseTimes(), "").Write(
		&health.CheckerResult{Status: health.StatusUp}, http.StatusOK, rw, nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"up"}`, rw.Body.String())
}
