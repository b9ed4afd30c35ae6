/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package spi_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vp-verifier/pkg/event/spi"
)

func TestNewEvent(t *testing.T) {
	e := spi.NewEvent("id", spi.SessionEventSource, spi.SessionAttemptedPresentation)

	require.Equal(t, "1.0", e.SpecVersion)
	require.Equal(t, "id", e.ID)
	require.NotNil(t, e.Time)
	require.Empty(t, e.DataContentType)
	require.Nil(t, e.Data)
}

func TestNewEventWithPayload(t *testing.T) {
	e := spi.NewEventWithPayload("id", spi.SessionEventSource, spi.SessionPolicyResultsAvailable,
		[]byte(`{"status":"SUCCESSFUL"}`))

	require.Equal(t, "application/json", e.DataContentType)

	b, err := json.Marshal(e)
	require.NoError(t, err)
	require.Contains(t, string(b), `"data":{"status":"SUCCESSFUL"}`)
	require.Contains(t, string(b), `"type":"policy_results_available"`)
}

func TestEvent_Copy(t *testing.T) {
	e := spi.NewEventWithPayload("id", spi.SessionEventSource, spi.SessionPolicyResultsAvailable, []byte("{}"))
	e.TransactionID = "session-1"
	e.Tracing = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

	c := e.Copy()
	require.Equal(t, e, c)
	require.NotSame(t, e.Time, c.Time)

	c.Data[0] = '['
	require.Equal(t, json.RawMessage("{}"), e.Data)

	require.Nil(t, spi.NewEvent("id", spi.SessionEventSource, spi.SessionAttemptedPresentation).Copy().Data)
}
