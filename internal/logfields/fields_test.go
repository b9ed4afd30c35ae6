/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logfields

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trustbloc/logutil-go/pkg/log"
)

func TestStandardFields(t *testing.T) {
	const (
		module = "test_module"
	)

	t.Run("json fields", func(t *testing.T) {
		stdOut := newMockWriter()

		logger := log.New(module, log.WithStdOut(stdOut), log.WithEncoding(log.JSON))

		event := &mockObject{
			Field1: "event1",
			Field2: 123,
		}
		sleep := time.Second * 10
		unmet := &mockObject{
			Field1: "set",
			Field2: 1,
		}

		logger.Info(
			"Some message",
			WithAdditionalMessage("some additional message"),
			WithAudience("origin:https://verifier.example.com"),
			WithComponent("event-bus"),
			WithCredentialIndex(2),
			WithEvent(event),
			WithFormat("dc+sd-jwt"),
			WithJSONSchemaID("someSchemaID"),
			WithPolicyName("expiration"),
			WithPolicyScope("vc"),
			WithPresentationCount(3),
			WithPresentationIndex(1),
			WithQueryID("pid"),
			WithQueryIDs([]string{"pid", "mdl"}),
			WithSessionEvent("policy_results_available"),
			WithSessionID("session-1"),
			WithSessionStatus("SUCCESSFUL"),
			WithSleep(sleep),
			WithRoute("/verification"),
			WithState("started"),
			WithTopic("vp-verifier-session"),
			WithUserLogLevel("INFO"),
			WithWorkers(5),
			WithResponseMode("direct_post"),
			WithUnmetCredentialSet(unmet),
		)

		l := unmarshalLogData(t, stdOut.Bytes())

		require.Equal(t, "some additional message", l.AdditionalMessage)
		require.Equal(t, "origin:https://verifier.example.com", l.Audience)
		require.Equal(t, "event-bus", l.Component)
		require.Equal(t, 2, l.CredentialIndex)
		require.Equal(t, event, l.Event)
		require.Equal(t, "dc+sd-jwt", l.Format)
		require.Equal(t, "someSchemaID", l.JSONSchemaID)
		require.Equal(t, "expiration", l.Policy)
		require.Equal(t, "vc", l.PolicyScope)
		require.Equal(t, 3, l.PresentationCount)
		require.Equal(t, 1, l.PresentationIndex)
		require.Equal(t, "pid", l.QueryID)
		require.Equal(t, []string{"pid", "mdl"}, l.QueryIDs)
		require.Equal(t, "policy_results_available", l.SessionEvent)
		require.Equal(t, "session-1", l.SessionID)
		require.Equal(t, "SUCCESSFUL", l.SessionStatus)
		require.Equal(t, sleep.String(), l.Sleep)
		require.Equal(t, "/verification", l.Route)
		require.Equal(t, "started", l.State)
		require.Equal(t, "vp-verifier-session", l.Topic)
		require.Equal(t, "INFO", l.UserLogLevel)
		require.Equal(t, 5, l.Workers)
		require.Equal(t, "direct_post", l.ResponseMode)
		require.Equal(t, unmet, l.UnmetCredentialSet)
	})
}

type mockObject struct {
	Field1 string
	Field2 int
}

type logData struct {
	Level  string `json:"level"`
	Time   string `json:"time"`
	Logger string `json:"logger"`
	Caller string `json:"caller"`
	Msg    string `json:"msg"`
	Error  string `json:"error"`

	AdditionalMessage  string      `json:"additionalMessage"`
	Audience           string      `json:"audience"`
	Component          string      `json:"component"`
	CredentialIndex    int         `json:"credentialIndex"`
	Event              *mockObject `json:"event"`
	Format             string      `json:"format"`
	JSONSchemaID       string      `json:"jsonSchemaID"`
	Policy             string      `json:"policy"`
	PolicyScope        string      `json:"policyScope"`
	PresentationCount  int         `json:"presentationCount"`
	PresentationIndex  int         `json:"presentationIndex"`
	QueryID            string      `json:"queryID"`
	QueryIDs           []string    `json:"queryIDs"`
	SessionEvent       string      `json:"sessionEvent"`
	SessionID          string      `json:"sessionID"`
	SessionStatus      string      `json:"sessionStatus"`
	Sleep              string      `json:"sleep"`
	Route              string      `json:"route"`
	State              string      `json:"state"`
	Topic              string      `json:"topic"`
	UserLogLevel       string      `json:"userLogLevel"`
	Workers            int         `json:"workers"`
	ResponseMode       string      `json:"responseMode"`
	UnmetCredentialSet *mockObject `json:"unmetCredentialSet"`
}

func unmarshalLogData(t *testing.T, b []byte) *logData {
	t.Helper()

	l := &logData{}

	require.NoError(t, json.Unmarshal(b, l))

	return l
}

type mockWriter struct {
	*bytes.Buffer
}

func (m *mockWriter) Sync() error {
	return nil
}

func newMockWriter() *mockWriter {
	return &mockWriter{Buffer: bytes.NewBuffer(nil)}
}
