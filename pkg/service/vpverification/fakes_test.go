/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vpverification_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trustbloc/vp-verifier/pkg/dcql"
	"github.com/trustbloc/vp-verifier/pkg/doc/verifiable"
	"github.com/trustbloc/vp-verifier/pkg/session"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

const (
	testClientID = "x509_san_dns:verifier.example.com"
	testOrigin   = "https://verifier.example.com"
	testNonce    = "n-0S6_WzA2Mj"
)

// fakeValidator interprets the presentation string:
//
//	ok[:holder]  valid presentation with one holder bound credential
//	err:<kind>   rejection of the given kind
//	vct:<vct>    valid presentation whose credential has the given vct
//	unbound      valid presentation whose credential is not holder bound
//	empty        presentation without credentials
//	panic        panics
//	slow         waits for the context or 50ms, then succeeds
type fakeValidator struct {
	mu       sync.Mutex
	expected []*validator.Expected
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func (f *fakeValidator) Validate(ctx context.Context, presentation string,
	expected *validator.Expected) (*validator.Presentation, error) {
	f.calls.Add(1)

	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)

	for {
		seen := f.maxSeen.Load()
		if cur <= seen || f.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}

	f.mu.Lock()
	f.expected = append(f.expected, expected)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	format := expected.ClaimsQuery.Format
	cred := validator.Credential{
		Format:            format,
		Issuer:            "https://issuer.example.com",
		ClaimsJSON:        []byte(`{"given_name":"Erika","age_over_18":true}`),
		SignatureVerified: true,
		HolderBound:       true,
	}

	kind, arg, _ := strings.Cut(presentation, ":")

	switch kind {
	case "ok":
		return &validator.Presentation{Format: format, Holder: arg, Credentials: []validator.Credential{cred}}, nil
	case "err":
		return nil, validator.Errorf(validator.ErrorKind(arg), "rejected %s", presentation)
	case "vct":
		cred.Vct = arg

		return &validator.Presentation{Format: format, Credentials: []validator.Credential{cred}}, nil
	case "unbound":
		cred.HolderBound = false

		return &validator.Presentation{Format: format, Credentials: []validator.Credential{cred}}, nil
	case "empty":
		return &validator.Presentation{Format: format}, nil
	case "panic":
		panic("validator exploded")
	case "slow":
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}

		return &validator.Presentation{Format: format, Credentials: []validator.Credential{cred}}, nil
	default:
		return nil, validator.Errorf(validator.KindMalformedPresentation, "unexpected presentation %q", presentation)
	}
}

func (f *fakeValidator) lastExpected() *validator.Expected {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.expected) == 0 {
		return nil
	}

	return f.expected[len(f.expected)-1]
}

func newRegistry(v validator.Validator) *validator.Registry {
	return validator.NewRegistry().
		Register(verifiable.SDJWTVC, v).
		Register(verifiable.MsoMdoc, v).
		Register(verifiable.JwtVCJson, v)
}

func pidQuery() *dcql.Query {
	return &dcql.Query{
		Credentials: []dcql.CredentialQuery{
			{ID: "pid", Format: verifiable.SDJWTVC},
		},
	}
}

func newTestSession(mode session.ResponseMode, q *dcql.Query) *session.Session {
	return &session.Session{
		ID:             "session-1",
		Status:         session.StatusValidating,
		Attempted:      true,
		ClientID:       testClientID,
		ExpectedOrigin: testOrigin,
		Nonce:          testNonce,
		State:          "state-1",
		ResponseURI:    testOrigin + "/response",
		ResponseMode:   mode,
		JWKThumbprint:  []byte{0x01, 0x02, 0x03},
		Query:          q,
	}
}
