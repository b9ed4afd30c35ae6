/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mdoc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vp-verifier/pkg/dcql"
	"github.com/trustbloc/vp-verifier/pkg/doc/verifiable"
	"github.com/trustbloc/vp-verifier/pkg/internal/testutil"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator/mdoc"
)

const (
	mdlDocType  = "org.iso.18013.5.1.mDL"
	mdlNS       = "org.iso.18013.5.1"
	clientID    = "x509_san_dns:verifier.example.com"
	responseURI = "https://verifier.example.com/verification/s1/response"
	origin      = "https://verifier.example.com"
	nonce       = "exc7gBkxjx1rdc9udRrveKvSsJIq80avlXeLHhGwqtA"
)

func newMdoc(t *testing.T) *testutil.Mdoc {
	t.Helper()

	return &testutil.Mdoc{
		Issuer:  testutil.NewKey(t, ""),
		Device:  testutil.NewKey(t, ""),
		DocType: mdlDocType,
		NameSpaces: map[string]map[string]interface{}{
			mdlNS: {
				"family_name":        "Doe",
				"given_name":         "John",
				"age_over_18":        true,
				"driving_privileges": []interface{}{map[string]interface{}{"vehicle_category_code": "B"}},
			},
		},
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidUntil: time.Now().Add(24 * time.Hour),
	}
}

func redirectHandover() *testutil.Handover {
	return &testutil.Handover{ClientID: clientID, ResponseURI: responseURI, Nonce: nonce}
}

func redirectExpected(cq *dcql.CredentialQuery) *validator.Expected {
	return &validator.Expected{
		Audience:    clientID,
		ClientID:    clientID,
		ResponseURI: responseURI,
		Nonce:       nonce,
		Channel:     validator.ChannelDirectPost,
		ClaimsQuery: cq,
	}
}

func mdlQuery() *dcql.CredentialQuery {
	return &dcql.CredentialQuery{
		ID:     "mdl",
		Format: verifiable.MsoMdoc,
		Meta:   &dcql.Meta{DoctypeValue: mdlDocType},
		Claims: []dcql.ClaimsQuery{
			{Path: dcql.ClaimsPath{mdlNS, "family_name"}},
			{Path: dcql.ClaimsPath{mdlNS, "age_over_18"}, Values: []any{true}},
		},
	}
}

func TestValidate(t *testing.T) {
	v := mdoc.New(&mdoc.Config{})

	t.Run("success", func(t *testing.T) {
		m := newMdoc(t)

		p, err := v.Validate(context.Background(), testutil.PresentMdoc(t, m, redirectHandover()), redirectExpected(mdlQuery()))
		require.NoError(t, err)

		require.Equal(t, verifiable.MsoMdoc, p.Format)
		require.NotEmpty(t, p.HolderKeyThumbprint)
		require.Len(t, p.Credentials, 1)

		cred := p.Credentials[0]
		require.Equal(t, mdlDocType, cred.Doctype)
		require.True(t, cred.SignatureVerified)
		require.True(t, cred.HolderBound)

		ns, ok := cred.Claims[mdlNS].(map[string]interface{})
		require.True(t, ok)
		require.Equal(t, "Doe", ns["family_name"])
		require.Equal(t, true, ns["age_over_18"])

		privileges, ok := ns["driving_privileges"].([]interface{})
		require.True(t, ok)
		require.Equal(t, map[string]interface{}{"vehicle_category_code": "B"}, privileges[0])
	})

	t.Run("tagged issuer auth", func(t *testing.T) {
		m := newMdoc(t)
		m.TaggedIssuerAuth = true

		p, err := v.Validate(context.Background(), testutil.PresentMdoc(t, m, redirectHandover()), redirectExpected(mdlQuery()))
		require.NoError(t, err)
		require.Len(t, p.Credentials, 1)
		require.True(t, p.Credentials[0].SignatureVerified)
	})

	t.Run("dc api handover", func(t *testing.T) {
		m := newMdoc(t)
		thumbprint := []byte("ephemeral-key-thumbprint")

		presentation := testutil.PresentMdoc(t, m, &testutil.Handover{
			Origin: origin, Nonce: nonce, JWKThumbprint: thumbprint, DCAPI: true,
		})

		_, err := v.Validate(context.Background(), presentation, &validator.Expected{
			Audience:      "origin:" + origin,
			Origin:        origin,
			Nonce:         nonce,
			JWKThumbprint: thumbprint,
			Channel:       validator.ChannelDCAPIEncrypted,
			ClaimsQuery:   mdlQuery(),
		})
		require.NoError(t, err)
	})

	t.Run("trusted roots", func(t *testing.T) {
		m := newMdoc(t)
		presentation := testutil.PresentMdoc(t, m, redirectHandover())

		_, err := mdoc.New(&mdoc.Config{TrustedRoots: x509Pool(t, testutil.NewKey(t, ""))}).
			Validate(context.Background(), presentation, redirectExpected(nil))
		require.Equal(t, validator.KindSignatureInvalid, validator.KindOf(err))
	})

	tests := []struct {
		name         string
		presentation func(t *testing.T) string
		expected     *validator.Expected
		kind         validator.ErrorKind
	}{
		{
			name:         "not base64",
			presentation: func(t *testing.T) string { return "%%%" },
			expected:     redirectExpected(nil),
			kind:         validator.KindMalformedPresentation,
		},
		{
			name:         "not cbor",
			presentation: func(t *testing.T) string { return "AAAA" },
			expected:     redirectExpected(nil),
			kind:         validator.KindMalformedPresentation,
		},
		{
			name: "tampered element",
			presentation: func(t *testing.T) string {
				m := newMdoc(t)
				m.TamperElement = "given_name"

				return testutil.PresentMdoc(t, m, redirectHandover())
			},
			expected: redirectExpected(nil),
			kind:     validator.KindSignatureInvalid,
		},
		{
			name: "issuer auth signed by a key other than the x5chain leaf",
			presentation: func(t *testing.T) string {
				m := newMdoc(t)
				m.CertKey = testutil.NewKey(t, "")

				return testutil.PresentMdoc(t, m, redirectHandover())
			},
			expected: redirectExpected(nil),
			kind:     validator.KindSignatureInvalid,
		},
		{
			name: "expired mso",
			presentation: func(t *testing.T) string {
				m := newMdoc(t)
				m.ValidFrom = time.Now().Add(-48 * time.Hour)
				m.ValidUntil = time.Now().Add(-24 * time.Hour)

				return testutil.PresentMdoc(t, m, redirectHandover())
			},
			expected: redirectExpected(nil),
			kind:     validator.KindExpired,
		},
		{
			name: "different nonce in session transcript",
			presentation: func(t *testing.T) string {
				h := redirectHandover()
				h.Nonce = "other"

				return testutil.PresentMdoc(t, newMdoc(t), h)
			},
			expected: redirectExpected(nil),
			kind:     validator.KindHolderBindingFailed,
		},
		{
			name: "doctype mismatch",
			presentation: func(t *testing.T) string {
				m := newMdoc(t)
				m.DocType = "eu.europa.ec.eudi.pid.1"

				return testutil.PresentMdoc(t, m, redirectHandover())
			},
			expected: redirectExpected(mdlQuery()),
			kind:     validator.KindCredentialTypeMismatch,
		},
		{
			name: "disallowed value",
			presentation: func(t *testing.T) string {
				m := newMdoc(t)
				m.NameSpaces[mdlNS]["age_over_18"] = false

				return testutil.PresentMdoc(t, m, redirectHandover())
			},
			expected: redirectExpected(mdlQuery()),
			kind:     validator.KindDisallowedValue,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate(context.Background(), tc.presentation(t), tc.expected)
			require.Error(t, err)
			require.Equal(t, tc.kind, validator.KindOf(err), err.Error())
		})
	}
}

func TestSessionTranscript(t *testing.T) {
	h := redirectHandover()

	transcript, err := mdoc.SessionTranscript(redirectExpected(nil))
	require.NoError(t, err)
	require.Equal(t, testutil.SessionTranscript(t, h), transcript)

	dcAPI, err := mdoc.SessionTranscript(&validator.Expected{Origin: origin, Nonce: nonce, Channel: validator.ChannelDCAPI})
	require.NoError(t, err)
	require.Equal(t, testutil.SessionTranscript(t, &testutil.Handover{Origin: origin, Nonce: nonce, DCAPI: true}), dcAPI)
	require.NotEqual(t, transcript, dcAPI)
}
