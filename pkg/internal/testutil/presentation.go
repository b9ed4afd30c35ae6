/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package testutil

import (
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
)

// JWTVC describes a jwt_vc_json credential to issue.
type JWTVC struct {
	Issuer    *Key
	IssuerID  string
	SubjectID string
	Types     []string
	Subject   map[string]interface{}
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssueJWTVC returns a signed VC JWT.
func IssueJWTVC(t *testing.T, vc *JWTVC) string {
	t.Helper()

	subject := map[string]interface{}{}
	for k, v := range vc.Subject {
		subject[k] = v
	}

	if vc.SubjectID != "" {
		subject["id"] = vc.SubjectID
	}

	types := vc.Types
	if len(types) == 0 {
		types = []string{"VerifiableCredential"}
	}

	issuedAt := vc.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now().Add(-time.Hour)
	}

	claims := map[string]interface{}{
		"iss": vc.IssuerID,
		"iat": jwt.NewNumericDate(issuedAt),
		"nbf": jwt.NewNumericDate(issuedAt),
		"vc": map[string]interface{}{
			"@context":          []string{"https://www.w3.org/2018/credentials/v1"},
			"type":              types,
			"issuer":            vc.IssuerID,
			"credentialSubject": subject,
		},
	}

	if vc.SubjectID != "" {
		claims["sub"] = vc.SubjectID
	}

	if !vc.ExpiresAt.IsZero() {
		claims["exp"] = jwt.NewNumericDate(vc.ExpiresAt)
	}

	return SignJWT(t, vc.Issuer, claims)
}

// JWTVP describes a holder signed jwt_vc_json presentation.
type JWTVP struct {
	Holder      *Key
	HolderID    string
	Audience    string
	Nonce       string
	Credentials []string
}

// PresentJWTVP returns a VP JWT signed by the holder with the holder key embedded.
func PresentJWTVP(t *testing.T, vp *JWTVP) string {
	t.Helper()

	now := time.Now()

	claims := map[string]interface{}{
		"iss":   vp.HolderID,
		"aud":   vp.Audience,
		"nonce": vp.Nonce,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(10 * time.Minute)),
		"vp": map[string]interface{}{
			"@context":             []string{"https://www.w3.org/2018/credentials/v1"},
			"type":                 []string{"VerifiablePresentation"},
			"holder":               vp.HolderID,
			"verifiableCredential": vp.Credentials,
		},
	}

	return SignJWT(t, vp.Holder, claims, WithEmbeddedJWK())
}
