/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package testutil

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/require"
)

// SDJWT describes a dc+sd-jwt credential to issue. Every Disclosed claim is selectively
// disclosable at the top level; Plain claims are always visible.
type SDJWT struct {
	Issuer    *Key
	IssuerID  string
	Vct       string
	Holder    *Key
	Disclosed map[string]interface{}
	Plain     map[string]interface{}
	ExpiresAt time.Time
	// SDAlg overrides the _sd_alg claim. Digests are always SHA-256.
	SDAlg string
}

// IssuedSDJWT is an issued SD-JWT with its disclosures keyed by claim name.
type IssuedSDJWT struct {
	IssuerJWT   string
	Disclosures map[string]string
}

// Combined returns the issuer jwt followed by the named disclosures, ready for a key binding jwt.
// All disclosures are included when names is empty.
func (s *IssuedSDJWT) Combined(names ...string) string {
	if len(names) == 0 {
		for name := range s.Disclosures {
			names = append(names, name)
		}

		sort.Strings(names)
	}

	var b strings.Builder

	b.WriteString(s.IssuerJWT)
	b.WriteString("~")

	for _, n := range names {
		b.WriteString(s.Disclosures[n])
		b.WriteString("~")
	}

	return b.String()
}

// IssueSDJWT returns a signed SD-JWT VC.
func IssueSDJWT(t *testing.T, sd *SDJWT) *IssuedSDJWT {
	t.Helper()

	issued := &IssuedSDJWT{Disclosures: map[string]string{}}

	var digests []string

	for name, value := range sd.Disclosed {
		d := Disclosure(t, name, value)

		issued.Disclosures[name] = d
		digests = append(digests, DisclosureDigest(d))
	}

	sort.Strings(digests)

	now := time.Now()

	claims := map[string]interface{}{
		"iss":     sd.IssuerID,
		"vct":     sd.Vct,
		"iat":     jwt.NewNumericDate(now.Add(-time.Hour)),
		"_sd":     digests,
		"_sd_alg": "sha-256",
	}

	if sd.SDAlg != "" {
		claims["_sd_alg"] = sd.SDAlg
	}

	for k, v := range sd.Plain {
		claims[k] = v
	}

	if sd.Holder != nil {
		claims["cnf"] = map[string]interface{}{"jwk": sd.Holder.PublicJWK()}
	}

	if !sd.ExpiresAt.IsZero() {
		claims["exp"] = jwt.NewNumericDate(sd.ExpiresAt)
	}

	issued.IssuerJWT = SignJWT(t, sd.Issuer, claims, WithHeader(jose.HeaderType, "dc+sd-jwt"))

	return issued
}

// Disclosure encodes an object property disclosure.
func Disclosure(t *testing.T, name string, value interface{}) string {
	t.Helper()

	salt := make([]byte, 16)
	_, err := rand.Read(salt)
	require.NoError(t, err)

	raw, err := json.Marshal([]interface{}{base64.RawURLEncoding.EncodeToString(salt), name, value})
	require.NoError(t, err)

	return base64.RawURLEncoding.EncodeToString(raw)
}

// DisclosureDigest returns the _sd digest of an encoded disclosure.
func DisclosureDigest(disclosure string) string {
	sum := sha256.Sum256([]byte(disclosure))

	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// KeyBinding describes the key binding jwt appended to an SD-JWT presentation.
type KeyBinding struct {
	Holder   *Key
	Audience string
	Nonce    string
	IssuedAt time.Time
	// SDHash overrides the computed sd_hash when set.
	SDHash string
}

// PresentSDJWT appends a key binding jwt to combined (which must end with "~").
func PresentSDJWT(t *testing.T, combined string, kb *KeyBinding) string {
	t.Helper()

	iat := kb.IssuedAt
	if iat.IsZero() {
		iat = time.Now()
	}

	sdHash := kb.SDHash
	if sdHash == "" {
		sum := sha256.Sum256([]byte(combined))
		sdHash = base64.RawURLEncoding.EncodeToString(sum[:])
	}

	claims := map[string]interface{}{
		"aud":     kb.Audience,
		"nonce":   kb.Nonce,
		"iat":     jwt.NewNumericDate(iat),
		"sd_hash": sdHash,
	}

	holder := &Key{Private: kb.Holder.Private}

	return combined + SignJWT(t, holder, claims, WithHeader(jose.HeaderType, "kb+jwt"))
}
