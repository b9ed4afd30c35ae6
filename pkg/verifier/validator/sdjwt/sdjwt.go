/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package sdjwt validates dc+sd-jwt presentations: an issuer signed JWT, its disclosures and a
// key binding JWT signed by the holder key confirmed in the cnf claim.
package sdjwt

import (
	"context"
	"crypto"
	_ "crypto/sha512" // sha-384 and sha-512 _sd_alg values
	"crypto/subtle"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/hyperledger/aries-framework-go/component/models/sdjwt/common"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/doc/verifiable"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

var logger = log.New("sdjwt-validator")

const (
	kbJWTType = "kb+jwt"

	// DefaultKeyBindingMaxAge bounds how old the key binding JWT iat may be.
	DefaultKeyBindingMaxAge = 5 * time.Minute
)

// Config configures the validator.
type Config struct {
	KeyResolver      validator.KeyResolver
	TrustedRoots     *x509.CertPool
	Leeway           time.Duration
	KeyBindingMaxAge time.Duration
}

// Validator validates dc+sd-jwt presentations.
type Validator struct {
	keys     *validator.IssuerKeys
	leeway   time.Duration
	kbMaxAge time.Duration
}

// New returns a new SD-JWT VC validator.
func New(config *Config) *Validator {
	v := &Validator{
		keys:     &validator.IssuerKeys{Resolver: config.KeyResolver, Roots: config.TrustedRoots},
		leeway:   config.Leeway,
		kbMaxAge: config.KeyBindingMaxAge,
	}

	if v.leeway == 0 {
		v.leeway = validator.DefaultLeeway
	}

	if v.kbMaxAge == 0 {
		v.kbMaxAge = DefaultKeyBindingMaxAge
	}

	return v
}

type keyBindingClaims struct {
	jwt.Claims
	Nonce  string `json:"nonce"`
	SDHash string `json:"sd_hash"`
}

type parsedPresentation struct {
	issuerJWT   string
	disclosures []string
	kbJWT       string
	// prefix is the presentation up to and including the last separator, the sd_hash input.
	prefix string
}

func split(presentation string) (*parsedPresentation, error) {
	last := strings.LastIndex(presentation, common.CombinedFormatSeparator)
	if last < 0 {
		return nil, errors.New("missing disclosure separator")
	}

	cf := common.ParseCombinedFormatForPresentation(presentation)

	for _, d := range cf.Disclosures {
		if d == "" {
			return nil, errors.New("empty disclosure")
		}
	}

	return &parsedPresentation{
		issuerJWT:   cf.SDJWT,
		disclosures: cf.Disclosures,
		kbJWT:       presentation[last+1:],
		prefix:      presentation[:last+1],
	}, nil
}

// digestHash returns the _sd_alg hash, SHA-256 when the claim is absent.
func digestHash(payload map[string]interface{}) (crypto.Hash, error) {
	raw, ok := payload[common.SDAlgorithmKey]
	if !ok {
		return crypto.SHA256, nil
	}

	alg, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("%s is not a string", common.SDAlgorithmKey)
	}

	return common.GetCryptoHash(alg)
}

// Validate verifies the SD-JWT, reconstructs the disclosed claims and checks key binding.
func (v *Validator) Validate(
	ctx context.Context,
	presentation string,
	expected *validator.Expected,
) (*validator.Presentation, error) {
	now := expected.Time()

	parts, err := split(presentation)
	if err != nil {
		return nil, validator.NewError(validator.KindMalformedPresentation, err)
	}

	std, payload, vErr := v.verifyIssuerJWT(ctx, parts.issuerJWT, now)
	if vErr != nil {
		return nil, vErr
	}

	hash, err := digestHash(payload)
	if err != nil {
		return nil, validator.Errorf(validator.KindMalformedPresentation, "unsupported digest algorithm: %w", err)
	}

	disclosures, err := parseDisclosures(parts.disclosures, hash)
	if err != nil {
		return nil, validator.NewError(validator.KindMalformedPresentation, err)
	}

	reconstructed, err := reconstruct(payload, disclosures)
	if err != nil {
		return nil, validator.NewError(validator.KindMalformedPresentation, err)
	}

	for _, d := range disclosures {
		if !d.used {
			return nil, validator.Errorf(validator.KindMalformedPresentation,
				"disclosure is not referenced by the issuer jwt")
		}
	}

	claims, _ := reconstructed.(map[string]interface{}) //nolint:errcheck

	cnf, err := confirmationKey(claims)
	if err != nil {
		return nil, validator.NewError(validator.KindMalformedPresentation, err)
	}

	cred := &validator.Credential{
		Format:            verifiable.SDJWTVC,
		Issuer:            std.Issuer,
		Subject:           std.Subject,
		IssuedAt:          validator.TimePtr(std.IssuedAt),
		ExpiresAt:         validator.TimePtr(std.Expiry),
		NotBefore:         validator.TimePtr(std.NotBefore),
		Claims:            claims,
		Raw:               presentation,
		SignatureVerified: true,
	}

	cred.Vct, _ = claims["vct"].(string) //nolint:errcheck

	result := &validator.Presentation{Format: verifiable.SDJWTVC}

	switch {
	case parts.kbJWT != "":
		if cnf == nil {
			return nil, validator.Errorf(validator.KindHolderBindingFailed, "key binding jwt without cnf key")
		}

		if vErr = v.verifyKeyBinding(parts, hash, cnf, expected, now); vErr != nil {
			logger.Debugc(ctx, "key binding rejected", logfields.WithAudience(expected.Audience), log.WithError(vErr))

			return nil, vErr
		}

		tp, tpErr := validator.Thumbprint(cnf)
		if tpErr != nil {
			return nil, validator.NewError(validator.KindInternal, tpErr)
		}

		cred.HolderBound = true
		result.HolderKeyThumbprint = tp
	case expected.ClaimsQuery == nil || expected.ClaimsQuery.RequiresHolderBinding():
		return nil, validator.Errorf(validator.KindHolderBindingFailed, "key binding jwt is missing")
	}

	cred.ClaimsJSON, err = json.Marshal(claims)
	if err != nil {
		return nil, validator.NewError(validator.KindInternal, err)
	}

	result.Holder = cred.Subject
	result.Credentials = []validator.Credential{*cred}

	if vErr = validator.CheckPresentationQuery(expected.ClaimsQuery, result); vErr != nil {
		return nil, vErr
	}

	return result, nil
}

func (v *Validator) verifyIssuerJWT(
	ctx context.Context,
	compact string,
	now time.Time,
) (*jwt.Claims, map[string]interface{}, *validator.Error) {
	tok, err := jwt.ParseSigned(compact)
	if err != nil {
		return nil, nil, validator.Errorf(validator.KindMalformedPresentation, "parse issuer jwt: %w", err)
	}

	var unverified jwt.Claims
	if err = tok.UnsafeClaimsWithoutVerification(&unverified); err != nil {
		return nil, nil, validator.Errorf(validator.KindMalformedPresentation, "decode issuer jwt: %w", err)
	}

	key, err := v.keys.Key(ctx, tok.Headers[0], unverified.Issuer, now)
	if err != nil {
		return nil, nil, validator.Errorf(validator.KindSignatureInvalid, "resolve issuer key: %w", err)
	}

	var (
		std     jwt.Claims
		payload map[string]interface{}
	)

	if err = tok.Claims(key, &std, &payload); err != nil {
		return nil, nil, validator.Errorf(validator.KindSignatureInvalid, "issuer signature: %w", err)
	}

	if vErr := validator.CheckTimes(&std, now, v.leeway); vErr != nil {
		return nil, nil, vErr
	}

	return &std, payload, nil
}

func (v *Validator) verifyKeyBinding(
	parts *parsedPresentation,
	hash crypto.Hash,
	cnf *jose.JSONWebKey,
	expected *validator.Expected,
	now time.Time,
) *validator.Error {
	tok, err := jwt.ParseSigned(parts.kbJWT)
	if err != nil {
		return validator.Errorf(validator.KindMalformedPresentation, "parse key binding jwt: %w", err)
	}

	if typ, _ := tok.Headers[0].ExtraHeaders[jose.HeaderType].(string); typ != kbJWTType { //nolint:errcheck
		return validator.Errorf(validator.KindHolderBindingFailed, "key binding jwt typ %q", typ)
	}

	var kb keyBindingClaims
	if err = tok.Claims(cnf.Key, &kb); err != nil {
		return validator.Errorf(validator.KindHolderBindingFailed, "key binding signature: %w", err)
	}

	if !kb.Audience.Contains(expected.Audience) {
		return validator.Errorf(validator.KindAudienceMismatch,
			"key binding audience %v does not contain %s", []string(kb.Audience), expected.Audience)
	}

	if kb.Nonce != expected.Nonce {
		return validator.Errorf(validator.KindNonceMismatch, "key binding nonce does not match")
	}

	if kb.IssuedAt == nil {
		return validator.Errorf(validator.KindMalformedPresentation, "key binding jwt has no iat")
	}

	iat := kb.IssuedAt.Time()
	if iat.After(now.Add(v.leeway)) || now.Sub(iat) > v.kbMaxAge+v.leeway {
		return validator.Errorf(validator.KindExpired, "key binding jwt issued at %s is outside the freshness window",
			iat.UTC().Format(time.RFC3339))
	}

	expectedHash, err := common.GetHash(hash, parts.prefix)
	if err != nil {
		return validator.NewError(validator.KindInternal, err)
	}

	if subtle.ConstantTimeCompare([]byte(kb.SDHash), []byte(expectedHash)) != 1 {
		return validator.Errorf(validator.KindHolderBindingFailed, "sd_hash does not match the presentation")
	}

	return nil
}

func confirmationKey(claims map[string]interface{}) (*jose.JSONWebKey, error) {
	cnf, ok := claims["cnf"].(map[string]interface{})
	if !ok {
		return nil, nil //nolint:nilnil
	}

	rawJWK, ok := cnf["jwk"]
	if !ok {
		return nil, fmt.Errorf("cnf has no jwk")
	}

	b, err := json.Marshal(rawJWK)
	if err != nil {
		return nil, fmt.Errorf("cnf jwk: %w", err)
	}

	var jwk jose.JSONWebKey
	if err = jwk.UnmarshalJSON(b); err != nil {
		return nil, fmt.Errorf("cnf jwk: %w", err)
	}

	if !jwk.IsPublic() {
		return nil, errors.New("cnf jwk is not a public key")
	}

	return &jwk, nil
}
