/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jwtvc validates jwt_vc_json presentations: a holder signed VP JWT carrying issuer signed
// VC JWTs.
package jwtvc

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/doc/verifiable"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

var logger = log.New("jwtvc-validator")

// Config configures the validator.
type Config struct {
	KeyResolver  validator.KeyResolver
	TrustedRoots *x509.CertPool
	Leeway       time.Duration
}

// Validator validates jwt_vc_json presentations.
type Validator struct {
	keys   *validator.IssuerKeys
	leeway time.Duration
}

// New returns a new jwt_vc_json validator.
func New(config *Config) *Validator {
	leeway := config.Leeway
	if leeway == 0 {
		leeway = validator.DefaultLeeway
	}

	return &Validator{
		keys:   &validator.IssuerKeys{Resolver: config.KeyResolver, Roots: config.TrustedRoots},
		leeway: leeway,
	}
}

type vpClaims struct {
	jwt.Claims
	Nonce string  `json:"nonce"`
	VP    *vpBody `json:"vp"`
}

type vpBody struct {
	Holder               string            `json:"holder"`
	VerifiableCredential []json.RawMessage `json:"verifiableCredential"`
}

type vcClaims struct {
	jwt.Claims
	VC map[string]interface{} `json:"vc"`
}

// Validate verifies the VP JWT and every embedded VC JWT.
func (v *Validator) Validate(
	ctx context.Context,
	presentation string,
	expected *validator.Expected,
) (*validator.Presentation, error) {
	now := expected.Time()

	tok, err := jwt.ParseSigned(presentation)
	if err != nil {
		return nil, validator.Errorf(validator.KindMalformedPresentation, "parse vp jwt: %w", err)
	}

	var unverified vpClaims
	if err = tok.UnsafeClaimsWithoutVerification(&unverified); err != nil {
		return nil, validator.Errorf(validator.KindMalformedPresentation, "decode vp claims: %w", err)
	}

	header := tok.Headers[0]

	holderKey, thumbprint, err := v.holderKey(ctx, header, unverified.Issuer, now)
	if err != nil {
		return nil, validator.NewError(validator.KindSignatureInvalid, err)
	}

	var claims vpClaims
	if err = tok.Claims(holderKey, &claims); err != nil {
		return nil, validator.Errorf(validator.KindSignatureInvalid, "vp signature: %w", err)
	}

	if !claims.Audience.Contains(expected.Audience) {
		return nil, validator.Errorf(validator.KindAudienceMismatch,
			"vp audience %v does not contain %s", []string(claims.Audience), expected.Audience)
	}

	if claims.Nonce != expected.Nonce {
		return nil, validator.Errorf(validator.KindNonceMismatch, "vp nonce does not match")
	}

	if vErr := validator.CheckTimes(&claims.Claims, now, v.leeway); vErr != nil {
		return nil, vErr
	}

	if claims.VP == nil || len(claims.VP.VerifiableCredential) == 0 {
		return nil, validator.Errorf(validator.KindMalformedPresentation, "vp contains no verifiableCredential")
	}

	holder := claims.VP.Holder
	if holder == "" {
		holder = claims.Issuer
	}

	result := &validator.Presentation{
		Format:              verifiable.JwtVCJson,
		Holder:              holder,
		HolderKeyThumbprint: thumbprint,
	}

	for i, raw := range claims.VP.VerifiableCredential {
		cred, vErr := v.verifyCredential(ctx, raw, holder, now)
		if vErr != nil {
			logger.Debugc(ctx, "jwt vc rejected", logfields.WithCredentialIndex(i), log.WithError(vErr))

			return nil, vErr
		}

		result.Credentials = append(result.Credentials, *cred)
	}

	if vErr := validator.CheckPresentationQuery(expected.ClaimsQuery, result); vErr != nil {
		return nil, vErr
	}

	return result, nil
}

func (v *Validator) holderKey(
	ctx context.Context,
	header jose.Header,
	issuer string,
	now time.Time,
) (interface{}, string, error) {
	if header.JSONWebKey != nil {
		if !header.JSONWebKey.IsPublic() {
			return nil, "", errors.New("embedded jwk is not a public key")
		}

		tp, err := validator.Thumbprint(header.JSONWebKey)
		if err != nil {
			return nil, "", err
		}

		return header.JSONWebKey.Key, tp, nil
	}

	key, err := v.keys.Key(ctx, header, issuer, now)
	if err != nil {
		return nil, "", fmt.Errorf("resolve holder key: %w", err)
	}

	return key, "", nil
}

func (v *Validator) verifyCredential(
	ctx context.Context,
	raw json.RawMessage,
	holder string,
	now time.Time,
) (*validator.Credential, *validator.Error) {
	var compact string
	if err := json.Unmarshal(raw, &compact); err != nil {
		return nil, validator.Errorf(validator.KindMalformedPresentation, "verifiableCredential entry is not a jwt")
	}

	tok, err := jwt.ParseSigned(compact)
	if err != nil {
		return nil, validator.Errorf(validator.KindMalformedPresentation, "parse vc jwt: %w", err)
	}

	var unverified jwt.Claims
	if err = tok.UnsafeClaimsWithoutVerification(&unverified); err != nil {
		return nil, validator.Errorf(validator.KindMalformedPresentation, "decode vc claims: %w", err)
	}

	key, err := v.keys.Key(ctx, tok.Headers[0], unverified.Issuer, now)
	if err != nil {
		return nil, validator.Errorf(validator.KindSignatureInvalid, "resolve issuer key: %w", err)
	}

	var claims vcClaims
	if err = tok.Claims(key, &claims); err != nil {
		return nil, validator.Errorf(validator.KindSignatureInvalid, "vc signature: %w", err)
	}

	if claims.VC == nil {
		return nil, validator.Errorf(validator.KindMalformedPresentation, "vc claim is missing")
	}

	if vErr := validator.CheckTimes(&claims.Claims, now, v.leeway); vErr != nil {
		return nil, vErr
	}

	subject := claims.Subject
	if subject == "" {
		subject = credentialSubjectID(claims.VC)
	}

	// The holder signed VP with the verifier nonce is the binding proof; a subject naming someone
	// else breaks it.
	if subject != "" && holder != "" && subject != holder {
		return nil, validator.Errorf(validator.KindHolderBindingFailed,
			"credential subject %s is not the presentation holder %s", subject, holder)
	}

	doc := make(map[string]interface{}, len(claims.VC)+2)
	for k, val := range claims.VC {
		doc[k] = val
	}

	doc["iss"] = claims.Issuer

	if subject != "" {
		doc["sub"] = subject
	}

	claimsJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, validator.NewError(validator.KindInternal, err)
	}

	return &validator.Credential{
		Format:            verifiable.JwtVCJson,
		Issuer:            claims.Issuer,
		Subject:           subject,
		Types:             types(claims.VC["type"]),
		IssuedAt:          validator.TimePtr(claims.IssuedAt),
		ExpiresAt:         validator.TimePtr(claims.Expiry),
		NotBefore:         validator.TimePtr(claims.NotBefore),
		Claims:            doc,
		ClaimsJSON:        claimsJSON,
		Raw:               compact,
		SignatureVerified: true,
		HolderBound:       true,
	}, nil
}

func credentialSubjectID(vc map[string]interface{}) string {
	subject, ok := vc["credentialSubject"].(map[string]interface{})
	if !ok {
		return ""
	}

	id, _ := subject["id"].(string) //nolint:errcheck

	return id
}

func types(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))

		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}
