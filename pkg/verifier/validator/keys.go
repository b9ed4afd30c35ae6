/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v3"
)

// ErrKeyNotFound is returned by key resolvers when no key matches.
var ErrKeyNotFound = errors.New("key not found")

// KeyResolver resolves issuer public keys.
type KeyResolver interface {
	ResolveKey(ctx context.Context, issuer, kid string) (*jose.JSONWebKey, error)
}

// StaticKeyResolver resolves keys from a fixed issuer to key set map.
type StaticKeyResolver map[string][]jose.JSONWebKey

// ResolveKey returns the issuer key with the given kid, or the first issuer key when kid is empty.
func (r StaticKeyResolver) ResolveKey(_ context.Context, issuer, kid string) (*jose.JSONWebKey, error) {
	keys, ok := r[issuer]
	if !ok || len(keys) == 0 {
		return nil, fmt.Errorf("%w: issuer %s", ErrKeyNotFound, issuer)
	}

	if kid == "" {
		return &keys[0], nil
	}

	for i := range keys {
		if keys[i].KeyID == kid {
			return &keys[i], nil
		}
	}

	return nil, fmt.Errorf("%w: issuer %s kid %s", ErrKeyNotFound, issuer, kid)
}

// IssuerKeys finds the key that signed a JWS: a trusted x5c chain first, then the resolver.
type IssuerKeys struct {
	Resolver KeyResolver
	Roots    *x509.CertPool
}

// Key returns the verification key for a JWS header issued by issuer.
func (k *IssuerKeys) Key(ctx context.Context, header jose.Header, issuer string, now time.Time) (interface{}, error) {
	if k.Roots != nil {
		chains, err := header.Certificates(x509.VerifyOptions{
			Roots:       k.Roots,
			CurrentTime: now,
			KeyUsages:   []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
		})
		if err == nil && len(chains) > 0 && len(chains[0]) > 0 {
			return chains[0][0].PublicKey, nil
		}
	}

	if k.Resolver == nil {
		return nil, fmt.Errorf("%w: no key resolver configured", ErrKeyNotFound)
	}

	jwk, err := k.Resolver.ResolveKey(ctx, issuer, header.KeyID)
	if err != nil {
		return nil, err
	}

	return jwk.Key, nil
}

// Thumbprint returns the base64url encoded RFC 7638 SHA-256 thumbprint of a key.
func Thumbprint(jwk *jose.JSONWebKey) (string, error) {
	tp, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("jwk thumbprint: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(tp), nil
}
