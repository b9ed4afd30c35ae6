/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/require"
)

// Key is a P-256 test key.
type Key struct {
	Private *ecdsa.PrivateKey
	KeyID   string
}

// NewKey generates a P-256 key.
func NewKey(t *testing.T, kid string) *Key {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	return &Key{Private: priv, KeyID: kid}
}

// PublicJWK returns the public key as a JWK.
func (k *Key) PublicJWK() jose.JSONWebKey {
	return jose.JSONWebKey{Key: &k.Private.PublicKey, KeyID: k.KeyID, Algorithm: string(jose.ES256), Use: "sig"}
}

// SelfSignedCert returns a self-signed certificate for the key.
func (k *Key) SelfSignedCert(t *testing.T, commonName string) *x509.Certificate {
	t.Helper()

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &k.Private.PublicKey, k.Private)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return cert
}

// JWTOpt customizes SignJWT.
type JWTOpt func(opts *jose.SignerOptions)

// WithEmbeddedJWK embeds the public key in the jwk header.
func WithEmbeddedJWK() JWTOpt {
	return func(opts *jose.SignerOptions) {
		opts.EmbedJWK = true
	}
}

// WithHeader sets a protected header.
func WithHeader(k jose.HeaderKey, v interface{}) JWTOpt {
	return func(opts *jose.SignerOptions) {
		opts.WithHeader(k, v)
	}
}

// SignJWT signs claims with ES256.
func SignJWT(t *testing.T, key *Key, claims interface{}, opts ...JWTOpt) string {
	t.Helper()

	signerOpts := &jose.SignerOptions{}
	signerOpts.WithType("JWT")

	for _, o := range opts {
		o(signerOpts)
	}

	if !signerOpts.EmbedJWK && key.KeyID != "" {
		signerOpts.WithHeader(jose.HeaderKey("kid"), key.KeyID)
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.ES256, Key: key.Private}, signerOpts)
	require.NoError(t, err)

	token, err := jwt.Signed(signer).Claims(claims).CompactSerialize()
	require.NoError(t, err)

	return token
}
