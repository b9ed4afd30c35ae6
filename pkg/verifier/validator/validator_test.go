/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package validator_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vp-verifier/pkg/doc/verifiable"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

func TestError(t *testing.T) {
	cause := errors.New("bad signature")
	err := validator.NewError(validator.KindSignatureInvalid, cause)

	require.EqualError(t, err, "signature_invalid: bad signature")
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, validator.NewError(validator.KindSignatureInvalid, nil))
	require.NotErrorIs(t, err, validator.NewError(validator.KindExpired, nil))

	require.Equal(t, validator.KindSignatureInvalid, validator.KindOf(err))
	require.Equal(t, validator.KindInternal, validator.KindOf(cause))
	require.Equal(t, validator.KindInternal, validator.KindOf(nil))

	wrapped := errors.Join(errors.New("outer"), err)
	require.Equal(t, validator.KindSignatureInvalid, validator.KindOf(wrapped))

	require.Same(t, err, validator.AsError(err, validator.KindMalformedPresentation))
	require.Equal(t, validator.KindMalformedPresentation, validator.AsError(cause, validator.KindMalformedPresentation).Kind)

	require.EqualError(t, validator.NewError(validator.KindExpired, nil), "expired")
}

func TestChannel(t *testing.T) {
	require.True(t, validator.ChannelDCAPI.IsDCAPI())
	require.True(t, validator.ChannelDCAPIEncrypted.IsDCAPI())
	require.False(t, validator.ChannelDirectPost.IsDCAPI())

	require.True(t, validator.ChannelDirectPostJWT.IsEncrypted())
	require.True(t, validator.ChannelDCAPIEncrypted.IsEncrypted())
	require.False(t, validator.ChannelRedirect.IsEncrypted())
}

func TestExpected_Time(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Equal(t, fixed, (&validator.Expected{Now: func() time.Time { return fixed }}).Time())
	require.WithinDuration(t, time.Now(), (&validator.Expected{}).Time(), time.Minute)
}

func TestRegistry(t *testing.T) {
	v := validator.ValidatorFunc(func(context.Context, string, *validator.Expected) (*validator.Presentation, error) {
		return &validator.Presentation{Format: verifiable.SDJWTVC}, nil
	})

	r := validator.NewRegistry().Register(verifiable.SDJWTVC, v)

	resolved, err := r.Resolve(verifiable.LegacySDJWTVC)
	require.NoError(t, err)

	p, err := resolved.Validate(context.Background(), "x", &validator.Expected{})
	require.NoError(t, err)
	require.Equal(t, verifiable.SDJWTVC, p.Format)

	_, err = r.Resolve(verifiable.LdpVC)
	require.Equal(t, validator.KindUnsupportedFormat, validator.KindOf(err))

	require.ElementsMatch(t, []verifiable.Format{verifiable.SDJWTVC}, r.Formats())
}

func TestStaticKeyResolver(t *testing.T) {
	k1 := newJWK(t, "k1")
	k2 := newJWK(t, "k2")

	r := validator.StaticKeyResolver{"https://issuer.example.com": {k1, k2}}

	key, err := r.ResolveKey(context.Background(), "https://issuer.example.com", "")
	require.NoError(t, err)
	require.Equal(t, "k1", key.KeyID)

	key, err = r.ResolveKey(context.Background(), "https://issuer.example.com", "k2")
	require.NoError(t, err)
	require.Equal(t, "k2", key.KeyID)

	_, err = r.ResolveKey(context.Background(), "https://issuer.example.com", "k3")
	require.ErrorIs(t, err, validator.ErrKeyNotFound)

	_, err = r.ResolveKey(context.Background(), "https://other.example.com", "")
	require.ErrorIs(t, err, validator.ErrKeyNotFound)
}

func TestIssuerKeys(t *testing.T) {
	k1 := newJWK(t, "k1")

	keys := &validator.IssuerKeys{Resolver: validator.StaticKeyResolver{"iss": {k1}}}

	key, err := keys.Key(context.Background(), jose.Header{KeyID: "k1"}, "iss", time.Now())
	require.NoError(t, err)
	require.Equal(t, k1.Key, key)

	_, err = (&validator.IssuerKeys{}).Key(context.Background(), jose.Header{}, "iss", time.Now())
	require.ErrorIs(t, err, validator.ErrKeyNotFound)
}

func TestThumbprint(t *testing.T) {
	k := newJWK(t, "k1")

	tp1, err := validator.Thumbprint(&k)
	require.NoError(t, err)
	require.Len(t, tp1, 43)

	k.KeyID = "other"

	tp2, err := validator.Thumbprint(&k)
	require.NoError(t, err)
	require.Equal(t, tp1, tp2)
}

func newJWK(t *testing.T, kid string) jose.JSONWebKey {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	return jose.JSONWebKey{Key: &priv.PublicKey, KeyID: kid, Algorithm: string(jose.ES256)}
}
