/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mdoc

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"errors"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"
)

const (
	// taggedCOSESign1Head is the initial byte of a tag 18 (COSE_Sign1) data item.
	taggedCOSESign1Head = 0xd2
	tagEncodedCBOR      = 24

	coseKeyTypeEC2 = 2
	coseCurveP256  = 1
)

// coseSign1 accepts both tagged and untagged COSE_Sign1 encodings.
type coseSign1 struct {
	cose.Sign1Message
}

func (m *coseSign1) UnmarshalCBOR(b []byte) error {
	if len(b) > 0 && b[0] == taggedCOSESign1Head {
		return m.Sign1Message.UnmarshalCBOR(b)
	}

	return (*cose.UntaggedSign1Message)(&m.Sign1Message).UnmarshalCBOR(b)
}

// verify checks an ES256 signature. A non-nil detached payload replaces the embedded one.
func (m *coseSign1) verify(pub *ecdsa.PublicKey, detached []byte) error {
	verifier, err := cose.NewVerifier(cose.AlgorithmES256, pub)
	if err != nil {
		return fmt.Errorf("create cose verifier: %w", err)
	}

	msg := m.Sign1Message
	if detached != nil {
		msg.Payload = detached
	}

	if err = msg.Verify(nil, verifier); err != nil {
		return fmt.Errorf("cose signature verification failed: %w", err)
	}

	return nil
}

// x5chain returns the certificates of the x5chain unprotected header, leaf first.
func (m *coseSign1) x5chain() ([]*x509.Certificate, error) {
	raw, ok := m.Headers.Unprotected[cose.HeaderLabelX5Chain]
	if !ok {
		return nil, errors.New("x5chain header is missing")
	}

	var ders [][]byte

	switch v := raw.(type) {
	case []byte:
		ders = [][]byte{v}
	case []interface{}:
		for _, item := range v {
			der, isBytes := item.([]byte)
			if !isBytes {
				return nil, errors.New("decode x5chain: certificate is not a byte string")
			}

			ders = append(ders, der)
		}
	default:
		return nil, fmt.Errorf("decode x5chain: unexpected type %T", raw)
	}

	if len(ders) == 0 {
		return nil, errors.New("x5chain is empty")
	}

	certs := make([]*x509.Certificate, 0, len(ders))

	for _, der := range ders {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("parse x5chain certificate: %w", err)
		}

		certs = append(certs, cert)
	}

	return certs, nil
}

// coseKey is an EC2 COSE_Key.
type coseKey struct {
	Kty int64  `cbor:"1,keyasint"`
	Crv int64  `cbor:"-1,keyasint"`
	X   []byte `cbor:"-2,keyasint"`
	Y   []byte `cbor:"-3,keyasint"`
}

func (k *coseKey) publicKey() (*ecdsa.PublicKey, error) {
	if k.Kty != coseKeyTypeEC2 || k.Crv != coseCurveP256 {
		return nil, fmt.Errorf("unsupported device key kty=%d crv=%d", k.Kty, k.Crv)
	}

	pub := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(k.X),
		Y:     new(big.Int).SetBytes(k.Y),
	}

	if !pub.Curve.IsOnCurve(pub.X, pub.Y) {
		return nil, errors.New("device key is not on the P-256 curve")
	}

	return pub, nil
}

// unwrapEncoded returns the content of an encoded CBOR data item (#6.24(bstr)).
func unwrapEncoded(raw []byte) ([]byte, error) {
	var tag cbor.RawTag
	if err := cbor.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("decode tag 24: %w", err)
	}

	if tag.Number != tagEncodedCBOR {
		return nil, fmt.Errorf("expected tag 24, got %d", tag.Number)
	}

	var data []byte
	if err := cbor.Unmarshal(tag.Content, &data); err != nil {
		return nil, fmt.Errorf("decode tag 24 content: %w", err)
	}

	return data, nil
}
