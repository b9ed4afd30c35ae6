/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package testutil

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"math/big"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
	"github.com/veraison/go-cose"
)

// Mdoc describes an mso_mdoc document to issue and present.
type Mdoc struct {
	Issuer     *Key
	DocType    string
	NameSpaces map[string]map[string]interface{}
	Device     *Key
	ValidFrom  time.Time
	ValidUntil time.Time
	// TamperElement changes the value of this element after signing.
	TamperElement string
	// CertKey, when set, is the key of the x5chain certificate instead of Issuer.
	CertKey *Key
	// TaggedIssuerAuth encodes issuerAuth as a tag 18 COSE_Sign1.
	TaggedIssuerAuth bool
}

// Handover identifies the OpenID4VP session an mdoc presentation is bound to.
type Handover struct {
	ClientID      string
	ResponseURI   string
	Origin        string
	Nonce         string
	JWKThumbprint []byte
	DCAPI         bool
}

// SessionTranscript encodes [null, null, OpenID4VPHandover | OpenID4VPDCAPIHandover].
func SessionTranscript(t *testing.T, h *Handover) []byte {
	t.Helper()

	var thumbprint interface{}
	if len(h.JWKThumbprint) > 0 {
		thumbprint = h.JWKThumbprint
	}

	identifier := "OpenID4VPHandover"
	info := []interface{}{h.ClientID, h.Nonce, thumbprint, h.ResponseURI}

	if h.DCAPI {
		identifier = "OpenID4VPDCAPIHandover"
		info = []interface{}{h.Origin, h.Nonce, thumbprint}
	}

	infoBytes, err := cbor.Marshal(info)
	require.NoError(t, err)

	hash := sha256.Sum256(infoBytes)

	transcript, err := cbor.Marshal([]interface{}{nil, nil, []interface{}{identifier, hash[:]}})
	require.NoError(t, err)

	return transcript
}

// PresentMdoc returns a base64url DeviceResponse with one document bound to the handover.
func PresentMdoc(t *testing.T, m *Mdoc, h *Handover) string {
	t.Helper()

	nameSpaces := map[string][]cbor.RawMessage{}
	valueDigests := map[string]map[uint64][]byte{}

	var digestID uint64

	for ns, elements := range m.NameSpaces {
		valueDigests[ns] = map[uint64][]byte{}

		for id, value := range elements {
			random := make([]byte, 16)
			_, err := rand.Read(random)
			require.NoError(t, err)

			item := map[string]interface{}{
				"digestID":          digestID,
				"random":            random,
				"elementIdentifier": id,
				"elementValue":      value,
			}

			tagged := encodedCBOR(t, item)
			sum := sha256.Sum256(tagged)
			valueDigests[ns][digestID] = sum[:]

			if id == m.TamperElement {
				item["elementValue"] = "tampered"
				tagged = encodedCBOR(t, item)
			}

			nameSpaces[ns] = append(nameSpaces[ns], cbor.RawMessage(tagged))
			digestID++
		}
	}

	devicePub := m.Device.Private.PublicKey

	mso := map[string]interface{}{
		"version":         "1.0",
		"digestAlgorithm": "SHA-256",
		"valueDigests":    valueDigests,
		"deviceKeyInfo": map[string]interface{}{
			"deviceKey": map[int]interface{}{
				1:  2,
				-1: 1,
				-2: padded(devicePub.X),
				-3: padded(devicePub.Y),
			},
		},
		"docType": m.DocType,
		"validityInfo": map[string]interface{}{
			"signed":     tdate(m.ValidFrom),
			"validFrom":  tdate(m.ValidFrom),
			"validUntil": tdate(m.ValidUntil),
		},
	}

	certKey := m.Issuer
	if m.CertKey != nil {
		certKey = m.CertKey
	}

	cert := certKey.SelfSignedCert(t, "mdoc issuer")
	issuerAuth := coseSign1(t, m.Issuer, cose.UnprotectedHeader{cose.HeaderLabelX5Chain: cert.Raw},
		encodedCBOR(t, mso), nil)

	if m.TaggedIssuerAuth {
		issuerAuth = tagged(t, issuerAuth)
	}

	deviceNameSpaces := encodedCBOR(t, map[string]interface{}{})

	deviceAuth, err := cbor.Marshal([]interface{}{
		"DeviceAuthentication",
		cbor.RawMessage(SessionTranscript(t, h)),
		m.DocType,
		cbor.RawMessage(deviceNameSpaces),
	})
	require.NoError(t, err)

	deviceSignature := coseSign1(t, m.Device, cose.UnprotectedHeader{}, nil, encodedBytes(t, deviceAuth))

	resp := map[string]interface{}{
		"version": "1.0",
		"documents": []interface{}{
			map[string]interface{}{
				"docType": m.DocType,
				"issuerSigned": map[string]interface{}{
					"nameSpaces": nameSpaces,
					"issuerAuth": issuerAuth,
				},
				"deviceSigned": map[string]interface{}{
					"nameSpaces": cbor.RawMessage(deviceNameSpaces),
					"deviceAuth": map[string]interface{}{
						"deviceSignature": deviceSignature,
					},
				},
			},
		},
		"status": 0,
	}

	raw, err := cbor.Marshal(resp)
	require.NoError(t, err)

	return base64.RawURLEncoding.EncodeToString(raw)
}

// coseSign1 signs payload with ES256. A detached payload is signed but not embedded.
func coseSign1(t *testing.T, key *Key, unprotected cose.UnprotectedHeader, payload, detached []byte) cbor.RawMessage {
	t.Helper()

	signer, err := cose.NewSigner(cose.AlgorithmES256, key.Private)
	require.NoError(t, err)

	msg := &cose.Sign1Message{
		Headers: cose.Headers{
			Protected:   cose.ProtectedHeader{cose.HeaderLabelAlgorithm: cose.AlgorithmES256},
			Unprotected: unprotected,
		},
		Payload: payload,
	}

	if detached != nil {
		msg.Payload = detached
	}

	require.NoError(t, msg.Sign(rand.Reader, nil, signer))

	msg.Payload = payload

	raw, err := (*cose.UntaggedSign1Message)(msg).MarshalCBOR()
	require.NoError(t, err)

	return raw
}

func tagged(t *testing.T, untagged cbor.RawMessage) cbor.RawMessage {
	t.Helper()

	raw, err := cbor.Marshal(cbor.Tag{Number: cose.CBORTagSign1Message, Content: untagged})
	require.NoError(t, err)

	return raw
}

// encodedCBOR returns #6.24(bstr .cbor v).
func encodedCBOR(t *testing.T, v interface{}) []byte {
	t.Helper()

	content, err := cbor.Marshal(v)
	require.NoError(t, err)

	return encodedBytes(t, content)
}

func encodedBytes(t *testing.T, content []byte) []byte {
	t.Helper()

	tagged, err := cbor.Marshal(cbor.Tag{Number: 24, Content: content})
	require.NoError(t, err)

	return tagged
}

func tdate(t time.Time) cbor.Tag {
	return cbor.Tag{Number: 0, Content: t.UTC().Format(time.RFC3339)}
}

func padded(n *big.Int) []byte {
	b := make([]byte, 32)

	return n.FillBytes(b)
}
