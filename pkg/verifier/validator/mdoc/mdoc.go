/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mdoc validates mso_mdoc presentations (ISO/IEC 18013-5 DeviceResponse) bound to an
// OpenID4VP session transcript.
package mdoc

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-jose/go-jose/v3"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/doc/verifiable"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

var logger = log.New("mdoc-validator")

const (
	digestAlgorithmSHA256 = "SHA-256"

	handoverRedirect = "OpenID4VPHandover"
	handoverDCAPI    = "OpenID4VPDCAPIHandover"
)

// Config configures the validator.
type Config struct {
	// TrustedRoots verifies the issuer x5chain. Without roots only the leaf signature is checked.
	TrustedRoots *x509.CertPool
	Leeway       time.Duration
}

// Validator validates mso_mdoc presentations.
type Validator struct {
	roots  *x509.CertPool
	leeway time.Duration
}

// New returns a new mso_mdoc validator.
func New(config *Config) *Validator {
	leeway := config.Leeway
	if leeway == 0 {
		leeway = validator.DefaultLeeway
	}

	return &Validator{roots: config.TrustedRoots, leeway: leeway}
}

type deviceResponse struct {
	Version   string     `cbor:"version"`
	Documents []document `cbor:"documents"`
	Status    uint64     `cbor:"status"`
}

type document struct {
	DocType      string        `cbor:"docType"`
	IssuerSigned issuerSigned  `cbor:"issuerSigned"`
	DeviceSigned *deviceSigned `cbor:"deviceSigned"`
}

type issuerSigned struct {
	NameSpaces map[string][]cbor.RawMessage `cbor:"nameSpaces"`
	IssuerAuth coseSign1                    `cbor:"issuerAuth"`
}

type deviceSigned struct {
	NameSpaces cbor.RawMessage `cbor:"nameSpaces"`
	DeviceAuth deviceAuth      `cbor:"deviceAuth"`
}

type deviceAuth struct {
	DeviceSignature *coseSign1      `cbor:"deviceSignature"`
	DeviceMac       cbor.RawMessage `cbor:"deviceMac"`
}

type issuerSignedItem struct {
	DigestID          uint64      `cbor:"digestID"`
	Random            []byte      `cbor:"random"`
	ElementIdentifier string      `cbor:"elementIdentifier"`
	ElementValue      interface{} `cbor:"elementValue"`
}

type mobileSecurityObject struct {
	Version         string                       `cbor:"version"`
	DigestAlgorithm string                       `cbor:"digestAlgorithm"`
	ValueDigests    map[string]map[uint64][]byte `cbor:"valueDigests"`
	DeviceKeyInfo   deviceKeyInfo                `cbor:"deviceKeyInfo"`
	DocType         string                       `cbor:"docType"`
	ValidityInfo    validityInfo                 `cbor:"validityInfo"`
}

type deviceKeyInfo struct {
	DeviceKey coseKey `cbor:"deviceKey"`
}

type validityInfo struct {
	Signed     tdate `cbor:"signed"`
	ValidFrom  tdate `cbor:"validFrom"`
	ValidUntil tdate `cbor:"validUntil"`
}

// Validate verifies a base64url encoded DeviceResponse.
func (v *Validator) Validate(
	ctx context.Context,
	presentation string,
	expected *validator.Expected,
) (*validator.Presentation, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(presentation, "="))
	if err != nil {
		return nil, validator.Errorf(validator.KindMalformedPresentation, "decode device response: %w", err)
	}

	var resp deviceResponse
	if err = cbor.Unmarshal(raw, &resp); err != nil {
		return nil, validator.Errorf(validator.KindMalformedPresentation, "decode device response: %w", err)
	}

	if resp.Status != 0 {
		return nil, validator.Errorf(validator.KindMalformedPresentation, "device response status %d", resp.Status)
	}

	if len(resp.Documents) == 0 {
		return nil, validator.Errorf(validator.KindMalformedPresentation, "device response contains no documents")
	}

	transcript, err := SessionTranscript(expected)
	if err != nil {
		return nil, validator.NewError(validator.KindInternal, err)
	}

	result := &validator.Presentation{Format: verifiable.MsoMdoc}

	for i := range resp.Documents {
		cred, thumbprint, vErr := v.verifyDocument(&resp.Documents[i], transcript, expected.Time())
		if vErr != nil {
			logger.Debugc(ctx, "mdoc document rejected", logfields.WithCredentialIndex(i), log.WithError(vErr))

			return nil, vErr
		}

		result.HolderKeyThumbprint = thumbprint
		result.Credentials = append(result.Credentials, *cred)
	}

	if vErr := validator.CheckPresentationQuery(expected.ClaimsQuery, result); vErr != nil {
		return nil, vErr
	}

	return result, nil
}

func (v *Validator) verifyDocument(
	doc *document,
	transcript []byte,
	now time.Time,
) (*validator.Credential, string, *validator.Error) {
	issuerCert, err := v.issuerCertificate(&doc.IssuerSigned.IssuerAuth, now)
	if err != nil {
		return nil, "", validator.NewError(validator.KindSignatureInvalid, err)
	}

	issuerKey, ok := issuerCert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, "", validator.Errorf(validator.KindSignatureInvalid, "issuer certificate key is not ECDSA")
	}

	if err = doc.IssuerSigned.IssuerAuth.verify(issuerKey, nil); err != nil {
		return nil, "", validator.Errorf(validator.KindSignatureInvalid, "issuer auth: %w", err)
	}

	mso, err := decodeMSO(doc.IssuerSigned.IssuerAuth.Payload)
	if err != nil {
		return nil, "", validator.NewError(validator.KindMalformedPresentation, err)
	}

	if mso.DocType != doc.DocType {
		return nil, "", validator.Errorf(validator.KindMalformedPresentation,
			"document doctype %q differs from signed doctype %q", doc.DocType, mso.DocType)
	}

	if mso.DigestAlgorithm != digestAlgorithmSHA256 {
		return nil, "", validator.Errorf(validator.KindMalformedPresentation,
			"unsupported digest algorithm %q", mso.DigestAlgorithm)
	}

	if now.Before(mso.ValidityInfo.ValidFrom.Add(-v.leeway)) || now.After(mso.ValidityInfo.ValidUntil.Add(v.leeway)) {
		return nil, "", validator.Errorf(validator.KindExpired, "mso valid from %s until %s",
			mso.ValidityInfo.ValidFrom.Format(time.RFC3339), mso.ValidityInfo.ValidUntil.Format(time.RFC3339))
	}

	claims, vErr := disclosedClaims(doc.IssuerSigned.NameSpaces, mso.ValueDigests)
	if vErr != nil {
		return nil, "", vErr
	}

	deviceKey, err := mso.DeviceKeyInfo.DeviceKey.publicKey()
	if err != nil {
		return nil, "", validator.NewError(validator.KindMalformedPresentation, err)
	}

	if vErr = verifyDeviceAuth(doc, transcript, deviceKey); vErr != nil {
		return nil, "", vErr
	}

	thumbprint, err := validator.Thumbprint(&jose.JSONWebKey{Key: deviceKey})
	if err != nil {
		return nil, "", validator.NewError(validator.KindInternal, err)
	}

	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return nil, "", validator.NewError(validator.KindInternal, err)
	}

	signed := mso.ValidityInfo.Signed.Time
	validFrom := mso.ValidityInfo.ValidFrom.Time
	validUntil := mso.ValidityInfo.ValidUntil.Time

	return &validator.Credential{
		Format:            verifiable.MsoMdoc,
		Issuer:            issuerCert.Subject.String(),
		Doctype:           doc.DocType,
		IssuedAt:          &signed,
		NotBefore:         &validFrom,
		ExpiresAt:         &validUntil,
		Claims:            claims,
		ClaimsJSON:        claimsJSON,
		SignatureVerified: true,
		HolderBound:       true,
	}, thumbprint, nil
}

func (v *Validator) issuerCertificate(auth *coseSign1, now time.Time) (*x509.Certificate, error) {
	chain, err := auth.x5chain()
	if err != nil {
		return nil, err
	}

	if v.roots == nil {
		return chain[0], nil
	}

	intermediates := x509.NewCertPool()
	for _, c := range chain[1:] {
		intermediates.AddCert(c)
	}

	_, err = chain[0].Verify(x509.VerifyOptions{
		Roots:         v.roots,
		Intermediates: intermediates,
		CurrentTime:   now,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	if err != nil {
		return nil, fmt.Errorf("issuer certificate chain: %w", err)
	}

	return chain[0], nil
}

func decodeMSO(payload []byte) (*mobileSecurityObject, error) {
	content, err := unwrapEncoded(payload)
	if err != nil {
		return nil, fmt.Errorf("mso: %w", err)
	}

	var mso mobileSecurityObject
	if err = cbor.Unmarshal(content, &mso); err != nil {
		return nil, fmt.Errorf("decode mso: %w", err)
	}

	return &mso, nil
}

// disclosedClaims checks every disclosed item against its signed digest and returns the
// {namespace: {element: value}} claims document.
func disclosedClaims(
	nameSpaces map[string][]cbor.RawMessage,
	digests map[string]map[uint64][]byte,
) (map[string]interface{}, *validator.Error) {
	claims := make(map[string]interface{}, len(nameSpaces))

	for ns, items := range nameSpaces {
		elements := make(map[string]interface{}, len(items))

		for _, raw := range items {
			content, err := unwrapEncoded(raw)
			if err != nil {
				return nil, validator.Errorf(validator.KindMalformedPresentation, "namespace %s: %w", ns, err)
			}

			var item issuerSignedItem
			if err = cbor.Unmarshal(content, &item); err != nil {
				return nil, validator.Errorf(validator.KindMalformedPresentation, "namespace %s: %w", ns, err)
			}

			expectedDigest, ok := digests[ns][item.DigestID]
			if !ok {
				return nil, validator.Errorf(validator.KindSignatureInvalid,
					"no signed digest for %s/%s", ns, item.ElementIdentifier)
			}

			actual := sha256.Sum256(raw)
			if !bytes.Equal(actual[:], expectedDigest) {
				return nil, validator.Errorf(validator.KindSignatureInvalid,
					"digest mismatch for %s/%s", ns, item.ElementIdentifier)
			}

			elements[item.ElementIdentifier] = normalize(item.ElementValue)
		}

		claims[ns] = elements
	}

	return claims, nil
}

func verifyDeviceAuth(doc *document, transcript []byte, deviceKey *ecdsa.PublicKey) *validator.Error {
	if doc.DeviceSigned == nil || doc.DeviceSigned.DeviceAuth.DeviceSignature == nil {
		return validator.Errorf(validator.KindHolderBindingFailed, "device signature is missing")
	}

	payload, err := deviceAuthenticationBytes(transcript, doc.DocType, doc.DeviceSigned.NameSpaces)
	if err != nil {
		return validator.NewError(validator.KindInternal, err)
	}

	if err = doc.DeviceSigned.DeviceAuth.DeviceSignature.verify(deviceKey, payload); err != nil {
		return validator.Errorf(validator.KindHolderBindingFailed,
			"device signature over the session transcript: %w", err)
	}

	return nil
}

// deviceAuthenticationBytes encodes #6.24(bstr .cbor DeviceAuthentication).
func deviceAuthenticationBytes(transcript []byte, docType string, deviceNameSpaces cbor.RawMessage) ([]byte, error) {
	if len(deviceNameSpaces) == 0 {
		return nil, errors.New("device namespaces are missing")
	}

	deviceAuth, err := cbor.Marshal([]interface{}{
		"DeviceAuthentication",
		cbor.RawMessage(transcript),
		docType,
		deviceNameSpaces,
	})
	if err != nil {
		return nil, fmt.Errorf("encode device authentication: %w", err)
	}

	return cbor.Marshal(cbor.Tag{Number: tagEncodedCBOR, Content: deviceAuth})
}

// SessionTranscript encodes the OpenID4VP session transcript [null, null, handover] for the
// expected presentation context.
func SessionTranscript(expected *validator.Expected) ([]byte, error) {
	var thumbprint interface{}
	if len(expected.JWKThumbprint) > 0 {
		thumbprint = expected.JWKThumbprint
	}

	identifier := handoverRedirect
	info := []interface{}{expected.ClientID, expected.Nonce, thumbprint, expected.ResponseURI}

	if expected.Channel.IsDCAPI() {
		identifier = handoverDCAPI
		info = []interface{}{expected.Origin, expected.Nonce, thumbprint}
	}

	infoBytes, err := cbor.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encode handover info: %w", err)
	}

	hash := sha256.Sum256(infoBytes)

	return cbor.Marshal([]interface{}{nil, nil, []interface{}{identifier, hash[:]}})
}

// normalize converts decoded CBOR values into JSON compatible values.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}

		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}

		return out
	case []byte:
		return base64.RawURLEncoding.EncodeToString(t)
	case cbor.Tag:
		return normalize(t.Content)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return t
	}
}
