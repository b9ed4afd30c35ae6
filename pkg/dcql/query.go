/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dcql

import (
	"github.com/trustbloc/vp-verifier/pkg/doc/verifiable"
)

// Query is a Digital Credentials Query Language request.
type Query struct {
	// Credentials are the requested credentials. Ids are unique.
	Credentials []CredentialQuery `json:"credentials"`
	// CredentialSets constrain which combinations of Credentials satisfy the request.
	CredentialSets []CredentialSetQuery `json:"credential_sets,omitempty"`
}

// CredentialQuery describes one requested credential.
type CredentialQuery struct {
	ID                 string             `json:"id"`
	Format             verifiable.Format  `json:"format"`
	Multiple           bool               `json:"multiple,omitempty"`
	Meta               *Meta              `json:"meta,omitempty"`
	Claims             []ClaimsQuery      `json:"claims,omitempty"`
	ClaimSets          [][]string         `json:"claim_sets,omitempty"`
	TrustedAuthorities []TrustedAuthority `json:"trusted_authorities,omitempty"`

	RequireCryptographicHolderBinding *bool `json:"require_cryptographic_holder_binding,omitempty"`
}

// CredentialSetQuery is a group of alternative combinations of credential query ids.
type CredentialSetQuery struct {
	Options [][]string `json:"options"`
	// Required defaults to true when omitted.
	Required *bool `json:"required,omitempty"`
}

// IsRequired reports whether the set has to be satisfied.
func (s *CredentialSetQuery) IsRequired() bool {
	return s.Required == nil || *s.Required
}

// Meta holds format specific constraints on the requested credential.
type Meta struct {
	// VctValues is used by dc+sd-jwt.
	VctValues []string `json:"vct_values,omitempty"`
	// DoctypeValue is used by mso_mdoc.
	DoctypeValue string `json:"doctype_value,omitempty"`
	// TypeValues is used by W3C formats. Each entry is a set of types that must all be present.
	TypeValues [][]string `json:"type_values,omitempty"`
}

// ClaimsQuery requests one claim, optionally restricted to a set of values.
type ClaimsQuery struct {
	ID             string     `json:"id,omitempty"`
	Path           ClaimsPath `json:"path"`
	Values         []any      `json:"values,omitempty"`
	IntentToRetain bool       `json:"intent_to_retain,omitempty"`
}

// TrustedAuthorityType identifies the kind of trusted authority reference.
type TrustedAuthorityType string

const (
	AuthorityKeyIdentifier TrustedAuthorityType = "aki"
	EtsiTrustedList        TrustedAuthorityType = "etsi_tl"
	OpenIDFederation       TrustedAuthorityType = "openid_federation"
)

// TrustedAuthority references an authority that certifies issuers.
type TrustedAuthority struct {
	Type   TrustedAuthorityType `json:"type"`
	Values []string             `json:"values"`
}

// RequiresHolderBinding reports whether a holder binding proof is required. Defaults to true.
func (q *CredentialQuery) RequiresHolderBinding() bool {
	return q.RequireCryptographicHolderBinding == nil || *q.RequireCryptographicHolderBinding
}

// CredentialQuery returns the credential query with the given id.
func (q *Query) CredentialQuery(id string) (*CredentialQuery, bool) {
	for i := range q.Credentials {
		if q.Credentials[i].ID == id {
			return &q.Credentials[i], true
		}
	}

	return nil, false
}

// IDs returns the credential query ids in declaration order.
func (q *Query) IDs() []string {
	ids := make([]string, 0, len(q.Credentials))

	for i := range q.Credentials {
		ids = append(ids, q.Credentials[i].ID)
	}

	return ids
}
