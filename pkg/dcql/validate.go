/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dcql

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/trustbloc/vp-verifier/pkg/doc/validator/jsonschema"
	"github.com/trustbloc/vp-verifier/pkg/doc/verifiable"
)

var (
	//go:embed schema/dcql.schema.json
	querySchema []byte

	schemaValidator = jsonschema.NewCache() //nolint:gochecknoglobals

	idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Parse decodes a DCQL query, checks it against the DCQL JSON schema and validates it.
func Parse(b []byte) (*Query, error) {
	if err := schemaValidator.Validate(b, querySchema); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	q := &Query{}

	if err := json.Unmarshal(b, q); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	return q, nil
}

// Validate checks the structural rules of the query that the JSON schema cannot express.
func (q *Query) Validate() error {
	if len(q.Credentials) == 0 {
		return invalidQueryf("credentials must not be empty")
	}

	ids := make(IDSet, len(q.Credentials))

	for i := range q.Credentials {
		cq := &q.Credentials[i]

		if !idPattern.MatchString(cq.ID) {
			return invalidQueryf("credential query id %q is not alphanumeric, underscore or hyphen", cq.ID)
		}

		if ids.Has(cq.ID) {
			return invalidQueryf("duplicate credential query id %q", cq.ID)
		}

		ids[cq.ID] = struct{}{}

		if _, err := verifiable.ParseFormat(string(cq.Format)); err != nil {
			return invalidQueryf("credential query %q: %s", cq.ID, err)
		}

		if err := cq.validateClaims(); err != nil {
			return invalidQueryf("credential query %q: %s", cq.ID, err)
		}
	}

	for i, set := range q.CredentialSets {
		if len(set.Options) == 0 {
			return invalidQueryf("credential set %d: options must not be empty", i)
		}

		for _, option := range set.Options {
			if len(option) == 0 {
				return invalidQueryf("credential set %d: empty option", i)
			}

			for _, id := range option {
				if !ids.Has(id) {
					return invalidQueryf("credential set %d references unknown credential query %q", i, id)
				}
			}
		}
	}

	return nil
}

func (q *CredentialQuery) validateClaims() error {
	claimIDs := make(IDSet, len(q.Claims))

	for i := range q.Claims {
		c := &q.Claims[i]

		if err := c.Path.validate(); err != nil {
			return fmt.Errorf("claim %d: %w", i, err)
		}

		if c.ID == "" {
			if len(q.ClaimSets) > 0 {
				return fmt.Errorf("claim %d: id is required when claim_sets is present", i)
			}

			continue
		}

		if claimIDs.Has(c.ID) {
			return fmt.Errorf("duplicate claim id %q", c.ID)
		}

		claimIDs[c.ID] = struct{}{}
	}

	if len(q.ClaimSets) > 0 && len(q.Claims) == 0 {
		return fmt.Errorf("claim_sets requires claims")
	}

	for i, set := range q.ClaimSets {
		if len(set) == 0 {
			return fmt.Errorf("claim set %d is empty", i)
		}

		for _, id := range set {
			if !claimIDs.Has(id) {
				return fmt.Errorf("claim set %d references unknown claim %q", i, id)
			}
		}
	}

	return nil
}
