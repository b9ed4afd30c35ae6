/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"errors"
	"fmt"

	"github.com/trustbloc/vp-verifier/pkg/dcql"
)

// CheckQuery matches a verified credential against the meta constraints and requested claims of a
// credential query. It returns nil when cq is nil.
func CheckQuery(cq *dcql.CredentialQuery, cred *Credential) *Error {
	if cq == nil {
		return nil
	}

	if err := dcql.MatchMeta(cq.Format, cq.Meta, cred.Identity()); err != nil {
		return NewError(KindCredentialTypeMismatch, err)
	}

	if cq.RequiresHolderBinding() && !cred.HolderBound {
		return NewError(KindHolderBindingFailed,
			fmt.Errorf("credential query %s requires cryptographic holder binding", cq.ID))
	}

	if err := dcql.CheckClaims(cq, cred.ClaimsJSON); err != nil {
		switch {
		case errors.Is(err, dcql.ErrDisallowedValue):
			return NewError(KindDisallowedValue, err)
		default:
			return NewError(KindMissingClaim, err)
		}
	}

	return nil
}

// CheckPresentationQuery runs CheckQuery for every credential of p.
func CheckPresentationQuery(cq *dcql.CredentialQuery, p *Presentation) *Error {
	if len(p.Credentials) == 0 {
		return Errorf(KindMalformedPresentation, "presentation contains no credentials")
	}

	for i := range p.Credentials {
		if err := CheckQuery(cq, &p.Credentials[i]); err != nil {
			return err
		}
	}

	return nil
}
