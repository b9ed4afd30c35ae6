/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dcql

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/trustbloc/vp-verifier/pkg/doc/verifiable"
)

// CredentialIdentity is the type information of a validated credential.
type CredentialIdentity struct {
	Vct     string
	Doctype string
	Types   []string
}

// MatchMeta checks the credential type information against the meta of a credential query.
func MatchMeta(format verifiable.Format, meta *Meta, id CredentialIdentity) error {
	if meta == nil {
		return nil
	}

	switch {
	case format.IsSDJWT():
		if len(meta.VctValues) > 0 && !lo.Contains(meta.VctValues, id.Vct) {
			return fmt.Errorf("%w: vct %q not in %v", ErrMetaMismatch, id.Vct, meta.VctValues)
		}
	case format == verifiable.MsoMdoc:
		if meta.DoctypeValue != "" && meta.DoctypeValue != id.Doctype {
			return fmt.Errorf("%w: doctype %q, expected %q", ErrMetaMismatch, id.Doctype, meta.DoctypeValue)
		}
	default:
		if len(meta.TypeValues) == 0 {
			return nil
		}

		for _, types := range meta.TypeValues {
			if lo.Every(id.Types, types) {
				return nil
			}
		}

		return fmt.Errorf("%w: types %v match none of %v", ErrMetaMismatch, id.Types, meta.TypeValues)
	}

	return nil
}
