/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"fmt"
)

// Format is a credential format identifier as used by DCQL credential queries.
type Format string

const (
	JwtVCJson Format = "jwt_vc_json"
	SDJWTVC   Format = "dc+sd-jwt"
	MsoMdoc   Format = "mso_mdoc"
	LdpVC     Format = "ldp_vc"

	// LegacySDJWTVC is the media type used by SD-JWT VC drafts before the "dc+sd-jwt" rename.
	LegacySDJWTVC Format = "vc+sd-jwt"
)

var knownFormats = map[Format]struct{}{ //nolint:gochecknoglobals
	JwtVCJson:     {},
	SDJWTVC:       {},
	MsoMdoc:       {},
	LdpVC:         {},
	LegacySDJWTVC: {},
}

// ParseFormat returns the Format for the given identifier.
func ParseFormat(s string) (Format, error) {
	f := Format(s)

	if _, ok := knownFormats[f]; !ok {
		return "", fmt.Errorf("unsupported credential format: %s", s)
	}

	return f, nil
}

// IsSDJWT reports whether the format is a selectively disclosable JWT VC.
func (f Format) IsSDJWT() bool {
	return f == SDJWTVC || f == LegacySDJWTVC
}

// Canonical maps legacy aliases to their current identifier.
func (f Format) Canonical() Format {
	if f == LegacySDJWTVC {
		return SDJWTVC
	}

	return f
}

func (f Format) String() string {
	return string(f)
}
