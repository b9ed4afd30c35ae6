/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Format
		wantErr bool
	}{
		{name: "jwt vc", in: "jwt_vc_json", want: JwtVCJson},
		{name: "sd-jwt vc", in: "dc+sd-jwt", want: SDJWTVC},
		{name: "legacy sd-jwt vc", in: "vc+sd-jwt", want: LegacySDJWTVC},
		{name: "mdoc", in: "mso_mdoc", want: MsoMdoc},
		{name: "ldp", in: "ldp_vc", want: LdpVC},
		{name: "unknown", in: "jwt_vc_json-ld", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unsupported credential format")
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_IsSDJWT(t *testing.T) {
	assert.True(t, SDJWTVC.IsSDJWT())
	assert.True(t, LegacySDJWTVC.IsSDJWT())
	assert.False(t, JwtVCJson.IsSDJWT())
	assert.False(t, MsoMdoc.IsSDJWT())

	assert.Equal(t, SDJWTVC, LegacySDJWTVC.Canonical())
	assert.Equal(t, MsoMdoc, MsoMdoc.Canonical())
}
