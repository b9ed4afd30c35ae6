/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package version_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/trustbloc/vp-verifier/pkg/restapi/v1/version"
)

func TestController(t *testing.T) {
	e := echo.New()

	version.RegisterHandlers(e, version.NewController(version.Config{
		Version:          "v1.2.3",
		CredentialFormat: []string{"dc+sd-jwt", "mso_mdoc"},
		Policies:         []string{"signature"},
	}))

	t.Run("version", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"version":"v1.2.3"}`, rec.Body.String())
	})

	t.Run("system", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version/system", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"version":"v1.2.3","credential_formats":["dc+sd-jwt","mso_mdoc"],`+
			`"policies":["signature"]}`, rec.Body.String())
	})
}
