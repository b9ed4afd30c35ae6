/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mw

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
)

var logger = log.New("api-key-auth")

const (
	apiKeyHeader = "X-API-Key"
	bearerPrefix = "Bearer "
)

// APIKeyAuth protects the relying party endpoints with a static API key, sent either in the
// X-API-Key header or as a bearer token. Requests whose matched route is one of publicRoutes pass
// without a key. Register it with echo.Use so c.Path() holds the matched route.
func APIKeyAuth(apiKey string, publicRoutes ...string) echo.MiddlewareFunc {
	expected := []byte(apiKey)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if lo.Contains(publicRoutes, c.Path()) {
				return next(c)
			}

			if subtle.ConstantTimeCompare([]byte(presentedKey(c.Request())), expected) != 1 {
				logger.Debugc(c.Request().Context(), "Request rejected: missing or invalid API key",
					logfields.WithRoute(c.Path()))

				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")

				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			return next(c)
		}
	}
}

func presentedKey(req *http.Request) string {
	if key := req.Header.Get(apiKeyHeader); key != "" {
		return key
	}

	if auth := req.Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, bearerPrefix) {
		return strings.TrimPrefix(auth, bearerPrefix)
	}

	return ""
}
