/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifier

import (
	"github.com/labstack/echo/v4"
)

const (
	sessionIDParam = "sessionID"

	// WalletResponsePath is the route wallets post authorization responses to.
	WalletResponsePath = "/verification/:" + sessionIDParam + "/response"
)

// ServerInterface is the verification session API.
type ServerInterface interface {
	InitiateVerification(ctx echo.Context) error
	CheckAuthorizationResponse(ctx echo.Context, sessionID string) error
	GetVerificationInfo(ctx echo.Context, sessionID string) error
}

var _ ServerInterface = (*Controller)(nil)

// EchoRouter is the subset of echo.Echo and echo.Group routes are registered on.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers registers the API routes.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	router.POST("/verification", si.InitiateVerification)
	router.POST(WalletResponsePath, func(ctx echo.Context) error {
		return si.CheckAuthorizationResponse(ctx, ctx.Param(sessionIDParam))
	})
	router.GET("/verification/:"+sessionIDParam+"/info", func(ctx echo.Context) error {
		return si.GetVerificationInfo(ctx, ctx.Param(sessionIDParam))
	})
}
