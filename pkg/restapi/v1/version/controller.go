/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package version

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// Config carries the build version and the OpenID4VP capabilities the verifier advertises.
type Config struct {
	Version          string
	CredentialFormat []string
	Policies         []string
}

// Controller serves GET /version and GET /version/system.
type Controller struct {
	cfg Config
}

type versionResponse struct {
	Version string `json:"version"`
}

type systemResponse struct {
	Version           string   `json:"version"`
	CredentialFormats []string `json:"credential_formats"`
	Policies          []string `json:"policies"`
}

func NewController(cfg Config) *Controller {
	return &Controller{cfg: cfg}
}

// RegisterHandlers registers the version routes on r.
func RegisterHandlers(r router, c *Controller) {
	r.GET("/version", c.Version)
	r.GET("/version/system", c.System)
}

// Version returns the build version.
// (GET /version).
func (c *Controller) Version(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, versionResponse{Version: c.cfg.Version})
}

// System returns the build version with the supported credential formats and policies.
// (GET /version/system).
func (c *Controller) System(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, systemResponse{
		Version:           c.cfg.Version,
		CredentialFormats: c.cfg.CredentialFormat,
		Policies:          c.cfg.Policies,
	})
}
