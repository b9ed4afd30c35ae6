/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package logapi changes the log levels of a running vp-verifier-rest instance.
package logapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/restapi/resterr"
)

const (
	logLevelsPath = "/loglevels"

	maxSpecSize = 4096
)

var logger = log.New("logapi")

type router interface {
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// Controller serves POST /loglevels with a body such as "session=DEBUG:policy-evaluator=WARNING:INFO".
type Controller struct {
	setSpec func(spec string) error
}

// NewController returns a controller that applies specs through the process wide log registry.
func NewController() *Controller {
	return &Controller{setSpec: log.SetSpec}
}

// RegisterHandlers registers the log level route on r.
func RegisterHandlers(r router, c *Controller) {
	r.POST(logLevelsPath, c.PostLogLevels)
}

// PostLogLevels updates log levels.
// (POST /loglevels).
func (c *Controller) PostLogLevels(ctx echo.Context) error {
	b, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxSpecSize))
	if err != nil {
		return resterr.NewSystemError(resterr.LogAPIComponent, "read-body", fmt.Errorf("failed to read body: %w", err))
	}

	spec := strings.TrimSpace(string(b))
	if spec == "" {
		return resterr.NewValidationError(resterr.InvalidValue, "spec", errors.New("log spec is empty"))
	}

	if err = c.setSpec(spec); err != nil {
		return resterr.NewValidationError(resterr.InvalidValue, "spec", fmt.Errorf("failed to set log spec: %w", err))
	}

	logger.Info("log levels modified", logfields.WithAdditionalMessage(spec))

	return ctx.NoContent(http.StatusOK)
}
