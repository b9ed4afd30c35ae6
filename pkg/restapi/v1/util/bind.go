/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package util

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trustbloc/vp-verifier/pkg/restapi/resterr"
)

const requestBody = "requestBody"

// ReadBody binds the request body, reporting bind failures as validation errors.
func ReadBody(ctx echo.Context, body interface{}) error {
	if err := ctx.Bind(body); err != nil {
		return resterr.NewValidationError(resterr.InvalidValue, requestBody, err)
	}

	return nil
}

// ReadForm parses an application/x-www-form-urlencoded body. Query parameters are not merged in.
func ReadForm(ctx echo.Context) (url.Values, error) {
	req := ctx.Request()

	if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationForm) {
		return nil, fmt.Errorf("content type is not %s", echo.MIMEApplicationForm)
	}

	if err := req.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	return req.PostForm, nil
}

// WriteOutput writes output as a 200 JSON response.
func WriteOutput(ctx echo.Context) func(output interface{}, err error) error {
	return WriteOutputWithCode(http.StatusOK, ctx)
}

// WriteOutputWithCode writes output as JSON with the given status. Responses carry session data, so
// they are never cached.
func WriteOutputWithCode(code int, ctx echo.Context) func(output interface{}, err error) error {
	return func(output interface{}, err error) error {
		if err != nil {
			return err
		}

		b, err := json.Marshal(output)
		if err != nil {
			return err
		}

		ctx.Response().Header().Set("Cache-Control", "no-store")

		return ctx.JSONBlob(code, b)
	}
}
