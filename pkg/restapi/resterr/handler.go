/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resterr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/trustbloc/logutil-go/pkg/log"
)

var logger = log.New("rest-err")

type statusError interface {
	error
	StatusCode() int
}

// HTTPErrorHandler renders handler errors. RFC errors are written as their JSON encoding, echo
// errors as {"message": ...}, and anything else as a generic system error.
func HTTPErrorHandler(err error, c echo.Context) {
	code, message := processError(err)

	logger.Errorc(c.Request().Context(), "Request failed",
		log.WithHTTPStatus(code), log.WithURL(c.Request().RequestURI), log.WithError(err))

	sendResponse(c, code, message)
}

func sendResponse(c echo.Context, code int, message interface{}) {
	if c.Response().Committed {
		return
	}

	var err error

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, message)
	}

	if err != nil {
		logger.Errorc(c.Request().Context(), "Write http response", log.WithError(err))
	}
}

func processError(err error) (int, interface{}) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := httpErr.Message
		if strMsg, ok := message.(string); ok {
			message = map[string]interface{}{
				"message": strMsg,
			}
		}

		return httpErr.Code, message
	}

	var statusErr statusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode(), statusErr
	}

	return http.StatusInternalServerError, map[string]interface{}{
		"error":             SystemError,
		"error_description": "internal server error",
	}
}
