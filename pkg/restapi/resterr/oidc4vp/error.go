/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package oidc4vp

import (
	"net/http"

	"github.com/trustbloc/vp-verifier/pkg/restapi/resterr"
)

// ErrorCode is an OpenID4VP error code.
type ErrorCode string

const (
	InvalidRequest      ErrorCode = "invalid_request"
	InvalidPresentation ErrorCode = "invalid_presentation"
	AccessDenied        ErrorCode = "access_denied"
	SessionNotFound     ErrorCode = "session_not_found"
	InvalidSessionState ErrorCode = "invalid_session_state"
)

// Error represents an OpenID4VP error.
type Error = resterr.RFCError[ErrorCode]

func NewInvalidRequestError(err error) *Error {
	return &Error{
		ErrorCode:  InvalidRequest,
		Err:        err,
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewInvalidPresentationError(err error) *Error {
	return &Error{
		ErrorCode:  InvalidPresentation,
		Err:        err,
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewAccessDeniedError(err error) *Error {
	return &Error{
		ErrorCode:  AccessDenied,
		Err:        err,
		HTTPStatus: http.StatusForbidden,
	}
}

func NewSessionNotFoundError(err error) *Error {
	return &Error{
		ErrorCode:  SessionNotFound,
		Err:        err,
		HTTPStatus: http.StatusNotFound,
	}
}

// NewInvalidSessionStateError is returned for expired sessions and for sessions that already
// received a response.
func NewInvalidSessionStateError(err error) *Error {
	return &Error{
		ErrorCode:  InvalidSessionState,
		Err:        err,
		HTTPStatus: http.StatusConflict,
	}
}
