/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resterr

import (
	"fmt"
	"net/http"
)

// ErrorCode is a generic error code for failures that are not covered by OpenID4VP codes.
type ErrorCode string

const (
	SystemError     ErrorCode = "system-error"
	InvalidValue    ErrorCode = "invalid-value"
	DoesntExist     ErrorCode = "doesnt-exist"
	ConditionNotMet ErrorCode = "condition-not-met"
)

// Error is an RFC error with a generic error code.
type Error = RFCError[ErrorCode]

// NewSystemError returns an internal server error raised by the given component.
func NewSystemError(component Component, operation string, err error) *Error {
	return &Error{
		ErrorCode:      SystemError,
		ErrorComponent: component,
		Operation:      operation,
		HTTPStatus:     http.StatusInternalServerError,
		Err:            err,
	}
}

// NewValidationError returns a bad request error for an invalid request value.
func NewValidationError(code ErrorCode, incorrectValue string, err error) *Error {
	return &Error{
		ErrorCode:      code,
		IncorrectValue: incorrectValue,
		HTTPStatus:     http.StatusBadRequest,
		Err:            fmt.Errorf("invalid value for %s: %w", incorrectValue, err),
	}
}
