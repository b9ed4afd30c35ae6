/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resterr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const internalErrorDescription = "internal server error"

// RFCError is an error rendered as an OAuth 2.0 style {"error", "error_description"} response.
//
// Errors returned to wallets use the public API response: only the code and the description are
// written, and server side failures never expose their cause.
type RFCError[T ~string] struct {
	ErrorCode            T
	ErrorComponent       Component
	Operation            string
	IncorrectValue       string
	HTTPStatus           int
	Err                  error
	usePublicAPIResponse bool
}

type rfcErrorJSON[T ~string] struct {
	ErrorCode      T         `json:"error"`
	Description    string    `json:"error_description,omitempty"`
	Component      Component `json:"component,omitempty"`
	Operation      string    `json:"operation,omitempty"`
	IncorrectValue string    `json:"incorrect_value,omitempty"`
}

// MarshalJSON writes the error response body.
func (e *RFCError[T]) MarshalJSON() ([]byte, error) {
	if e.usePublicAPIResponse {
		description := e.description()
		if e.StatusCode() >= http.StatusInternalServerError {
			description = internalErrorDescription
		}

		return json.Marshal(&rfcErrorJSON[T]{ErrorCode: e.ErrorCode, Description: description})
	}

	return json.Marshal(&rfcErrorJSON[T]{
		ErrorCode:      e.ErrorCode,
		Description:    e.description(),
		Component:      e.ErrorComponent,
		Operation:      e.Operation,
		IncorrectValue: e.IncorrectValue,
	})
}

func (e *RFCError[T]) Error() string {
	var where []string

	if e.ErrorComponent != "" {
		where = append(where, "component: "+string(e.ErrorComponent))
	}

	if e.Operation != "" {
		where = append(where, "operation: "+e.Operation)
	}

	if e.IncorrectValue != "" {
		where = append(where, "incorrect value: "+e.IncorrectValue)
	}

	return fmt.Sprintf("%s[%s]: %v", e.ErrorCode, strings.Join(where, "; "), e.Err)
}

func (e *RFCError[T]) description() string {
	if e.Err == nil {
		return ""
	}

	return e.Err.Error()
}

// UsePublicAPIResponse marks the error as one returned to a wallet.
func (e *RFCError[T]) UsePublicAPIResponse() *RFCError[T] {
	e.usePublicAPIResponse = true

	return e
}

func (e *RFCError[T]) Code() string {
	return string(e.ErrorCode)
}

// StatusCode is the HTTP status the error is rendered with.
func (e *RFCError[T]) StatusCode() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}

	return e.HTTPStatus
}

func (e *RFCError[T]) Unwrap() error {
	return e.Err
}
