/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a presentation was rejected.
type ErrorKind string

const (
	KindSignatureInvalid       ErrorKind = "signature_invalid"
	KindAudienceMismatch       ErrorKind = "audience_mismatch"
	KindNonceMismatch          ErrorKind = "nonce_mismatch"
	KindExpired                ErrorKind = "expired"
	KindMissingClaim           ErrorKind = "missing_claim"
	KindDisallowedValue        ErrorKind = "disallowed_value"
	KindMalformedPresentation  ErrorKind = "malformed_presentation"
	KindUnsupportedFormat      ErrorKind = "unsupported_format"
	KindCredentialTypeMismatch ErrorKind = "credential_type_mismatch"
	KindHolderBindingFailed    ErrorKind = "holder_binding_failed"
	KindInternal               ErrorKind = "internal"
)

// Error is the typed error returned for a rejected presentation.
type Error struct {
	Kind ErrorKind
	Err  error
}

// NewError wraps err with kind.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Errorf creates an Error of the given kind with a formatted message.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so a bare NewError(kind, nil) works as a sentinel.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}

	return other.Err == nil && other.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.Kind
	}

	return KindInternal
}

// AsError returns err as an *Error, classifying foreign errors with kind.
func AsError(err error, kind ErrorKind) *Error {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr
	}

	return NewError(kind, err)
}
