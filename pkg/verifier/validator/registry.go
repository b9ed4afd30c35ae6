/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"github.com/trustbloc/vp-verifier/pkg/doc/verifiable"
)

// Registry maps credential formats to validators. It is populated before use and read-only
// afterwards, so it is safe for concurrent lookups.
type Registry struct {
	validators map[verifiable.Format]Validator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{validators: map[verifiable.Format]Validator{}}
}

// Register binds v to format. The legacy SD-JWT alias resolves to the same validator.
func (r *Registry) Register(format verifiable.Format, v Validator) *Registry {
	r.validators[format.Canonical()] = v

	return r
}

// Resolve returns the validator for format.
func (r *Registry) Resolve(format verifiable.Format) (Validator, error) {
	v, ok := r.validators[format.Canonical()]
	if !ok {
		return nil, Errorf(KindUnsupportedFormat, "no validator for format %q", format)
	}

	return v, nil
}

// Formats returns the registered formats.
func (r *Registry) Formats() []verifiable.Format {
	formats := make([]verifiable.Format, 0, len(r.validators))

	for f := range r.validators {
		formats = append(formats, f)
	}

	return formats
}
