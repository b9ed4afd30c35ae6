/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dcql

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidQuery    = errors.New("invalid dcql query")
	ErrMissingClaim    = errors.New("missing required claim")
	ErrDisallowedValue = errors.New("disclosed value not in allowed set")
	ErrMetaMismatch    = errors.New("credential does not match query meta")
	ErrNotFulfilled    = errors.New("dcql query not fulfilled")
)

// UnmetCredentialSet describes a required credential set for which no option was satisfied.
type UnmetCredentialSet struct {
	// Index is the position of the set in credential_sets.
	Index   int        `json:"index"`
	Options [][]string `json:"options"`
	// Missing lists, per option, the ids that were not satisfied.
	Missing [][]string `json:"missing"`
}

// FulfillmentError reports why the satisfied credential query ids do not fulfill a query.
type FulfillmentError struct {
	// MissingIDs is set when the query has no credential_sets.
	MissingIDs []string `json:"missing_ids,omitempty"`
	// UnmetSets is set when the query has credential_sets.
	UnmetSets []UnmetCredentialSet `json:"unmet_credential_sets,omitempty"`
}

func (e *FulfillmentError) Error() string {
	if len(e.UnmetSets) == 0 {
		return fmt.Sprintf("%s: missing credential queries [%s]", ErrNotFulfilled, strings.Join(e.MissingIDs, ", "))
	}

	sets := make([]string, 0, len(e.UnmetSets))

	for _, s := range e.UnmetSets {
		sets = append(sets, fmt.Sprintf("#%d options %v", s.Index, s.Options))
	}

	return fmt.Sprintf("%s: unmet required credential sets [%s]", ErrNotFulfilled, strings.Join(sets, "; "))
}

// Is makes errors.Is(err, ErrNotFulfilled) match.
func (e *FulfillmentError) Is(target error) bool {
	return target == ErrNotFulfilled //nolint:errorlint
}

func invalidQueryf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
