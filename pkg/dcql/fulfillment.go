/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dcql

import (
	"github.com/samber/lo"
)

// IDSet is a set of credential query ids.
type IDSet map[string]struct{}

// NewIDSet returns a set holding the given ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))

	for _, id := range ids {
		s[id] = struct{}{}
	}

	return s
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]

	return ok
}

// CheckFulfillment checks that the ids with at least one validated presentation satisfy the query.
//
// Without credential_sets every credential query is required. With credential_sets every required
// set needs one option whose ids are all satisfied; optional sets never fail the check.
func CheckFulfillment(q *Query, satisfied IDSet) error {
	if len(q.CredentialSets) == 0 {
		missing := lo.Filter(q.IDs(), func(id string, _ int) bool {
			return !satisfied.Has(id)
		})

		if len(missing) > 0 {
			return &FulfillmentError{MissingIDs: missing}
		}

		return nil
	}

	var unmet []UnmetCredentialSet

	for i := range q.CredentialSets {
		set := &q.CredentialSets[i]

		ok, missing := satisfiedOption(set, satisfied)
		if ok || !set.IsRequired() {
			continue
		}

		unmet = append(unmet, UnmetCredentialSet{
			Index:   i,
			Options: set.Options,
			Missing: missing,
		})
	}

	if len(unmet) > 0 {
		return &FulfillmentError{UnmetSets: unmet}
	}

	return nil
}

// SatisfiedOptionalSets returns the indexes of optional credential sets that are satisfied.
func SatisfiedOptionalSets(q *Query, satisfied IDSet) []int {
	var idx []int

	for i := range q.CredentialSets {
		set := &q.CredentialSets[i]

		if set.IsRequired() {
			continue
		}

		if ok, _ := satisfiedOption(set, satisfied); ok {
			idx = append(idx, i)
		}
	}

	return idx
}

func satisfiedOption(set *CredentialSetQuery, satisfied IDSet) (bool, [][]string) {
	missing := make([][]string, 0, len(set.Options))

	for _, option := range set.Options {
		m := lo.Filter(option, func(id string, _ int) bool {
			return !satisfied.Has(id)
		})

		if len(m) == 0 {
			return true, nil
		}

		missing = append(missing, m)
	}

	return false, missing
}
