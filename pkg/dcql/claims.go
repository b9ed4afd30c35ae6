/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dcql

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// CheckClaims checks that the disclosed claims document contains the claims requested by the
// credential query and that restricted claims carry one of the allowed values.
//
// When claim_sets is present it is enough that all claims of one claim set pass.
func CheckClaims(cq *CredentialQuery, claims []byte) error {
	if len(cq.Claims) == 0 {
		return nil
	}

	results := make(map[string]error, len(cq.Claims))

	for i := range cq.Claims {
		c := &cq.Claims[i]

		err := checkClaim(c, claims)

		if len(cq.ClaimSets) == 0 && err != nil {
			return err
		}

		results[c.ID] = err
	}

	if len(cq.ClaimSets) == 0 {
		return nil
	}

	var firstErr error

	for _, set := range cq.ClaimSets {
		setErr := firstFailure(set, results)
		if setErr == nil {
			return nil
		}

		if firstErr == nil {
			firstErr = setErr
		}
	}

	return fmt.Errorf("no claim set satisfied: %w", firstErr)
}

func firstFailure(set []string, results map[string]error) error {
	for _, id := range set {
		if err, ok := results[id]; ok && err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: unknown claim id %q", ErrMissingClaim, id)
		}
	}

	return nil
}

func checkClaim(c *ClaimsQuery, claims []byte) error {
	values, ok := c.Path.Resolve(claims)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingClaim, c.Path)
	}

	if len(c.Values) == 0 {
		return nil
	}

	for _, v := range values {
		for _, allowed := range c.Values {
			if valueEquals(v, allowed) {
				return nil
			}
		}
	}

	return fmt.Errorf("%w: %s", ErrDisallowedValue, c.Path)
}

func valueEquals(v gjson.Result, allowed any) bool {
	switch a := allowed.(type) {
	case string:
		return v.Type == gjson.String && v.Str == a
	case bool:
		return (v.Type == gjson.True && a) || (v.Type == gjson.False && !a)
	case float64:
		return v.Type == gjson.Number && v.Num == a
	case int:
		return v.Type == gjson.Number && v.Num == float64(a)
	case int64:
		return v.Type == gjson.Number && v.Num == float64(a)
	case json.Number:
		f, err := a.Float64()

		return err == nil && v.Type == gjson.Number && v.Num == f
	default:
		return false
	}
}
