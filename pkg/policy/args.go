/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"encoding/json"
	"errors"
	"fmt"
)

var errMissingArgs = errors.New("policy arguments are required")

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return errMissingArgs
	}

	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("decode policy arguments: %w", err)
	}

	return nil
}

// stringOrList accepts "a" or ["a","b"].
type stringOrList []string

func (s *stringOrList) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*s = []string{single}

		return nil
	}

	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("expected a string or a list of strings: %w", err)
	}

	*s = list

	return nil
}
