/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package dcql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ClaimsPath is a claims path pointer. Elements are a string (object key), a non-negative
// int (array index) or nil (every element of the selected array).
type ClaimsPath []any

// UnmarshalJSON normalizes JSON numbers to int indexes.
func (p *ClaimsPath) UnmarshalJSON(b []byte) error {
	var raw []any

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode claims path: %w", err)
	}

	path := make(ClaimsPath, len(raw))

	for i, el := range raw {
		switch v := el.(type) {
		case nil, string:
			path[i] = v
		case json.Number:
			n, err := v.Int64()
			if err != nil || n < 0 {
				return fmt.Errorf("claims path element %d: %q is not a non-negative integer", i, v.String())
			}

			path[i] = int(n)
		default:
			return fmt.Errorf("claims path element %d: unsupported type %T", i, el)
		}
	}

	*p = path

	return nil
}

func (p ClaimsPath) validate() error {
	if len(p) == 0 {
		return fmt.Errorf("claims path must not be empty")
	}

	for i, el := range p {
		switch v := el.(type) {
		case nil, string:
		case int:
			if v < 0 {
				return fmt.Errorf("claims path element %d: negative index %d", i, v)
			}
		default:
			return fmt.Errorf("claims path element %d: unsupported type %T", i, el)
		}
	}

	return nil
}

// String renders the path as a JSON array, e.g. ["address","street_address"].
func (p ClaimsPath) String() string {
	parts := make([]string, 0, len(p))

	for _, el := range p {
		switch v := el.(type) {
		case nil:
			parts = append(parts, "null")
		case string:
			parts = append(parts, strconv.Quote(v))
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}

	return "[" + strings.Join(parts, ",") + "]"
}

// Resolve selects the claim values addressed by the path in the given JSON document.
// It returns false when nothing is selected.
func (p ClaimsPath) Resolve(doc []byte) ([]gjson.Result, bool) {
	current := []gjson.Result{gjson.ParseBytes(doc)}

	for _, el := range p {
		var next []gjson.Result

		for _, node := range current {
			switch v := el.(type) {
			case string:
				if r, ok := objectField(node, v); ok {
					next = append(next, r)
				}
			case int:
				if node.IsArray() {
					if arr := node.Array(); v < len(arr) {
						next = append(next, arr[v])
					}
				}
			case nil:
				if node.IsArray() {
					next = append(next, node.Array()...)
				}
			}
		}

		if len(next) == 0 {
			return nil, false
		}

		current = next
	}

	return current, true
}

// objectField looks the key up literally, so keys containing gjson path syntax are safe.
func objectField(node gjson.Result, key string) (gjson.Result, bool) {
	if !node.IsObject() {
		return gjson.Result{}, false
	}

	var (
		found gjson.Result
		ok    bool
	)

	node.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found, ok = v, true

			return false
		}

		return true
	})

	return found, ok
}
