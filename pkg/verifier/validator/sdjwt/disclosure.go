/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdjwt

import (
	"crypto"
	"errors"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/models/sdjwt/common"
)

const keyArray = "..."

var errDisclosure = errors.New("invalid disclosure")

type disclosure struct {
	name  string
	value interface{}
	// isArrayElement is set for [salt, value] disclosures, which carry no claim name.
	isArrayElement bool
	used           bool
}

// parseDisclosures decodes disclosures and keys them by their digest under hash.
func parseDisclosures(encoded []string, hash crypto.Hash) (map[string]*disclosure, error) {
	if len(encoded) == 0 {
		return map[string]*disclosure{}, nil
	}

	claims, err := common.GetDisclosureClaims(encoded, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errDisclosure, err)
	}

	out := make(map[string]*disclosure, len(claims))

	for _, c := range claims {
		if c.Name == common.SDKey || c.Name == keyArray {
			return nil, fmt.Errorf("%w: reserved claim name %q", errDisclosure, c.Name)
		}

		h, err := common.GetHash(hash, c.Disclosure)
		if err != nil {
			return nil, fmt.Errorf("%w: digest: %w", errDisclosure, err)
		}

		if _, dup := out[h]; dup {
			return nil, fmt.Errorf("%w: duplicate disclosure", errDisclosure)
		}

		out[h] = &disclosure{name: c.Name, value: c.Value, isArrayElement: c.Name == ""}
	}

	return out, nil
}

// reconstruct replaces digests in v with their disclosures and drops undisclosed ones.
func reconstruct(v interface{}, disclosures map[string]*disclosure) (interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		return reconstructObject(t, disclosures)
	case []interface{}:
		return reconstructArray(t, disclosures)
	default:
		return v, nil
	}
}

func reconstructObject(obj map[string]interface{}, disclosures map[string]*disclosure) (interface{}, error) {
	out := make(map[string]interface{}, len(obj))

	for k, val := range obj {
		if k == common.SDKey || k == common.SDAlgorithmKey {
			continue
		}

		r, err := reconstruct(val, disclosures)
		if err != nil {
			return nil, err
		}

		out[k] = r
	}

	digests, err := common.GetDisclosureDigests(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errDisclosure, err)
	}

	for h := range digests {
		d, found := disclosures[h]
		if !found {
			continue
		}

		if d.used || d.isArrayElement {
			return nil, fmt.Errorf("%w: digest referenced more than once or in the wrong place", errDisclosure)
		}

		if _, exists := out[d.name]; exists {
			return nil, fmt.Errorf("%w: claim %q disclosed over an existing claim", errDisclosure, d.name)
		}

		d.used = true

		r, err := reconstruct(d.value, disclosures)
		if err != nil {
			return nil, err
		}

		out[d.name] = r
	}

	return out, nil
}

func reconstructArray(arr []interface{}, disclosures map[string]*disclosure) (interface{}, error) {
	out := make([]interface{}, 0, len(arr))

	for _, item := range arr {
		if ref, ok := item.(map[string]interface{}); ok && len(ref) == 1 {
			if h, isRef := ref[keyArray].(string); isRef {
				d, found := disclosures[h]
				if !found {
					continue
				}

				if d.used || !d.isArrayElement {
					return nil, fmt.Errorf("%w: digest referenced more than once or in the wrong place", errDisclosure)
				}

				d.used = true

				r, err := reconstruct(d.value, disclosures)
				if err != nil {
					return nil, err
				}

				out = append(out, r)

				continue
			}
		}

		r, err := reconstruct(item, disclosures)
		if err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	return out, nil
}
