/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package vptoken parses the OpenID4VP vp_token of a DCQL response: a JSON object mapping
// credential query ids to the presentations submitted for them.
package vptoken

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/valyala/fastjson"
)

var (
	ErrMalformed        = errors.New("malformed vp_token")
	ErrDuplicateQueryID = errors.New("duplicate credential query id in vp_token")
)

// Entry holds the presentations submitted for one credential query id, in submission order.
type Entry struct {
	QueryID       string
	Presentations []string
}

// Bundle is a parsed vp_token. Entries keep the order in which the ids first appear.
type Bundle struct {
	entries []Entry
}

// Parse parses a vp_token JSON object. A value is either an array of presentations or a single
// presentation. String presentations are kept as is, JSON object presentations as compact JSON.
func Parse(b []byte) (*Bundle, error) {
	var p fastjson.Parser

	v, err := p.ParseBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	obj, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformed)
	}

	bundle := &Bundle{}
	seen := make(map[string]struct{}, obj.Len())

	var visitErr error

	obj.Visit(func(key []byte, val *fastjson.Value) {
		if visitErr != nil {
			return
		}

		id := string(key)

		if _, dup := seen[id]; dup {
			visitErr = fmt.Errorf("%w: %s", ErrDuplicateQueryID, id)

			return
		}

		seen[id] = struct{}{}

		presentations, err := presentationsOf(val)
		if err != nil {
			visitErr = fmt.Errorf("%w: query %s: %w", ErrMalformed, id, err)

			return
		}

		bundle.entries = append(bundle.entries, Entry{QueryID: id, Presentations: presentations})
	})

	if visitErr != nil {
		return nil, visitErr
	}

	return bundle, nil
}

func presentationsOf(val *fastjson.Value) ([]string, error) {
	if val.Type() != fastjson.TypeArray {
		p, err := presentationOf(val)
		if err != nil {
			return nil, err
		}

		return []string{p}, nil
	}

	items, _ := val.Array() //nolint:errcheck

	presentations := make([]string, 0, len(items))

	for i, item := range items {
		p, err := presentationOf(item)
		if err != nil {
			return nil, fmt.Errorf("presentation %d: %w", i, err)
		}

		presentations = append(presentations, p)
	}

	return presentations, nil
}

func presentationOf(val *fastjson.Value) (string, error) {
	switch val.Type() { //nolint:exhaustive
	case fastjson.TypeString:
		return string(val.GetStringBytes()), nil
	case fastjson.TypeObject:
		return string(val.MarshalTo(nil)), nil
	default:
		return "", fmt.Errorf("unexpected presentation type %s", val.Type())
	}
}

// FromMap builds a bundle from a map. Ids are ordered lexicographically since maps carry no order.
func FromMap(m map[string][]string) *Bundle {
	ids := make([]string, 0, len(m))

	for id := range m {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	bundle := &Bundle{}

	for _, id := range ids {
		bundle.Add(id, m[id]...)
	}

	return bundle
}

// Add appends presentations for the id, creating the entry on first use.
func (b *Bundle) Add(queryID string, presentations ...string) {
	for i := range b.entries {
		if b.entries[i].QueryID == queryID {
			b.entries[i].Presentations = append(b.entries[i].Presentations, presentations...)

			return
		}
	}

	b.entries = append(b.entries, Entry{QueryID: queryID, Presentations: append([]string{}, presentations...)})
}

// Entries returns the entries in first-appearance order.
func (b *Bundle) Entries() []Entry {
	return b.entries
}

// QueryIDs returns the ids in first-appearance order.
func (b *Bundle) QueryIDs() []string {
	ids := make([]string, 0, len(b.entries))

	for _, e := range b.entries {
		ids = append(ids, e.QueryID)
	}

	return ids
}

// Get returns the presentations submitted for the id.
func (b *Bundle) Get(queryID string) ([]string, bool) {
	for _, e := range b.entries {
		if e.QueryID == queryID {
			return e.Presentations, true
		}
	}

	return nil, false
}

// Len returns the number of entries.
func (b *Bundle) Len() int {
	return len(b.entries)
}

// ToMap returns the bundle as a map.
func (b *Bundle) ToMap() map[string][]string {
	m := make(map[string][]string, len(b.entries))

	for _, e := range b.entries {
		m[e.QueryID] = e.Presentations
	}

	return m
}

// MarshalJSON writes the bundle as a JSON object keeping entry order.
func (b *Bundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, e := range b.entries {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(e.QueryID)
		if err != nil {
			return nil, err
		}

		presentations := e.Presentations
		if presentations == nil {
			presentations = []string{}
		}

		val, err := json.Marshal(presentations)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON parses the bundle with Parse.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}

	b.entries = parsed.entries

	return nil
}
