/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package attributeutil

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.opentelemetry.io/otel/attribute"

	"github.com/trustbloc/vp-verifier/pkg/doc/vptoken"
)

const redacted = "[REDACTED]"

type options struct {
	redacted []string
}

// Opt configures an attribute.
type Opt func(*options)

// WithRedacted replaces the value at key with [REDACTED]. For JSON attributes key is a gjson path
// (https://github.com/tidwall/gjson/blob/master/SYNTAX.md), for form attributes a parameter name.
func WithRedacted(key string) Opt {
	return func(o *options) {
		o.redacted = append(o.redacted, key)
	}
}

func newOptions(opts []Opt) *options {
	o := &options{}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// JSON returns an attribute holding value marshaled to JSON. A value that cannot be marshaled
// yields an empty attribute.
func JSON(key string, value interface{}, opts ...Opt) attribute.KeyValue {
	b, err := json.Marshal(value)
	if err != nil {
		return attribute.KeyValue{Key: attribute.Key(key)}
	}

	for _, path := range newOptions(opts).redacted {
		if !gjson.GetBytes(b, path).Exists() {
			continue
		}

		if out, setErr := sjson.SetBytes(b, path, redacted); setErr == nil {
			b = out
		}
	}

	return attribute.String(key, string(b))
}

// FormParams returns an attribute holding params URL encoded in key order.
func FormParams(key string, params url.Values, opts ...Opt) attribute.KeyValue {
	o := newOptions(opts)

	names := lo.Keys(params)
	sort.Strings(names)

	parts := lo.Map(names, func(name string, _ int) string {
		values := params[name]
		if lo.Contains(o.redacted, name) {
			values = []string{redacted}
		}

		return url.Values{name: values}.Encode()
	})

	return attribute.String(key, strings.Join(parts, "&"))
}

// PresentationCounts returns an attribute listing each credential query id with the number of
// presentations submitted for it, e.g. "pid=1,diplomas=2". Presentations are never included.
func PresentationCounts(key string, bundle *vptoken.Bundle) attribute.KeyValue {
	counts := lo.Map(bundle.Entries(), func(e vptoken.Entry, _ int) string {
		return fmt.Sprintf("%s=%d", e.QueryID, len(e.Presentations))
	})

	return attribute.String(key, strings.Join(counts, ","))
}

// RedactedBundle returns the bundle as a JSON attribute with every presentation redacted, e.g.
// {"pid":["[REDACTED]"]}.
func RedactedBundle(key string, bundle *vptoken.Bundle) attribute.KeyValue {
	var opts []Opt

	for _, e := range bundle.Entries() {
		for i := range e.Presentations {
			opts = append(opts, WithRedacted(fmt.Sprintf("%s.%d", escapePath(e.QueryID), i)))
		}
	}

	return JSON(key, bundle, opts...)
}

// escapePath escapes the gjson path characters in a single key.
func escapePath(key string) string {
	var b strings.Builder

	for _, r := range key {
		if strings.ContainsRune(`\.*?|#@!:`, r) {
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	return b.String()
}
