/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vpverification

import (
	"bytes"
	"encoding/json"

	"github.com/trustbloc/vp-verifier/pkg/dcql"
	"github.com/trustbloc/vp-verifier/pkg/policy"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

// ValidatedPresentation is a presentation accepted for a credential query.
type ValidatedPresentation struct {
	QueryID      string                  `json:"query_id"`
	Index        int                     `json:"index"`
	Presentation *validator.Presentation `json:"presentation"`
}

// QueryResult holds the outcome of every verified presentation of one credential query id, in
// submission order.
type QueryResult struct {
	Validated []*ValidatedPresentation `json:"validated"`
	Errors    []*PresentationError     `json:"errors,omitempty"`
}

// AggregatedResult maps credential query ids, in the order they first appeared in the vp_token,
// to their results.
type AggregatedResult struct {
	order   []string
	entries map[string]*QueryResult
}

func newAggregatedResult() *AggregatedResult {
	return &AggregatedResult{entries: map[string]*QueryResult{}}
}

func (r *AggregatedResult) entry(queryID string) *QueryResult {
	e, ok := r.entries[queryID]
	if !ok {
		e = &QueryResult{Validated: []*ValidatedPresentation{}}
		r.entries[queryID] = e
		r.order = append(r.order, queryID)
	}

	return e
}

func (r *AggregatedResult) addValidated(v *ValidatedPresentation) {
	e := r.entry(v.QueryID)
	e.Validated = append(e.Validated, v)
}

func (r *AggregatedResult) addError(err *PresentationError) {
	e := r.entry(err.QueryID)
	e.Errors = append(e.Errors, err)
}

// QueryIDs returns the verified credential query ids in order of first appearance.
func (r *AggregatedResult) QueryIDs() []string {
	return append([]string(nil), r.order...)
}

// Get returns the result of a credential query id.
func (r *AggregatedResult) Get(queryID string) (*QueryResult, bool) {
	e, ok := r.entries[queryID]

	return e, ok
}

// SatisfiedIDs returns the ids with at least one validated presentation.
func (r *AggregatedResult) SatisfiedIDs() dcql.IDSet {
	ids := dcql.NewIDSet()

	for id, e := range r.entries {
		if len(e.Validated) > 0 {
			ids[id] = struct{}{}
		}
	}

	return ids
}

// HasErrors reports whether any presentation was rejected.
func (r *AggregatedResult) HasErrors() bool {
	for _, e := range r.entries {
		if len(e.Errors) > 0 {
			return true
		}
	}

	return false
}

// Errors returns every presentation error ordered by query id then submission index.
func (r *AggregatedResult) Errors() []*PresentationError {
	var errs []*PresentationError

	for _, id := range r.order {
		errs = append(errs, r.entries[id].Errors...)
	}

	return errs
}

// Presented returns the validated presentations grouped by query id, in order.
func (r *AggregatedResult) Presented() []policy.QueryPresentations {
	presented := make([]policy.QueryPresentations, 0, len(r.order))

	for _, id := range r.order {
		e := r.entries[id]
		if len(e.Validated) == 0 {
			continue
		}

		qp := policy.QueryPresentations{QueryID: id}

		for _, v := range e.Validated {
			qp.Presentations = append(qp.Presentations, v.Presentation)
		}

		presented = append(presented, qp)
	}

	return presented
}

// PresentedMap returns the validated presentations keyed by query id.
func (r *AggregatedResult) PresentedMap() map[string][]*validator.Presentation {
	m := make(map[string][]*validator.Presentation)

	for _, qp := range r.Presented() {
		m[qp.QueryID] = qp.Presentations
	}

	return m
}

// MarshalJSON writes the result as a JSON object keeping query id order.
func (r *AggregatedResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, id := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(r.entries[id])
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
