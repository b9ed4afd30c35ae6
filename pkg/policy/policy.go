/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package policy evaluates verification policies over the validated presentations of a
// verification session.
package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

// ErrUnknownPolicy is returned when a policy name is not registered.
var ErrUnknownPolicy = errors.New("unknown policy")

// Scope is the level a policy runs at.
type Scope string

const (
	ScopeVP Scope = "vp"
	ScopeVC Scope = "vc"
)

// Input is what a single policy run sees. Credential is nil for the VP scope.
type Input struct {
	Scope           Scope
	QueryID         string
	Presentation    *validator.Presentation
	Credential      *validator.Credential
	CredentialIndex int
}

// Policy is a named verification check. Run returns a nil error on success and an optional
// result document either way.
type Policy interface {
	Name() string
	Scopes() []Scope
	Run(ctx context.Context, args json.RawMessage, in *Input) (interface{}, error)
}

// Spec names a policy and its arguments. It unmarshals from "name" or {"policy":"name","args":...}.
type Spec struct {
	Name string          `json:"policy"`
	Args json.RawMessage `json:"args,omitempty"`
}

type plainSpec Spec

func (s *Spec) UnmarshalJSON(b []byte) error {
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(b, &s.Name)
	}

	if err := json.Unmarshal(b, (*plainSpec)(s)); err != nil {
		return fmt.Errorf("policy spec: %w", err)
	}

	if s.Name == "" {
		return errors.New("policy spec: missing policy name")
	}

	return nil
}

func (s Spec) MarshalJSON() ([]byte, error) {
	if len(s.Args) == 0 {
		return json.Marshal(s.Name)
	}

	return json.Marshal(plainSpec(s))
}

// Set holds the four policy tiers of a session.
type Set struct {
	VPPolicies         []Spec            `json:"vp_policies,omitempty"`
	SpecificVPPolicies map[string][]Spec `json:"specific_vp_policies,omitempty"`
	VCPolicies         []Spec            `json:"vc_policies,omitempty"`
	SpecificVCPolicies map[string][]Spec `json:"specific_vc_policies,omitempty"`
}

// IsEmpty reports whether the set contains no policy at all.
func (s *Set) IsEmpty() bool {
	return s == nil || (len(s.VPPolicies) == 0 && len(s.SpecificVPPolicies) == 0 &&
		len(s.VCPolicies) == 0 && len(s.SpecificVCPolicies) == 0)
}

// Names returns the distinct policy names of the set, sorted.
func (s *Set) Names() []string {
	seen := map[string]struct{}{}

	add := func(specs []Spec) {
		for _, spec := range specs {
			seen[spec.Name] = struct{}{}
		}
	}

	add(s.VPPolicies)
	add(s.VCPolicies)

	for _, specs := range s.SpecificVPPolicies {
		add(specs)
	}

	for _, specs := range s.SpecificVCPolicies {
		add(specs)
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Registry maps policy names to implementations.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{policies: map[string]Policy{}}
}

// Register adds p, replacing any policy with the same name.
func (r *Registry) Register(p Policy) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.policies[p.Name()] = p

	return r
}

// Resolve returns the policy registered under name.
func (r *Registry) Resolve(name string) (Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
	}

	return p, nil
}

// Names returns the registered policy names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.policies)
	sort.Strings(names)

	return names
}

// Validate checks that every policy of the set is registered for the scope it is used in.
func (r *Registry) Validate(set *Set) error {
	check := func(specs []Spec, scope Scope) error {
		for _, spec := range specs {
			p, err := r.Resolve(spec.Name)
			if err != nil {
				return err
			}

			if !supports(p, scope) {
				return fmt.Errorf("policy %s does not support scope %s", spec.Name, scope)
			}
		}

		return nil
	}

	if err := check(set.VPPolicies, ScopeVP); err != nil {
		return err
	}

	if err := check(set.VCPolicies, ScopeVC); err != nil {
		return err
	}

	for _, specs := range set.SpecificVPPolicies {
		if err := check(specs, ScopeVP); err != nil {
			return err
		}
	}

	for _, specs := range set.SpecificVCPolicies {
		if err := check(specs, ScopeVC); err != nil {
			return err
		}
	}

	return nil
}

func supports(p Policy, scope Scope) bool {
	return lo.Contains(p.Scopes(), scope)
}
