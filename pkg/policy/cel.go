/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

type celArgs struct {
	Expression string `json:"expression"`
}

func (a *celArgs) UnmarshalJSON(b []byte) error {
	var expr string
	if err := json.Unmarshal(b, &expr); err == nil {
		a.Expression = expr

		return nil
	}

	type plain celArgs

	return json.Unmarshal(b, (*plain)(a))
}

// CELPolicy evaluates a boolean CEL expression. Variables: credential (disclosed claims, VC scope
// only), presentation, query_id and scope.
type CELPolicy struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewCELPolicy returns a CEL policy with its compilation environment.
func NewCELPolicy() (*CELPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("credential", cel.DynType),
		cel.Variable("presentation", cel.DynType),
		cel.Variable("query_id", cel.StringType),
		cel.Variable("scope", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("cel environment: %w", err)
	}

	return &CELPolicy{env: env, programs: map[string]cel.Program{}}, nil
}

func (*CELPolicy) Name() string    { return "cel" }
func (*CELPolicy) Scopes() []Scope { return []Scope{ScopeVP, ScopeVC} }

func (p *CELPolicy) Run(_ context.Context, args json.RawMessage, in *Input) (interface{}, error) {
	var a celArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	if a.Expression == "" {
		return nil, errors.New("cel expression is empty")
	}

	prg, err := p.program(a.Expression)
	if err != nil {
		return nil, err
	}

	vars, err := celVars(in)
	if err != nil {
		return nil, err
	}

	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, fmt.Errorf("evaluate cel expression: %w", err)
	}

	ok, isBool := out.Value().(bool)
	if !isBool {
		return nil, fmt.Errorf("cel expression returned %T, expected bool", out.Value())
	}

	if !ok {
		return nil, fmt.Errorf("cel expression %q evaluated to false", a.Expression)
	}

	return map[string]interface{}{"expression": a.Expression}, nil
}

func (p *CELPolicy) program(expr string) (cel.Program, error) {
	p.mu.RLock()
	prg, ok := p.programs[expr]
	p.mu.RUnlock()

	if ok {
		return prg, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if prg, ok = p.programs[expr]; ok {
		return prg, nil
	}

	ast, iss := p.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile cel expression: %w", iss.Err())
	}

	prg, err := p.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("cel program: %w", err)
	}

	p.programs[expr] = prg

	return prg, nil
}

func celVars(in *Input) (map[string]interface{}, error) {
	presentation, err := toGeneric(in.Presentation)
	if err != nil {
		return nil, err
	}

	var credential interface{} = map[string]interface{}{}
	if in.Credential != nil && in.Credential.Claims != nil {
		credential = in.Credential.Claims
	}

	return map[string]interface{}{
		"credential":   credential,
		"presentation": presentation,
		"query_id":     in.QueryID,
		"scope":        string(in.Scope),
	}, nil
}

func toGeneric(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal cel input: %w", err)
	}

	var out map[string]interface{}
	if err = json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("unmarshal cel input: %w", err)
	}

	return out, nil
}
