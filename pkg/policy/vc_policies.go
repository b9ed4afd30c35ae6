/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/trustbloc/vp-verifier/pkg/doc/validator/jsonschema"
)

var vcOnly = []Scope{ScopeVC} //nolint:gochecknoglobals

type clock func() time.Time

// SignaturePolicy passes when the credential signature was verified by its format validator.
type SignaturePolicy struct{}

func (SignaturePolicy) Name() string    { return "signature" }
func (SignaturePolicy) Scopes() []Scope { return vcOnly }

func (SignaturePolicy) Run(_ context.Context, _ json.RawMessage, in *Input) (interface{}, error) {
	if !in.Credential.SignatureVerified {
		return nil, errors.New("credential signature was not verified")
	}

	return map[string]interface{}{"verified": true}, nil
}

// ExpiredPolicy fails credentials past their expiration time.
type ExpiredPolicy struct {
	now clock
}

func (ExpiredPolicy) Name() string    { return "expired" }
func (ExpiredPolicy) Scopes() []Scope { return vcOnly }

func (p ExpiredPolicy) Run(_ context.Context, _ json.RawMessage, in *Input) (interface{}, error) {
	if in.Credential.ExpiresAt == nil {
		return map[string]interface{}{"policy_available": false}, nil
	}

	now := p.now()
	exp := *in.Credential.ExpiresAt

	if now.After(exp) {
		return nil, fmt.Errorf("credential expired at %s", exp.Format(time.RFC3339))
	}

	return map[string]interface{}{"expires_at": exp, "expires_in": exp.Sub(now).String()}, nil
}

// NotBeforePolicy fails credentials that are not valid yet.
type NotBeforePolicy struct {
	now clock
}

func (NotBeforePolicy) Name() string    { return "not-before" }
func (NotBeforePolicy) Scopes() []Scope { return vcOnly }

func (p NotBeforePolicy) Run(_ context.Context, _ json.RawMessage, in *Input) (interface{}, error) {
	nbf := in.Credential.NotBefore
	if nbf == nil {
		nbf = in.Credential.IssuedAt
	}

	if nbf == nil {
		return map[string]interface{}{"policy_available": false}, nil
	}

	if p.now().Before(*nbf) {
		return nil, fmt.Errorf("credential is not valid before %s", nbf.Format(time.RFC3339))
	}

	return map[string]interface{}{"not_before": *nbf}, nil
}

// AllowedIssuerPolicy passes when the issuer is one of the listed issuers.
type AllowedIssuerPolicy struct{}

func (AllowedIssuerPolicy) Name() string    { return "allowed-issuer" }
func (AllowedIssuerPolicy) Scopes() []Scope { return vcOnly }

func (AllowedIssuerPolicy) Run(_ context.Context, args json.RawMessage, in *Input) (interface{}, error) {
	var allowed stringOrList
	if err := decodeArgs(args, &allowed); err != nil {
		return nil, err
	}

	if !lo.Contains(allowed, in.Credential.Issuer) {
		return nil, fmt.Errorf("issuer %s is not allowed", in.Credential.Issuer)
	}

	return map[string]interface{}{"issuer": in.Credential.Issuer}, nil
}

type regexArgs struct {
	Path      string `json:"path"`
	Regex     string `json:"regex"`
	AllowNull bool   `json:"allowNull"`
}

// RegexPolicy matches a claim selected by a JSON path against a regular expression.
type RegexPolicy struct{}

func (RegexPolicy) Name() string    { return "regex" }
func (RegexPolicy) Scopes() []Scope { return vcOnly }

func (RegexPolicy) Run(_ context.Context, args json.RawMessage, in *Input) (interface{}, error) {
	var a regexArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	re, err := regexp.Compile(a.Regex)
	if err != nil {
		return nil, fmt.Errorf("compile regex: %w", err)
	}

	path := strings.TrimPrefix(strings.TrimPrefix(a.Path, "$"), ".")

	value := gjson.GetBytes(in.Credential.ClaimsJSON, path)
	if !value.Exists() {
		if a.AllowNull {
			return map[string]interface{}{"path": a.Path, "value": nil}, nil
		}

		return nil, fmt.Errorf("no value at %s", a.Path)
	}

	if !re.MatchString(value.String()) {
		return nil, fmt.Errorf("value at %s does not match %s", a.Path, a.Regex)
	}

	return map[string]interface{}{"path": a.Path, "value": value.Value()}, nil
}

// SchemaPolicy validates the disclosed claims against the JSON schema passed as arguments.
type SchemaPolicy struct {
	validator *jsonschema.Cache
}

func (SchemaPolicy) Name() string    { return "schema" }
func (SchemaPolicy) Scopes() []Scope { return vcOnly }

func (p SchemaPolicy) Run(_ context.Context, args json.RawMessage, in *Input) (interface{}, error) {
	if len(args) == 0 {
		return nil, errMissingArgs
	}

	schemaID := gjson.GetBytes(args, "$id").String()
	if schemaID == "" {
		sum := sha256.Sum256(args)
		schemaID = hex.EncodeToString(sum[:])
	}

	if err := p.validator.Validate(in.Credential.ClaimsJSON, args); err != nil {
		return nil, err
	}

	return map[string]interface{}{"schema": schemaID}, nil
}
