/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"context"
	"encoding/json"
	"fmt"
)

var vpOnly = []Scope{ScopeVP} //nolint:gochecknoglobals

// HolderBindingPolicy passes when every credential of the presentation is bound to its holder.
type HolderBindingPolicy struct{}

func (HolderBindingPolicy) Name() string    { return "holder-binding" }
func (HolderBindingPolicy) Scopes() []Scope { return vpOnly }

func (HolderBindingPolicy) Run(_ context.Context, _ json.RawMessage, in *Input) (interface{}, error) {
	for i := range in.Presentation.Credentials {
		if !in.Presentation.Credentials[i].HolderBound {
			return nil, fmt.Errorf("credential %d is not bound to the presentation holder", i)
		}
	}

	return map[string]interface{}{"holder": in.Presentation.Holder}, nil
}

// MinimumCredentialsPolicy requires at least args credentials in the presentation.
type MinimumCredentialsPolicy struct{}

func (MinimumCredentialsPolicy) Name() string    { return "minimum-credentials" }
func (MinimumCredentialsPolicy) Scopes() []Scope { return vpOnly }

func (MinimumCredentialsPolicy) Run(_ context.Context, args json.RawMessage, in *Input) (interface{}, error) {
	var minimum int
	if err := decodeArgs(args, &minimum); err != nil {
		return nil, err
	}

	n := len(in.Presentation.Credentials)
	if n < minimum {
		return nil, fmt.Errorf("presentation has %d credentials, at least %d required", n, minimum)
	}

	return map[string]interface{}{"total": n}, nil
}

// MaximumCredentialsPolicy allows at most args credentials in the presentation.
type MaximumCredentialsPolicy struct{}

func (MaximumCredentialsPolicy) Name() string    { return "maximum-credentials" }
func (MaximumCredentialsPolicy) Scopes() []Scope { return vpOnly }

func (MaximumCredentialsPolicy) Run(_ context.Context, args json.RawMessage, in *Input) (interface{}, error) {
	var maximum int
	if err := decodeArgs(args, &maximum); err != nil {
		return nil, err
	}

	n := len(in.Presentation.Credentials)
	if n > maximum {
		return nil, fmt.Errorf("presentation has %d credentials, at most %d allowed", n, maximum)
	}

	return map[string]interface{}{"total": n}, nil
}
