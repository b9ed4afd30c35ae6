/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jinzhu/copier"

	"github.com/trustbloc/vp-verifier/pkg/dcql"
	"github.com/trustbloc/vp-verifier/pkg/policy"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

// Snapshot is a detached, serializable view of a session handed to notification sinks and
// returned to relying parties.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	Status       Status `json:"status"`
	StatusReason string `json:"status_reason,omitempty"`
	Attempted    bool   `json:"attempted"`

	ClientID       string       `json:"client_id"`
	ExpectedOrigin string       `json:"expected_origin,omitempty"`
	Audience       string       `json:"audience"`
	ResponseMode   ResponseMode `json:"response_mode"`

	Query                *dcql.Query                          `json:"dcql_query"`
	PolicyResult         *policy.Result                       `json:"policy_results,omitempty"`
	PresentedCredentials map[string][]*validator.Presentation `json:"presented_credentials,omitempty"`
}

// NewSnapshot copies the session into a snapshot detached from the session's state.
func NewSnapshot(s *Session) (*Snapshot, error) {
	view := &Snapshot{}

	if err := copier.Copy(view, s); err != nil {
		return nil, fmt.Errorf("copy session %s: %w", s.ID, err)
	}

	view.Audience = s.Audience()

	doc, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot %s: %w", s.ID, err)
	}

	snap := &Snapshot{}

	if err = json.Unmarshal(doc, snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", s.ID, err)
	}

	return snap, nil
}
