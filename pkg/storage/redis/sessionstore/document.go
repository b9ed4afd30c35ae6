/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sessionstore

import (
	"encoding/json"
	"time"

	"github.com/trustbloc/vp-verifier/pkg/dataprotect"
	"github.com/trustbloc/vp-verifier/pkg/session"
)

// sessionDocument holds either the plain session or, when a data protector is configured, the
// sealed session JSON.
type sessionDocument struct {
	Session   *session.Session           `json:"session,omitempty"`
	Protected *dataprotect.EncryptedData `json:"protected,omitempty"`
	ExpireAt  time.Time                  `json:"expireAt"`
}

func (d *sessionDocument) MarshalBinary() ([]byte, error) {
	return json.Marshal(d)
}

func (d *sessionDocument) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, d)
}
