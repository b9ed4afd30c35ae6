/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mdoc

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

const (
	tagDateTimeString = 0
	tagEpochDateTime  = 1
)

// tdate decodes a CBOR date-time (tag 0 RFC 3339 string or tag 1 epoch seconds).
type tdate struct {
	time.Time
}

func (d *tdate) UnmarshalCBOR(b []byte) error {
	var tag cbor.RawTag
	if err := cbor.Unmarshal(b, &tag); err != nil {
		return fmt.Errorf("decode tdate: %w", err)
	}

	switch tag.Number {
	case tagDateTimeString:
		var s string
		if err := cbor.Unmarshal(tag.Content, &s); err != nil {
			return fmt.Errorf("decode tdate: %w", err)
		}

		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parse tdate: %w", err)
		}

		d.Time = t.UTC()
	case tagEpochDateTime:
		var secs float64
		if err := cbor.Unmarshal(tag.Content, &secs); err != nil {
			return fmt.Errorf("decode tdate: %w", err)
		}

		d.Time = time.Unix(int64(secs), 0).UTC()
	default:
		return fmt.Errorf("unexpected tdate tag %d", tag.Number)
	}

	return nil
}
