/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
)

// DefaultLeeway is the clock skew tolerated on time claims.
const DefaultLeeway = time.Minute

// CheckTimes validates exp, nbf and iat of JWT claims against now.
func CheckTimes(c *jwt.Claims, now time.Time, leeway time.Duration) *Error {
	if err := c.ValidateWithLeeway(jwt.Expected{Time: now}, leeway); err != nil {
		return NewError(KindExpired, err)
	}

	return nil
}

// TimePtr converts a JWT numeric date to a time pointer.
func TimePtr(d *jwt.NumericDate) *time.Time {
	if d == nil {
		return nil
	}

	t := d.Time().UTC()

	return &t
}
