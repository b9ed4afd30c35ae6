/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mdoc_test

import (
	"crypto/x509"
	"testing"

	"github.com/trustbloc/vp-verifier/pkg/internal/testutil"
)

func x509Pool(t *testing.T, key *testutil.Key) *x509.CertPool {
	t.Helper()

	pool := x509.NewCertPool()
	pool.AddCert(key.SelfSignedCert(t, "unrelated root"))

	return pool
}
