/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-jose/go-jose/v3"
	tlsutils "github.com/trustbloc/cmdutil-go/pkg/utils/tls"
	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

const httpClientTimeout = 10 * time.Second

// Configuration for the vp-verifier-rest API server.
type Configuration struct {
	RootCAs *x509.CertPool
	// TrustedRoots verifies issuer x5c chains. Nil disables chain based key discovery.
	TrustedRoots *x509.CertPool
	// KeyResolver resolves issuer keys by issuer and kid. Nil when no issuer keys are configured.
	KeyResolver       validator.KeyResolver
	HTTPClient        *http.Client
	Tracer            trace.Tracer
	Version           string
	StartupParameters *startupParameters
}

func prepareConfiguration(parameters *startupParameters, tracer trace.Tracer) (*Configuration, error) {
	rootCAs, err := tlsutils.GetCertPool(parameters.tlsParameters.systemCertPool, parameters.tlsParameters.caCerts)
	if err != nil {
		return nil, err
	}

	conf := &Configuration{
		RootCAs: rootCAs,
		HTTPClient: &http.Client{
			Timeout: httpClientTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{RootCAs: rootCAs, MinVersion: tls.VersionTLS12},
			},
		},
		Tracer:            tracer,
		StartupParameters: parameters,
	}

	if len(parameters.trustedIssuerCerts) > 0 {
		conf.TrustedRoots, err = tlsutils.GetCertPool(false, parameters.trustedIssuerCerts)
		if err != nil {
			return nil, fmt.Errorf("load trusted issuer certificates: %w", err)
		}
	}

	if parameters.issuerKeysFile != "" {
		resolver, err := loadIssuerKeys(parameters.issuerKeysFile)
		if err != nil {
			return nil, err
		}

		conf.KeyResolver = resolver
	}

	return conf, nil
}

// loadIssuerKeys reads a {"<issuer>": {"keys": [<jwk>...]}} document.
func loadIssuerKeys(path string) (validator.StaticKeyResolver, error) {
	b, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("read issuer keys file: %w", err)
	}

	var sets map[string]jose.JSONWebKeySet

	if err = json.Unmarshal(b, &sets); err != nil {
		return nil, fmt.Errorf("parse issuer keys file: %w", err)
	}

	resolver := validator.StaticKeyResolver{}

	for issuer, set := range sets {
		for i := range set.Keys {
			if !set.Keys[i].Valid() || !set.Keys[i].IsPublic() {
				return nil, fmt.Errorf("issuer %s: key %d is not a valid public key", issuer, i)
			}
		}

		resolver[issuer] = set.Keys
	}

	return resolver, nil
}
