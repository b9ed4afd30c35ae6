/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	cmdutils "github.com/trustbloc/cmdutil-go/pkg/utils/cmd"

	"github.com/trustbloc/vp-verifier/cmd/common"
	"github.com/trustbloc/vp-verifier/pkg/dataprotect"
	"github.com/trustbloc/vp-verifier/pkg/event/spi"
	"github.com/trustbloc/vp-verifier/pkg/observability/tracing"
)

const (
	commonEnvVarUsageText = "Alternatively, this can be set with the following environment variable: "

	hostURLFlagName      = "host-url"
	hostURLFlagShorthand = "u"
	hostURLFlagUsage     = "URL to run the vp-verifier-rest instance on. Format: HostName:Port."
	hostURLEnvKey        = "VP_VERIFIER_HOST_URL"

	hostURLExternalFlagName      = "host-url-external"
	hostURLExternalFlagShorthand = "x"
	hostURLExternalEnvKey        = "VP_VERIFIER_HOST_URL_EXTERNAL"
	hostURLExternalFlagUsage     = "This is the URL for the host server as seen externally. Response URIs of " +
		"verification sessions are derived from it. Format: https://<HOST>:<PORT>. " +
		commonEnvVarUsageText + hostURLExternalEnvKey

	clientIDFlagName  = "client-id"
	clientIDEnvKey    = "VP_VERIFIER_CLIENT_ID"
	clientIDFlagUsage = "Default client_id (with client identifier prefix) for sessions created without one. " +
		"Example: x509_san_dns:verifier.example.com. " + commonEnvVarUsageText + clientIDEnvKey

	sessionTTLFlagName  = "session-ttl"
	sessionTTLEnvKey    = "VP_VERIFIER_SESSION_TTL"
	sessionTTLFlagUsage = "How long a verification session accepts a wallet response. Defaults to 5m. " +
		commonEnvVarUsageText + sessionTTLEnvKey

	workersFlagName  = "workers"
	workersEnvKey    = "VP_VERIFIER_WORKERS"
	workersFlagUsage = "Maximum number of presentations verified concurrently per response. Defaults to 4. " +
		commonEnvVarUsageText + workersEnvKey

	strictFlagName  = "fail-on-any-presentation-error"
	strictEnvKey    = "VP_VERIFIER_FAIL_ON_ANY_PRESENTATION_ERROR"
	strictFlagUsage = "Fail the session when any presentation is rejected, even if the DCQL query is still " +
		"fulfilled. Possible values [true] [false]. Defaults to false. " + commonEnvVarUsageText + strictEnvKey

	leewayFlagName  = "credential-leeway"
	leewayEnvKey    = "VP_VERIFIER_CREDENTIAL_LEEWAY"
	leewayFlagUsage = "Clock skew tolerated when checking credential and key binding times. " +
		"Defaults to the validator default. " + commonEnvVarUsageText + leewayEnvKey

	issuerKeysFlagName  = "issuer-keys-file"
	issuerKeysEnvKey    = "VP_VERIFIER_ISSUER_KEYS_FILE"
	issuerKeysFlagUsage = "Path to a JSON file mapping issuer identifiers to their JWK sets. " +
		commonEnvVarUsageText + issuerKeysEnvKey

	trustedIssuerCertsFlagName  = "trusted-issuer-certs"
	trustedIssuerCertsEnvKey    = "VP_VERIFIER_TRUSTED_ISSUER_CERTS"
	trustedIssuerCertsFlagUsage = "Comma-Separated list of PEM certificate paths trusted as issuer x5c roots " +
		"(SD-JWT VC, JWT VC and mdoc IACA). " + commonEnvVarUsageText + trustedIssuerCertsEnvKey

	webhookURLFlagName  = "webhook-url"
	webhookURLEnvKey    = "VP_VERIFIER_WEBHOOK_URL"
	webhookURLFlagUsage = "Relying party URL session events are posted to (optional). " +
		commonEnvVarUsageText + webhookURLEnvKey

	verifierTopicFlagName  = "verifier-event-topic"
	verifierTopicEnvKey    = "VP_VERIFIER_EVENT_TOPIC"
	verifierTopicFlagUsage = "The name of the verification session event topic. " +
		commonEnvVarUsageText + verifierTopicEnvKey

	apiKeyFlagName  = "api-key"
	apiKeyEnvKey    = "VP_VERIFIER_API_KEY"
	apiKeyFlagUsage = "API key required in the X-API-Key header of the relying party endpoints " +
		"(session initiation, session info and log levels). Wallet endpoints stay public. " +
		commonEnvVarUsageText + apiKeyEnvKey

	sessionEncryptionKeyFlagName  = "session-encryption-key"
	sessionEncryptionKeyEnvKey    = "VP_VERIFIER_SESSION_ENCRYPTION_KEY"
	sessionEncryptionKeyFlagUsage = "Base64 encoded 16, 24 or 32 byte key that wraps the data keys of sessions " +
		"stored in redis. Sessions are stored unencrypted when not set. " +
		commonEnvVarUsageText + sessionEncryptionKeyEnvKey

	sessionCompressionFlagName  = "session-compression"
	sessionCompressionEnvKey    = "VP_VERIFIER_SESSION_COMPRESSION"
	sessionCompressionFlagUsage = "Compression applied to encrypted sessions: none, gzip or zstd. Defaults to none. " +
		commonEnvVarUsageText + sessionCompressionEnvKey

	tlsSystemCertPoolFlagName  = "tls-systemcertpool"
	tlsSystemCertPoolFlagUsage = "Use system certificate pool." +
		" Possible values [true] [false]. Defaults to false if not set. " + commonEnvVarUsageText + tlsSystemCertPoolEnvKey
	tlsSystemCertPoolEnvKey = "VP_VERIFIER_TLS_SYSTEMCERTPOOL"

	tlsCACertsFlagName  = "tls-cacerts"
	tlsCACertsFlagUsage = "Comma-Separated list of ca certs path. " + commonEnvVarUsageText + tlsCACertsEnvKey
	tlsCACertsEnvKey    = "VP_VERIFIER_TLS_CACERTS"

	tlsCertificateFlagName  = "tls-certificate"
	tlsCertificateFlagUsage = "TLS certificate for the verifier server. " + commonEnvVarUsageText + tlsCertificateEnvKey
	tlsCertificateEnvKey    = "VP_VERIFIER_TLS_CERTIFICATE"

	tlsKeyFlagName  = "tls-key"
	tlsKeyFlagUsage = "TLS key for the verifier server. " + commonEnvVarUsageText + tlsKeyEnvKey
	tlsKeyEnvKey    = "VP_VERIFIER_TLS_KEY"

	metricsProviderFlagName         = "metrics-provider-name"
	metricsProviderEnvKey           = "VP_VERIFIER_METRICS_PROVIDER_NAME"
	allowedMetricsProviderFlagUsage = "The metrics provider name (for example: 'prometheus' etc.). " +
		commonEnvVarUsageText + metricsProviderEnvKey

	promHTTPURLFlagName             = "prom-http-url"
	promHTTPURLEnvKey               = "VP_VERIFIER_PROM_HTTP_URL"
	allowedPromHTTPURLFlagNameUsage = "URL that exposes the prometheus metrics endpoint. Format: HostName:Port. " +
		commonEnvVarUsageText + promHTTPURLEnvKey

	tracingProviderFlagName  = "tracing-provider"
	tracingProviderEnvKey    = "VP_VERIFIER_TRACING_PROVIDER"
	tracingProviderFlagUsage = "The tracing provider (JAEGER, STDOUT). " +
		commonEnvVarUsageText + tracingProviderEnvKey

	tracingServiceNameFlagName  = "tracing-service-name"
	tracingServiceNameEnvKey    = "VP_VERIFIER_TRACING_SERVICE_NAME"
	tracingServiceNameFlagUsage = "The name of the tracing service. Default: vp-verifier. " +
		commonEnvVarUsageText + tracingServiceNameEnvKey

	tracingSampleRatioFlagName  = "tracing-sample-ratio"
	tracingSampleRatioEnvKey    = "VP_VERIFIER_TRACING_SAMPLE_RATIO"
	tracingSampleRatioFlagUsage = "Fraction of traces recorded, between 0 and 1. Default: every trace. " +
		commonEnvVarUsageText + tracingSampleRatioEnvKey

	metricsProviderPrometheus = "prometheus"
	defaultTracingServiceName = "vp-verifier"
	defaultSessionTTL         = 5 * time.Minute
	defaultWorkers            = 4
)

type startupParameters struct {
	hostURL                         string
	hostURLExternal                 string
	clientID                        string
	dbParameters                    *common.DBParameters
	sessionTTL                      time.Duration
	workers                         int
	failOnAnyPresentationError      bool
	leeway                          time.Duration
	issuerKeysFile                  string
	trustedIssuerCerts              []string
	webhookURL                      string
	verifierEventTopic              string
	apiKey                          string
	sessionProtection               *sessionProtectionParams
	logLevel                        string
	tlsParameters                   *tlsParameters
	metricsProviderName             string
	prometheusMetricsProviderParams *prometheusMetricsProviderParams
	tracingParams                   *tracingParams
}

type sessionProtectionParams struct {
	kek         []byte
	compression string
}

type prometheusMetricsProviderParams struct {
	url string
}

type tracingParams struct {
	exporter    tracing.SpanExporterType
	serviceName string
	sampleRatio float64
}

type tlsParameters struct {
	systemCertPool bool
	caCerts        []string
	serveCertPath  string
	serveKeyPath   string
}

// nolint: funlen
func getStartupParameters(cmd *cobra.Command) (*startupParameters, error) {
	hostURL, err := cmdutils.GetUserSetVarFromString(cmd, hostURLFlagName, hostURLEnvKey, false)
	if err != nil {
		return nil, err
	}

	hostURLExternal := cmdutils.GetUserSetOptionalVarFromString(cmd, hostURLExternalFlagName, hostURLExternalEnvKey)
	if hostURLExternal == "" {
		hostURLExternal = "http://" + hostURL
	}

	dbParams, err := common.DBParams(cmd)
	if err != nil {
		return nil, err
	}

	sessionTTL, err := getDuration(cmd, sessionTTLFlagName, sessionTTLEnvKey, defaultSessionTTL)
	if err != nil {
		return nil, err
	}

	leeway, err := getDuration(cmd, leewayFlagName, leewayEnvKey, 0)
	if err != nil {
		return nil, err
	}

	workers, err := getInt(cmd, workersFlagName, workersEnvKey, defaultWorkers)
	if err != nil {
		return nil, err
	}

	strict, err := getBool(cmd, strictFlagName, strictEnvKey)
	if err != nil {
		return nil, err
	}

	tlsParams, err := getTLS(cmd)
	if err != nil {
		return nil, err
	}

	metricsProviderName := cmdutils.GetUserSetOptionalVarFromString(cmd, metricsProviderFlagName,
		metricsProviderEnvKey)

	var promParams *prometheusMetricsProviderParams

	switch metricsProviderName {
	case "":
	case metricsProviderPrometheus:
		promParams, err = getPrometheusMetricsProviderParams(cmd)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported metrics provider: %s", metricsProviderName)
	}

	tracingParams, err := getTracingParams(cmd)
	if err != nil {
		return nil, err
	}

	sessionProtection, err := getSessionProtectionParams(cmd)
	if err != nil {
		return nil, err
	}

	verifierTopic := cmdutils.GetUserSetOptionalVarFromString(cmd, verifierTopicFlagName, verifierTopicEnvKey)
	if verifierTopic == "" {
		verifierTopic = spi.SessionEventTopic
	}

	return &startupParameters{
		hostURL:                    hostURL,
		hostURLExternal:            hostURLExternal,
		clientID:                   cmdutils.GetUserSetOptionalVarFromString(cmd, clientIDFlagName, clientIDEnvKey),
		dbParameters:               dbParams,
		sessionTTL:                 sessionTTL,
		workers:                    workers,
		failOnAnyPresentationError: strict,
		leeway:                     leeway,
		issuerKeysFile: cmdutils.GetUserSetOptionalVarFromString(cmd, issuerKeysFlagName,
			issuerKeysEnvKey),
		trustedIssuerCerts: cmdutils.GetUserSetOptionalVarFromArrayString(cmd, trustedIssuerCertsFlagName,
			trustedIssuerCertsEnvKey),
		webhookURL:         cmdutils.GetUserSetOptionalVarFromString(cmd, webhookURLFlagName, webhookURLEnvKey),
		verifierEventTopic: verifierTopic,
		apiKey:             cmdutils.GetUserSetOptionalVarFromString(cmd, apiKeyFlagName, apiKeyEnvKey),
		sessionProtection:  sessionProtection,
		logLevel: cmdutils.GetUserSetOptionalVarFromString(cmd, common.LogLevelFlagName,
			common.LogLevelEnvKey),
		tlsParameters:                   tlsParams,
		metricsProviderName:             metricsProviderName,
		prometheusMetricsProviderParams: promParams,
		tracingParams:                   tracingParams,
	}, nil
}

func getPrometheusMetricsProviderParams(cmd *cobra.Command) (*prometheusMetricsProviderParams, error) {
	promMetricsURL, err := cmdutils.GetUserSetVarFromString(cmd, promHTTPURLFlagName, promHTTPURLEnvKey, false)
	if err != nil {
		return nil, err
	}

	return &prometheusMetricsProviderParams{url: promMetricsURL}, nil
}

func getSessionProtectionParams(cmd *cobra.Command) (*sessionProtectionParams, error) {
	encodedKey := cmdutils.GetUserSetOptionalVarFromString(cmd, sessionEncryptionKeyFlagName,
		sessionEncryptionKeyEnvKey)
	compression := cmdutils.GetUserSetOptionalVarFromString(cmd, sessionCompressionFlagName, sessionCompressionEnvKey)

	if _, err := dataprotect.NewCompressor(compression); err != nil {
		return nil, err
	}

	if encodedKey == "" {
		return nil, nil //nolint:nilnil
	}

	kek, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid session encryption key: %w", err)
	}

	if _, err = dataprotect.NewKeyWrapper(kek); err != nil {
		return nil, fmt.Errorf("invalid session encryption key: %w", err)
	}

	return &sessionProtectionParams{kek: kek, compression: compression}, nil
}

func getTLS(cmd *cobra.Command) (*tlsParameters, error) {
	tlsSystemCertPool, err := getBool(cmd, tlsSystemCertPoolFlagName, tlsSystemCertPoolEnvKey)
	if err != nil {
		return nil, err
	}

	tlsCACerts := cmdutils.GetUserSetOptionalVarFromArrayString(cmd, tlsCACertsFlagName, tlsCACertsEnvKey)
	tlsServeCertPath := cmdutils.GetUserSetOptionalVarFromString(cmd, tlsCertificateFlagName, tlsCertificateEnvKey)
	tlsServeKeyPath := cmdutils.GetUserSetOptionalVarFromString(cmd, tlsKeyFlagName, tlsKeyEnvKey)

	return &tlsParameters{
		systemCertPool: tlsSystemCertPool,
		caCerts:        tlsCACerts,
		serveCertPath:  tlsServeCertPath,
		serveKeyPath:   tlsServeKeyPath,
	}, nil
}

func getTracingParams(cmd *cobra.Command) (*tracingParams, error) {
	serviceName := cmdutils.GetUserSetOptionalVarFromString(cmd, tracingServiceNameFlagName, tracingServiceNameEnvKey)
	if serviceName == "" {
		serviceName = defaultTracingServiceName
	}

	params := &tracingParams{
		exporter:    cmdutils.GetUserSetOptionalVarFromString(cmd, tracingProviderFlagName, tracingProviderEnvKey),
		serviceName: serviceName,
	}

	if ratio := cmdutils.GetUserSetOptionalVarFromString(cmd, tracingSampleRatioFlagName,
		tracingSampleRatioEnvKey); ratio != "" {
		v, err := strconv.ParseFloat(ratio, 64)
		if err != nil || v < 0 || v > 1 {
			return nil, fmt.Errorf("invalid value [%s] for %s: must be a number between 0 and 1",
				ratio, tracingSampleRatioFlagName)
		}

		params.sampleRatio = v
	}

	switch params.exporter {
	case tracing.None, tracing.Jaeger, tracing.Stdout:
		return params, nil
	default:
		return nil, fmt.Errorf("unsupported tracing provider: %s", params.exporter)
	}
}

func getDuration(cmd *cobra.Command, flagName, envKey string,
	defaultDuration time.Duration) (time.Duration, error) {
	timeoutStr := cmdutils.GetUserSetOptionalVarFromString(cmd, flagName, envKey)
	if timeoutStr == "" {
		return defaultDuration, nil
	}

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return -1, fmt.Errorf("invalid value [%s]: %w", timeoutStr, err)
	}

	return timeout, nil
}

func getInt(cmd *cobra.Command, flagName, envKey string, defaultValue int) (int, error) {
	str := cmdutils.GetUserSetOptionalVarFromString(cmd, flagName, envKey)
	if str == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(str)
	if err != nil {
		return -1, fmt.Errorf("invalid value [%s] for %s: %w", str, flagName, err)
	}

	if value <= 0 {
		return -1, fmt.Errorf("%s must be positive", flagName)
	}

	return value, nil
}

func getBool(cmd *cobra.Command, flagName, envKey string) (bool, error) {
	str := cmdutils.GetUserSetOptionalVarFromString(cmd, flagName, envKey)
	if str == "" {
		return false, nil
	}

	return strconv.ParseBool(str)
}

func createFlags(startCmd *cobra.Command) {
	common.Flags(startCmd)

	startCmd.Flags().StringP(hostURLFlagName, hostURLFlagShorthand, "", hostURLFlagUsage)
	startCmd.Flags().StringP(hostURLExternalFlagName, hostURLExternalFlagShorthand, "", hostURLExternalFlagUsage)
	startCmd.Flags().StringP(clientIDFlagName, "", "", clientIDFlagUsage)
	startCmd.Flags().StringP(sessionTTLFlagName, "", "", sessionTTLFlagUsage)
	startCmd.Flags().StringP(workersFlagName, "", "", workersFlagUsage)
	startCmd.Flags().StringP(strictFlagName, "", "", strictFlagUsage)
	startCmd.Flags().StringP(leewayFlagName, "", "", leewayFlagUsage)
	startCmd.Flags().StringP(issuerKeysFlagName, "", "", issuerKeysFlagUsage)
	startCmd.Flags().StringSliceP(trustedIssuerCertsFlagName, "", []string{}, trustedIssuerCertsFlagUsage)
	startCmd.Flags().StringP(webhookURLFlagName, "", "", webhookURLFlagUsage)
	startCmd.Flags().StringP(verifierTopicFlagName, "", "", verifierTopicFlagUsage)
	startCmd.Flags().StringP(apiKeyFlagName, "", "", apiKeyFlagUsage)
	startCmd.Flags().StringP(sessionEncryptionKeyFlagName, "", "", sessionEncryptionKeyFlagUsage)
	startCmd.Flags().StringP(sessionCompressionFlagName, "", "", sessionCompressionFlagUsage)
	startCmd.Flags().StringP(tlsSystemCertPoolFlagName, "", "", tlsSystemCertPoolFlagUsage)
	startCmd.Flags().StringSliceP(tlsCACertsFlagName, "", []string{}, tlsCACertsFlagUsage)
	startCmd.Flags().StringP(tlsCertificateFlagName, "", "", tlsCertificateFlagUsage)
	startCmd.Flags().StringP(tlsKeyFlagName, "", "", tlsKeyFlagUsage)
	startCmd.Flags().StringP(common.LogLevelFlagName, common.LogLevelFlagShorthand, "",
		common.LogLevelPrefixFlagUsage)
	startCmd.Flags().StringP(metricsProviderFlagName, "", "", allowedMetricsProviderFlagUsage)
	startCmd.Flags().StringP(promHTTPURLFlagName, "", "", allowedPromHTTPURLFlagNameUsage)
	startCmd.Flags().StringP(tracingProviderFlagName, "", "", tracingProviderFlagUsage)
	startCmd.Flags().StringP(tracingServiceNameFlagName, "", "", tracingServiceNameFlagUsage)
	startCmd.Flags().StringP(tracingSampleRatioFlagName, "", "", tracingSampleRatioFlagUsage)
}
