/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel"

	"github.com/trustbloc/vp-verifier/cmd/common"
	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/dataprotect"
	"github.com/trustbloc/vp-verifier/pkg/doc/verifiable"
	"github.com/trustbloc/vp-verifier/pkg/event"
	"github.com/trustbloc/vp-verifier/pkg/locker"
	"github.com/trustbloc/vp-verifier/pkg/notifier"
	"github.com/trustbloc/vp-verifier/pkg/observability/metrics"
	"github.com/trustbloc/vp-verifier/pkg/observability/metrics/noop"
	"github.com/trustbloc/vp-verifier/pkg/observability/metrics/prometheus"
	"github.com/trustbloc/vp-verifier/pkg/observability/tracing"
	vpverificationtracing "github.com/trustbloc/vp-verifier/pkg/observability/tracing/wrappers/vpverification"
	"github.com/trustbloc/vp-verifier/pkg/policy"
	"github.com/trustbloc/vp-verifier/pkg/restapi/resterr"
	"github.com/trustbloc/vp-verifier/pkg/restapi/v1/healthcheck"
	"github.com/trustbloc/vp-verifier/pkg/restapi/v1/logapi"
	"github.com/trustbloc/vp-verifier/pkg/restapi/v1/mw"
	verifierv1 "github.com/trustbloc/vp-verifier/pkg/restapi/v1/verifier"
	"github.com/trustbloc/vp-verifier/pkg/restapi/v1/version"
	"github.com/trustbloc/vp-verifier/pkg/service/vpverification"
	"github.com/trustbloc/vp-verifier/pkg/session"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator/jwtvc"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator/mdoc"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator/sdjwt"
)

var logger = log.New("vp-verifier-rest")

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

type httpServer interface {
	ListenAndServe() error
	ListenAndServeTLS(certFile, keyFile string) error
	Shutdown(ctx context.Context) error
}

type startOpts struct {
	server    httpServer
	version   string
	stopOnCtx context.Context //nolint:containedctx
}

// StartOpts configures the start command.
type StartOpts func(opts *startOpts)

// WithHTTPServer sets the server that serves the echo handler.
func WithHTTPServer(srv httpServer) StartOpts {
	return func(opts *startOpts) {
		opts.server = srv
	}
}

// WithVersion sets the version reported in the startup log.
func WithVersion(version string) StartOpts {
	return func(opts *startOpts) {
		opts.version = version
	}
}

// WithStopContext stops the server when ctx is done, in addition to SIGINT and SIGTERM.
func WithStopContext(ctx context.Context) StartOpts {
	return func(opts *startOpts) {
		opts.stopOnCtx = ctx
	}
}

// GetStartCmd returns the Cobra start command.
func GetStartCmd(opts ...StartOpts) *cobra.Command {
	startCmd := createStartCmd(opts...)

	createFlags(startCmd)

	return startCmd
}

func createStartCmd(opts ...StartOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start vp-verifier-rest",
		Long:  "Start vp-verifier-rest, the OpenID4VP verifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := getStartupParameters(cmd)
			if err != nil {
				return fmt.Errorf("failed to get startup parameters: %w", err)
			}

			return startServer(params, opts...)
		},
	}
}

func startServer(params *startupParameters, opts ...StartOpts) error {
	o := &startOpts{stopOnCtx: context.Background()}

	for _, opt := range opts {
		opt(o)
	}

	common.SetLogLevels(logger, params.logLevel)

	shutdownTracer, tracer, err := tracing.Initialize(tracing.Config{
		Exporter:       params.tracingParams.exporter,
		ServiceName:    params.tracingParams.serviceName,
		ServiceVersion: o.version,
		SampleRatio:    params.tracingParams.sampleRatio,
	})
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}

	defer shutdownTracer()

	conf, err := prepareConfiguration(params, tracer)
	if err != nil {
		return err
	}

	conf.Version = o.version

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = resterr.HTTPErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodHead},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderAccept, echo.HeaderContentType},
	}))

	ready := newReadinessController(e)

	cleanup, err := buildEchoHandler(conf, e)
	if err != nil {
		return err
	}

	defer cleanup()

	srv := o.server
	if srv == nil {
		srv = &http.Server{
			Addr:              params.hostURL,
			Handler:           e,
			ReadHeaderTimeout: readHeaderTimeout,
		}
	}

	logger.Info("Starting vp-verifier-rest server", log.WithURL(params.hostURL),
		logfields.WithAdditionalMessage(o.version))

	return serve(o.stopOnCtx, srv, params.tlsParameters, ready)
}

func serve(stopCtx context.Context, srv httpServer, tlsParams *tlsParameters, ready *readiness) error {
	ctx, stop := signal.NotifyContext(stopCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		if tlsParams.serveCertPath != "" && tlsParams.serveKeyPath != "" {
			errCh <- srv.ListenAndServeTLS(tlsParams.serveCertPath, tlsParams.serveKeyPath)

			return
		}

		errCh <- srv.ListenAndServe()
	}()

	ready.Ready(true)

	select {
	case err := <-errCh:
		ready.Ready(false)

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}

		return nil
	case <-ctx.Done():
		ready.Ready(false)

		logger.Info("Shutting down vp-verifier-rest server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}

// buildEchoHandler wires the verifier components and registers their routes on e. The returned
// func releases the components.
//
//nolint:funlen
func buildEchoHandler(conf *Configuration, e *echo.Echo) (func(), error) {
	params := conf.StartupParameters

	var closers []func()

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	metricsProvider, err := createMetricsProvider(params)
	if err != nil {
		return nil, err
	}

	closers = append(closers, func() {
		if destroyErr := metricsProvider.Destroy(); destroyErr != nil {
			logger.Warn("Failed to destroy metrics provider", log.WithError(destroyErr))
		}
	})

	m := metricsProvider.Metrics()

	if params.apiKey != "" {
		e.Use(mw.APIKeyAuth(params.apiKey, readinessEndpoint, "/healthcheck", "/version", "/version/system",
			verifierv1.WalletResponsePath))
	}

	storeOpts := &common.StoreOptions{TTL: params.sessionTTL}

	if params.tracingParams.exporter != tracing.None {
		storeOpts.TraceProvider = otel.GetTracerProvider()
	}

	if params.sessionProtection != nil {
		storeOpts.Protector, err = createDataProtector(params.sessionProtection)
		if err != nil {
			cleanup()

			return nil, err
		}
	}

	store, redisClient, err := common.InitStore(params.dbParameters, storeOpts, logger)
	if err != nil {
		cleanup()

		return nil, err
	}

	if redisClient != nil {
		closers = append(closers, func() {
			if closeErr := redisClient.Close(); closeErr != nil {
				logger.Warn("Failed to close redis client", log.WithError(closeErr))
			}
		})
	}

	bus := event.NewEventBus(event.DefaultConfig())
	closers = append(closers, func() { _ = bus.Close() }) //nolint:errcheck

	logSubscriber, err := event.NewEventSubscriber(bus, params.verifierEventTopic, event.LogHandler)
	if err != nil {
		cleanup()

		return nil, fmt.Errorf("subscribe to %s: %w", params.verifierEventTopic, err)
	}

	logSubscriber.Start()

	sinks := []notifier.Sink{notifier.NewEventSink(bus, params.verifierEventTopic)}

	if params.webhookURL != "" {
		sinks = append(sinks, notifier.NewWebhookSink(&notifier.WebhookConfig{
			URL:        params.webhookURL,
			HTTPClient: conf.HTTPClient,
		}))
	}

	sessionConfig := &session.Config{
		Store:    store,
		Notifier: notifier.NewMultiSink(sinks...),
		Metrics:  m,
		TTL:      params.sessionTTL,
	}

	if redisClient != nil {
		sessionConfig.Locker = locker.NewRedisLocker(redisClient.API(), locker.WithKeyPrefix(redisClient.KeyPrefix()))
	}

	stateMachine := session.NewStateMachine(sessionConfig)

	policyOpts := []policy.RegistryOpt{policy.WithHTTPClient(conf.HTTPClient)}

	if conf.KeyResolver != nil || conf.TrustedRoots != nil {
		policyOpts = append(policyOpts, policy.WithStatusListKeys(&validator.IssuerKeys{
			Resolver: conf.KeyResolver,
			Roots:    conf.TrustedRoots,
		}))
	}

	policyRegistry, err := policy.NewDefaultRegistry(policyOpts...)
	if err != nil {
		cleanup()

		return nil, fmt.Errorf("create policy registry: %w", err)
	}

	validators := createValidatorRegistry(conf)

	engine := vpverification.New(&vpverification.Config{
		Registry:                   validators,
		Workers:                    params.workers,
		PolicyEvaluator:            policy.NewEvaluator(&policy.Config{Registry: policyRegistry, Metrics: m}),
		Metrics:                    m,
		FailOnAnyPresentationError: params.failOnAnyPresentationError,
	})

	verifierController := verifierv1.NewController(&verifierv1.Config{
		SessionSvc:      stateMachine,
		VerificationSvc: vpverificationtracing.Wrap(engine, conf.Tracer),
		PolicyRegistry:  policyRegistry,
		Metrics:         m,
		Tracer:          conf.Tracer,
		ExternalURL:     params.hostURLExternal,
		DefaultClientID: params.clientID,
	})

	verifierv1.RegisterHandlers(e, verifierController)

	healthConfig := &healthcheck.Config{EventBus: bus, Version: conf.Version}
	if redisClient != nil {
		healthConfig.Redis = redisClient
	}

	healthcheck.RegisterHandlers(e, healthcheck.NewController(healthConfig))
	logapi.RegisterHandlers(e, logapi.NewController())
	formats := lo.Map(validators.Formats(), func(f verifiable.Format, _ int) string { return string(f) })
	sort.Strings(formats)

	version.RegisterHandlers(e, version.NewController(version.Config{
		Version:          conf.Version,
		CredentialFormat: formats,
		Policies:         policyRegistry.Names(),
	}))

	return cleanup, nil
}

func createValidatorRegistry(conf *Configuration) *validator.Registry {
	params := conf.StartupParameters

	sdJWT := sdjwt.New(&sdjwt.Config{
		KeyResolver:  conf.KeyResolver,
		TrustedRoots: conf.TrustedRoots,
		Leeway:       params.leeway,
	})

	return validator.NewRegistry().
		Register(verifiable.SDJWTVC, sdJWT).
		Register(verifiable.LegacySDJWTVC, sdJWT).
		Register(verifiable.JwtVCJson, jwtvc.New(&jwtvc.Config{
			KeyResolver:  conf.KeyResolver,
			TrustedRoots: conf.TrustedRoots,
			Leeway:       params.leeway,
		})).
		Register(verifiable.MsoMdoc, mdoc.New(&mdoc.Config{
			TrustedRoots: conf.TrustedRoots,
			Leeway:       params.leeway,
		}))
}

func createDataProtector(params *sessionProtectionParams) (*dataprotect.DataProtector, error) {
	wrapper, err := dataprotect.NewKeyWrapper(params.kek)
	if err != nil {
		return nil, fmt.Errorf("session encryption key: %w", err)
	}

	compressor, err := dataprotect.NewCompressor(params.compression)
	if err != nil {
		return nil, err
	}

	return dataprotect.NewDataProtector(&dataprotect.Config{
		KeyWrapper: wrapper,
		Compressor: compressor,
	}), nil
}

func createMetricsProvider(params *startupParameters) (metrics.Provider, error) {
	if params.metricsProviderName != metricsProviderPrometheus {
		return noop.NewProvider(), nil
	}

	provider := prometheus.NewPrometheusProvider(prometheus.NewServer(params.prometheusMetricsProviderParams.url))

	if err := provider.Create(); err != nil {
		return nil, fmt.Errorf("create prometheus provider: %w", err)
	}

	return provider, nil
}
