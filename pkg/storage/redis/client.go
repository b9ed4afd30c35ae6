/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout = 15 * time.Second
)

type clientOpts struct {
	masterName    string
	username      string
	password      string
	tlsConfig     *tls.Config
	timeout       time.Duration
	keyPrefix     string
	traceProvider trace.TracerProvider
}

// ClientOpt configures the redis client.
type ClientOpt func(opts *clientOpts)

// WithTraceProvider instruments redis commands with OpenTelemetry spans.
func WithTraceProvider(traceProvider trace.TracerProvider) ClientOpt {
	return func(opts *clientOpts) {
		opts.traceProvider = traceProvider
	}
}

// WithMasterName selects a sentinel-backed failover client for the given master.
func WithMasterName(masterName string) ClientOpt {
	return func(opts *clientOpts) {
		opts.masterName = masterName
	}
}

// WithUsername sets the ACL user name.
func WithUsername(username string) ClientOpt {
	return func(opts *clientOpts) {
		opts.username = username
	}
}

// WithPassword sets the password.
func WithPassword(password string) ClientOpt {
	return func(opts *clientOpts) {
		opts.password = password
	}
}

// WithTLSConfig enables TLS.
func WithTLSConfig(tlsConfig *tls.Config) ClientOpt {
	return func(opts *clientOpts) {
		opts.tlsConfig = tlsConfig
	}
}

// WithKeyPrefix namespaces every key so that several verifier deployments can share one redis.
func WithKeyPrefix(prefix string) ClientOpt {
	return func(opts *clientOpts) {
		opts.keyPrefix = prefix
	}
}

// WithTimeout bounds the initial ping and every store operation.
func WithTimeout(timeout time.Duration) ClientOpt {
	return func(opts *clientOpts) {
		opts.timeout = timeout
	}
}

// Client wraps a universal redis client together with the per-operation timeout and the key
// namespace.
type Client struct {
	client    redis.UniversalClient
	timeout   time.Duration
	keyPrefix string
}

// New connects to redis and pings it. A sentinel failover client is used when a master name is
// set, a cluster client for two or more addresses and a single node client otherwise.
func New(addrs []string, opts ...ClientOpt) (*Client, error) {
	opt := &clientOpts{
		timeout: defaultTimeout,
	}

	for _, f := range opts {
		f(opt)
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:                 addrs,
		ContextTimeoutEnabled: true,
		MasterName:            opt.masterName,
		Username:              opt.username,
		Password:              opt.password,
		TLSConfig:             opt.tlsConfig,
	})

	if opt.traceProvider != nil {
		err := redisotel.InstrumentTracing(client, redisotel.WithTracerProvider(opt.traceProvider))
		if err != nil {
			return nil, fmt.Errorf("instrument with tracing: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), opt.timeout)
	defer cancel()

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{
		client:    client,
		timeout:   opt.timeout,
		keyPrefix: opt.keyPrefix,
	}, nil
}

// Key returns name inside the client's key namespace.
func (c *Client) Key(name string) string {
	return c.keyPrefix + name
}

// KeyPrefix returns the key namespace.
func (c *Client) KeyPrefix() string {
	return c.keyPrefix
}

// ContextWithTimeout derives a context bounded by the client timeout. The parent's values
// (trace spans) are kept, its cancellation is not.
func (c *Client) ContextWithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	return context.WithTimeout(context.WithoutCancel(parent), c.timeout)
}

// API returns the underlying redis client.
func (c *Client) API() redis.UniversalClient {
	return c.client
}

// Ping checks the connection. It is used by the health check.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	return nil
}

// Close closes the client.
func (c *Client) Close() error {
	return c.client.Close()
}
