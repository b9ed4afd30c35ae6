/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"crypto/tls"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"
	cmdutils "github.com/trustbloc/cmdutil-go/pkg/utils/cmd"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/dataprotect"
	"github.com/trustbloc/vp-verifier/pkg/session"
	"github.com/trustbloc/vp-verifier/pkg/storage/redis"
	"github.com/trustbloc/vp-verifier/pkg/storage/redis/sessionstore"
)

const (
	// DatabaseURLFlagName is the session store url.
	DatabaseURLFlagName = "database-url"
	// DatabaseURLFlagUsage describes the usage.
	DatabaseURLFlagUsage = "Session store URL. Format must be <driver>:[//]<driver-specific-dsn>." +
		" Examples: 'mem://sessions', 'redis://redis.example.com:6379'," +
		" 'redis://node1:6379,node2:6379' (cluster)." +
		" Supported drivers are [mem, redis]." +
		" Alternatively, this can be set with the following environment variable: " + DatabaseURLEnvKey
	// DatabaseURLEnvKey is the session store url.
	DatabaseURLEnvKey = "DATABASE_URL"

	// DatabaseTimeoutFlagName is the session store timeout.
	DatabaseTimeoutFlagName = "database-timeout"
	// DatabaseTimeoutFlagUsage describes the usage.
	DatabaseTimeoutFlagUsage = "Total time in seconds to wait until the datasource is available before giving up." +
		" Default: 30 seconds." +
		" Alternatively, this can be set with the following environment variable: " + DatabaseTimeoutEnvKey
	// DatabaseTimeoutEnvKey is the session store timeout.
	DatabaseTimeoutEnvKey = "DATABASE_TIMEOUT"

	// RedisPasswordFlagName is the redis password.
	RedisPasswordFlagName = "redis-password"
	// RedisPasswordEnvKey is the redis password.
	RedisPasswordEnvKey = "REDIS_PASSWORD" //nolint:gosec
	// RedisPasswordFlagUsage describes the usage.
	RedisPasswordFlagUsage = "Redis password (optional)." +
		" Alternatively, this can be set with the following environment variable: " + RedisPasswordEnvKey

	// RedisUsernameFlagName is the redis ACL user.
	RedisUsernameFlagName = "redis-username"
	// RedisUsernameEnvKey is the redis ACL user.
	RedisUsernameEnvKey = "REDIS_USERNAME"
	// RedisUsernameFlagUsage describes the usage.
	RedisUsernameFlagUsage = "Redis ACL user name (optional)." +
		" Alternatively, this can be set with the following environment variable: " + RedisUsernameEnvKey

	// RedisKeyPrefixFlagName namespaces the session and lock keys.
	RedisKeyPrefixFlagName = "redis-key-prefix"
	// RedisKeyPrefixEnvKey namespaces the session and lock keys.
	RedisKeyPrefixEnvKey = "REDIS_KEY_PREFIX"
	// RedisKeyPrefixFlagUsage describes the usage.
	RedisKeyPrefixFlagUsage = "Prefix of every redis key written by this verifier, for example 'verifier-a:'." +
		" Alternatively, this can be set with the following environment variable: " + RedisKeyPrefixEnvKey

	// RedisMasterNameFlagName is the redis sentinel master name.
	RedisMasterNameFlagName = "redis-master-name"
	// RedisMasterNameEnvKey is the redis sentinel master name.
	RedisMasterNameEnvKey = "REDIS_MASTER_NAME"
	// RedisMasterNameFlagUsage describes the usage.
	RedisMasterNameFlagUsage = "Redis sentinel master name (optional). A failover client is used when set." +
		" Alternatively, this can be set with the following environment variable: " + RedisMasterNameEnvKey

	// DatabaseTimeoutDefault is the default session store timeout.
	DatabaseTimeoutDefault = 30

	driverMem   = "mem"
	driverRedis = "redis"
)

// DBParameters holds session store configuration.
type DBParameters struct {
	URL        string
	Username   string
	Password   string
	MasterName string
	KeyPrefix  string
	Timeout    uint64
}

// Flags registers common command flags.
func Flags(cmd *cobra.Command) {
	cmd.Flags().StringP(DatabaseURLFlagName, "", "", DatabaseURLFlagUsage)
	cmd.Flags().StringP(DatabaseTimeoutFlagName, "", "", DatabaseTimeoutFlagUsage)
	cmd.Flags().StringP(RedisUsernameFlagName, "", "", RedisUsernameFlagUsage)
	cmd.Flags().StringP(RedisPasswordFlagName, "", "", RedisPasswordFlagUsage)
	cmd.Flags().StringP(RedisKeyPrefixFlagName, "", "", RedisKeyPrefixFlagUsage)
	cmd.Flags().StringP(RedisMasterNameFlagName, "", "", RedisMasterNameFlagUsage)
}

// DBParams fetches the session store parameters configured for this command.
func DBParams(cmd *cobra.Command) (*DBParameters, error) {
	var err error

	params := &DBParameters{}

	params.URL, err = cmdutils.GetUserSetVarFromString(cmd, DatabaseURLFlagName, DatabaseURLEnvKey, false)
	if err != nil {
		return nil, fmt.Errorf("failed to configure dbURL: %w", err)
	}

	params.Username = cmdutils.GetUserSetOptionalVarFromString(cmd, RedisUsernameFlagName, RedisUsernameEnvKey)
	params.Password = cmdutils.GetUserSetOptionalVarFromString(cmd, RedisPasswordFlagName, RedisPasswordEnvKey)
	params.KeyPrefix = cmdutils.GetUserSetOptionalVarFromString(cmd, RedisKeyPrefixFlagName, RedisKeyPrefixEnvKey)
	params.MasterName = cmdutils.GetUserSetOptionalVarFromString(cmd, RedisMasterNameFlagName, RedisMasterNameEnvKey)

	timeout, err := cmdutils.GetUserSetVarFromString(cmd, DatabaseTimeoutFlagName, DatabaseTimeoutEnvKey, true)
	if err != nil && !strings.Contains(err.Error(), "value is empty") {
		return nil, fmt.Errorf("failed to configure dbTimeout: %w", err)
	}

	if timeout == "" {
		timeout = strconv.Itoa(DatabaseTimeoutDefault)
	}

	params.Timeout, err = strconv.ParseUint(timeout, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dbTimeout %s: %w", timeout, err)
	}

	return params, nil
}

// StoreOptions tunes the session store created by InitStore.
type StoreOptions struct {
	// TTL is how long a session document is retained.
	TTL           time.Duration
	TLSConfig     *tls.Config
	TraceProvider trace.TracerProvider
	// Protector seals redis session documents. The memory store keeps sessions unserialized.
	Protector dataprotect.Protector
}

// InitStore opens the session store. The redis client is nil for the in-memory store.
func InitStore(params *DBParameters, opts *StoreOptions, logger *log.Log) (session.Store, *redis.Client, error) {
	driver, addrs, err := parseURL(params.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", params.URL, err)
	}

	switch driver {
	case driverMem:
		return session.NewMemoryStore(), nil, nil
	case driverRedis:
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver: %s", driver)
	}

	clientOpts := []redis.ClientOpt{
		redis.WithUsername(params.Username),
		redis.WithPassword(params.Password),
		redis.WithMasterName(params.MasterName),
		redis.WithKeyPrefix(params.KeyPrefix),
		redis.WithTLSConfig(opts.TLSConfig),
	}

	if opts.TraceProvider != nil {
		clientOpts = append(clientOpts, redis.WithTraceProvider(opts.TraceProvider))
	}

	var client *redis.Client

	err = retry(
		func() error {
			var openErr error
			client, openErr = redis.New(addrs, clientOpts...)
			return openErr
		},
		params.Timeout,
		logger,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init redis session store: %w", err)
	}

	var storeOpts []sessionstore.Opt
	if opts.Protector != nil {
		storeOpts = append(storeOpts, sessionstore.WithDataProtector(opts.Protector))
	}

	return sessionstore.New(client, opts.TTL, storeOpts...), client, nil
}

func parseURL(u string) (string, []string, error) {
	const urlParts = 2

	parsed := strings.SplitN(u, ":", urlParts)

	if len(parsed) != urlParts {
		return "", nil, fmt.Errorf("invalid dbURL %s", u)
	}

	driver := parsed[0]

	dsn := strings.TrimPrefix(parsed[1], "//")
	if dsn == "" {
		return driver, nil, nil
	}

	return driver, strings.Split(dsn, ","), nil
}

func retry(task func() error, numRetries uint64, logger *log.Log) error {
	const sleep = 1 * time.Second

	return backoff.RetryNotify(
		task,
		backoff.WithMaxRetries(backoff.NewConstantBackOff(sleep), numRetries),
		func(retryErr error, t time.Duration) {
			logger.Warn("Failed to connect to storage, will sleep before trying again.",
				logfields.WithSleep(t), log.WithError(retryErr))
		},
	)
}
