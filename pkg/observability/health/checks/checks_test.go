/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package checks_test

import (
	"context"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	dctest "github.com/ory/dockertest/v3"
	dc "github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vp-verifier/pkg/lifecycle"
	"github.com/trustbloc/vp-verifier/pkg/observability/health/checks"
	redisclient "github.com/trustbloc/vp-verifier/pkg/storage/redis"
)

const (
	redisConnString  = "localhost:6387"
	dockerRedisImage = "redis"
	dockerRedisTag   = "alpine3.17"
)

func TestPingRedis(t *testing.T) {
	pool, redisResource := startRedisContainer(t)
	t.Cleanup(func() {
		require.NoError(t, pool.Purge(redisResource), "failed to purge Redis resource")
	})

	client, err := redisclient.New([]string{redisConnString})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, client.Close())
	})

	require.NoError(t, checks.Ping("redis", client)(context.Background()))
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func TestPingFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := checks.Ping("redis", pingerFunc(func(ctx context.Context) error {
		return ctx.Err()
	}))(ctx)

	require.ErrorContains(t, err, "failed to ping redis")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunning(t *testing.T) {
	lc := lifecycle.New("event-bus")
	check := checks.Running(lc)

	require.ErrorIs(t, check(context.Background()), lifecycle.ErrNotStarted)

	lc.Start()
	require.NoError(t, check(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, check(ctx), context.Canceled)

	lc.Stop()
	require.ErrorIs(t, check(context.Background()), lifecycle.ErrNotStarted)
}

func waitForRedisToBeUp() error {
	return backoff.Retry(pingRedis, backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), 30))
}

func pingRedis() error {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisConnString,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return rdb.Ping(ctx).Err()
}

func startRedisContainer(t *testing.T) (*dctest.Pool, *dctest.Resource) {
	t.Helper()

	pool, err := dctest.NewPool("")
	require.NoError(t, err)

	redisResource, err := pool.RunWithOptions(&dctest.RunOptions{
		Repository: dockerRedisImage,
		Tag:        dockerRedisTag,
		PortBindings: map[dc.Port][]dc.PortBinding{
			"6379/tcp": {{HostIP: "", HostPort: "6387"}},
		},
	})
	require.NoError(t, err)

	require.NoError(t, waitForRedisToBeUp())

	return pool, redisResource
}
