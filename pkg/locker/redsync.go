/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package locker

import (
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	redisapi "github.com/redis/go-redis/v9"
)

// RedisLocker hands out distributed locks backed by redis, so that several verifier instances
// sharing a session store serialize session updates.
type RedisLocker struct {
	rs        *redsync.Redsync
	keyPrefix string
}

// RedisLockerOpt configures a RedisLocker.
type RedisLockerOpt func(r *RedisLocker)

// WithKeyPrefix namespaces the lock keys the same way as the session keys.
func WithKeyPrefix(prefix string) RedisLockerOpt {
	return func(r *RedisLocker) {
		r.keyPrefix = prefix
	}
}

// NewRedisLocker returns a locker using the given redis client.
func NewRedisLocker(client redisapi.UniversalClient, opts ...RedisLockerOpt) *RedisLocker {
	r := &RedisLocker{
		rs: redsync.New(goredis.NewPool(client)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NewMutex creates a new distributed mutex for the given key.
func (r *RedisLocker) NewMutex(key string, opts ...redsync.Option) Lock {
	return r.rs.NewMutex(r.keyPrefix+key, opts...)
}
