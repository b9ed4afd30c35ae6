/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"strconv"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/pkg/session"
)

func TestDBParams(t *testing.T) {
	t.Run("valid params", func(t *testing.T) {
		expected := &DBParameters{
			URL:        "redis://localhost:6379",
			Username:   "verifier",
			Password:   "secret",
			MasterName: "master",
			KeyPrefix:  "verifier-a:",
			Timeout:    10,
		}
		setEnv(t, expected)

		cmd := &cobra.Command{}
		Flags(cmd)

		result, err := DBParams(cmd)
		require.NoError(t, err)
		require.Equal(t, expected, result)
	})

	t.Run("use default timeout", func(t *testing.T) {
		setEnv(t, &DBParameters{URL: "mem://test"})
		t.Setenv(DatabaseTimeoutEnvKey, "")

		cmd := &cobra.Command{}
		Flags(cmd)

		result, err := DBParams(cmd)
		require.NoError(t, err)
		require.Equal(t, &DBParameters{URL: "mem://test", Timeout: DatabaseTimeoutDefault}, result)
	})

	t.Run("error if url is missing", func(t *testing.T) {
		setEnv(t, &DBParameters{Timeout: 30})

		cmd := &cobra.Command{}
		Flags(cmd)

		_, err := DBParams(cmd)
		require.ErrorContains(t, err, "failed to configure dbURL")
	})

	t.Run("error if timeout has an invalid value", func(t *testing.T) {
		setEnv(t, &DBParameters{URL: "mem://test"})
		t.Setenv(DatabaseTimeoutEnvKey, "invalid")

		cmd := &cobra.Command{}
		Flags(cmd)

		_, err := DBParams(cmd)
		require.ErrorContains(t, err, "failed to parse dbTimeout")
	})
}

func TestInitStore(t *testing.T) {
	logger := log.New("test")

	t.Run("memory store", func(t *testing.T) {
		s, client, err := InitStore(&DBParameters{URL: "mem://test", Timeout: 30}, &StoreOptions{}, logger)
		require.NoError(t, err)
		require.IsType(t, &session.MemoryStore{}, s)
		require.Nil(t, client)
	})

	t.Run("error if url format is invalid", func(t *testing.T) {
		_, _, err := InitStore(&DBParameters{URL: "invalid", Timeout: 30}, &StoreOptions{}, logger)
		require.ErrorContains(t, err, "invalid dbURL")
	})

	t.Run("error if driver is not supported", func(t *testing.T) {
		_, _, err := InitStore(&DBParameters{URL: "mongodb://localhost:27017", Timeout: 30}, &StoreOptions{}, logger)
		require.ErrorContains(t, err, "unsupported storage driver: mongodb")
	})

	t.Run("error if cannot connect to redis", func(t *testing.T) {
		_, _, err := InitStore(&DBParameters{URL: "redis://localhost:1", Timeout: 1},
			&StoreOptions{TTL: time.Minute}, logger)
		require.ErrorContains(t, err, "failed to init redis session store")
	})
}

func TestParseURL(t *testing.T) {
	driver, addrs, err := parseURL("redis://node1:6379,node2:6379")
	require.NoError(t, err)
	require.Equal(t, "redis", driver)
	require.Equal(t, []string{"node1:6379", "node2:6379"}, addrs)

	driver, addrs, err = parseURL("mem:")
	require.NoError(t, err)
	require.Equal(t, "mem", driver)
	require.Empty(t, addrs)
}

func setEnv(t *testing.T, values *DBParameters) {
	t.Helper()

	t.Setenv(DatabaseURLEnvKey, values.URL)
	t.Setenv(RedisUsernameEnvKey, values.Username)
	t.Setenv(RedisPasswordEnvKey, values.Password)
	t.Setenv(RedisKeyPrefixEnvKey, values.KeyPrefix)
	t.Setenv(RedisMasterNameEnvKey, values.MasterName)
	t.Setenv(DatabaseTimeoutEnvKey, strconv.FormatUint(values.Timeout, 10))
}
