/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package lifecycle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLifecycle(t *testing.T) {
	started := 0
	stopped := 0

	lc := New("event-bus",
		WithStart(func() { started++ }),
		WithStop(func() { stopped++ }),
	)

	require.Equal(t, StateNotStarted, lc.State())
	require.ErrorIs(t, lc.Running(), ErrNotStarted)
	require.EqualError(t, lc.Running(), "event-bus is not-started: component is not running")

	require.True(t, lc.Start())
	require.Equal(t, 1, started)
	require.Equal(t, StateStarted, lc.State())
	require.NoError(t, lc.Running())

	require.False(t, lc.Start())
	require.Equal(t, 1, started)

	require.True(t, lc.Stop())
	require.Equal(t, 1, stopped)
	require.Equal(t, StateStopped, lc.State())
	require.ErrorIs(t, lc.Running(), ErrNotStarted)

	require.False(t, lc.Stop())
	require.Equal(t, 1, stopped)

	require.False(t, lc.Start())
}

func TestLifecycle_StopBeforeStart(t *testing.T) {
	stopped := false

	lc := New("event-subscriber", WithStop(func() { stopped = true }))

	require.False(t, lc.Stop())
	require.False(t, stopped)
	require.Equal(t, StateNotStarted, lc.State())
}

func TestLifecycle_ConcurrentStart(t *testing.T) {
	var (
		mu      sync.Mutex
		started int
		wg      sync.WaitGroup
	)

	lc := New("event-bus", WithStart(func() {
		mu.Lock()
		started++
		mu.Unlock()
	}))

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			lc.Start()
		}()
	}

	wg.Wait()

	require.Equal(t, 1, started)
	require.Equal(t, StateStarted, lc.State())
}

func TestState_String(t *testing.T) {
	require.Equal(t, "starting", StateStarting.String())
	require.Equal(t, "state(9)", State(9).String())
}
