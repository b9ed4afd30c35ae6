/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package locker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/vp-verifier/pkg/locker"
)

func TestKeyedMutex_LockAndUnlock(t *testing.T) {
	km := locker.NewKeyedMutex()

	key := "lock_test"
	mutex := km.NewMutex(key)

	ctx := context.Background()
	require.NoError(t, mutex.LockContext(ctx))

	var (
		mu                   sync.Mutex
		mut2LockAcquiredTime *time.Time
	)

	done := make(chan struct{})

	go func() {
		defer close(done)

		mutex2 := km.NewMutex(key)

		assert.NoError(t, mutex2.LockContext(context.TODO()))

		mu.Lock()
		mut2LockAcquiredTime = lo.ToPtr(time.Now())
		mu.Unlock()

		_, err := mutex2.Unlock()
		assert.NoError(t, err)
	}()

	time.Sleep(200 * time.Millisecond)
	unlockTime := time.Now()
	ok, err := mutex.UnlockContext(ctx)
	assert.True(t, ok)
	assert.NoError(t, err)

	<-done

	mu.Lock()
	defer mu.Unlock()

	require.NotNil(t, mut2LockAcquiredTime)
	assert.True(t, mut2LockAcquiredTime.After(unlockTime))
	assert.Equal(t, 0, km.Len())
}

func TestKeyedMutex_DifferentKeys(t *testing.T) {
	km := locker.NewKeyedMutex()

	m1 := km.NewMutex("a")
	m2 := km.NewMutex("b")

	require.NoError(t, m1.LockContext(context.Background()))
	require.NoError(t, m2.LockContext(context.Background()))
	require.Equal(t, 2, km.Len())

	ok, err := m1.Unlock()
	require.True(t, ok)
	require.NoError(t, err)

	ok, err = m2.Unlock()
	require.True(t, ok)
	require.NoError(t, err)

	require.Equal(t, 0, km.Len())
}

func TestKeyedMutex_ContextCancelled(t *testing.T) {
	km := locker.NewKeyedMutex()

	holder := km.NewMutex("k")
	require.NoError(t, holder.LockContext(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := km.NewMutex("k").LockContext(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	ok, err := holder.Unlock()
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, 0, km.Len())
}

func TestKeyedMutex_UnlockNotHeld(t *testing.T) {
	km := locker.NewKeyedMutex()

	ok, err := km.NewMutex("k").Unlock()
	require.False(t, ok)
	require.NoError(t, err)
}
