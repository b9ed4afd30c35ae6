/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package locker

import (
	"context"
	"sync"

	"github.com/go-redsync/redsync/v4"
)

// Lock is a mutex that locks based on a key.
type Lock interface {
	LockContext(ctx context.Context) error
	UnlockContext(ctx context.Context) (bool, error)
	Unlock() (bool, error)
}

// KeyedMutexLocker is an in-process locker that hands out one mutex per key. Keys are released
// once no holder or waiter references them.
type KeyedMutexLocker struct {
	mu      sync.Mutex
	mutexes map[string]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex creates a new mutex locker.
func NewKeyedMutex() *KeyedMutexLocker {
	return &KeyedMutexLocker{
		mutexes: make(map[string]*keyedEntry),
	}
}

// NewMutex creates a new mutex for the given key. Redsync options are accepted so that the local
// and distributed lockers are interchangeable; they are ignored here.
func (k *KeyedMutexLocker) NewMutex(key string, _ ...redsync.Option) Lock {
	return &KeyedMutex{key: key, locker: k}
}

func (k *KeyedMutexLocker) acquire(key string) *keyedEntry {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.mutexes[key]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		k.mutexes[key] = e
	}

	e.refs++

	return e
}

func (k *KeyedMutexLocker) release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.mutexes[key]
	if !ok {
		return
	}

	e.refs--

	if e.refs <= 0 {
		delete(k.mutexes, key)
	}
}

// Len returns the number of keys currently held or waited on.
func (k *KeyedMutexLocker) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.mutexes)
}

// KeyedMutex is a mutex that locks based on a key.
type KeyedMutex struct {
	key    string
	locker *KeyedMutexLocker

	mu    sync.Mutex
	entry *keyedEntry
}

// LockContext locks the mutex, giving up when ctx is done.
func (k *KeyedMutex) LockContext(ctx context.Context) error {
	e := k.locker.acquire(k.key)

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.locker.release(k.key)

		return ctx.Err()
	}

	k.mu.Lock()
	k.entry = e
	k.mu.Unlock()

	return nil
}

// UnlockContext unlocks the mutex.
func (k *KeyedMutex) UnlockContext(_ context.Context) (bool, error) {
	return k.Unlock()
}

// Unlock unlocks the mutex. It returns false if the mutex was not held.
func (k *KeyedMutex) Unlock() (bool, error) {
	k.mu.Lock()
	e := k.entry
	k.entry = nil
	k.mu.Unlock()

	if e == nil {
		return false, nil
	}

	<-e.ch

	k.locker.release(k.key)

	return true, nil
}
