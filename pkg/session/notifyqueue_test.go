/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type blockingNotifier struct {
	release chan struct{}

	mu        sync.Mutex
	delivered map[string][]Event
}

func (n *blockingNotifier) Notify(_ context.Context, sessionID string, event Event, _ *Snapshot) {
	if sessionID == "slow" && event == EventAttemptedPresentation {
		<-n.release
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.delivered[sessionID] = append(n.delivered[sessionID], event)
}

func (n *blockingNotifier) events(sessionID string) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]Event(nil), n.delivered[sessionID]...)
}

func TestNotifyQueue(t *testing.T) {
	n := &blockingNotifier{release: make(chan struct{}), delivered: map[string][]Event{}}
	q := newNotifyQueue(n)

	ordered := []Event{
		EventAttemptedPresentation,
		EventValidatedPresentationsAvailable,
		EventPresentationFulfilsDCQLQuery,
		EventPolicyResultsAvailable,
	}

	for _, e := range ordered {
		q.push(context.Background(), "slow", e, &Snapshot{})
	}

	q.push(context.Background(), "fast", EventAttemptedPresentation, &Snapshot{})

	require.Eventually(t, func() bool { return len(n.events("fast")) == 1 }, time.Second, 5*time.Millisecond)
	require.Empty(t, n.events("slow"))

	close(n.release)

	require.Eventually(t, func() bool { return len(n.events("slow")) == len(ordered) }, time.Second, 5*time.Millisecond)
	require.Equal(t, ordered, n.events("slow"))

	require.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()

		return len(q.pending) == 0
	}, time.Second, 5*time.Millisecond)
}
