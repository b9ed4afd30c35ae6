/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package session

import (
	"context"
	"sync"
)

type pendingNotification struct {
	ctx      context.Context
	event    Event
	snapshot *Snapshot
}

// notifyQueue delivers notifications asynchronously, one session at a time and in the order
// the events were applied.
type notifyQueue struct {
	notifier notifier

	mu sync.Mutex
	// pending holds undelivered notifications. A key is present while a drain goroutine runs.
	pending map[string][]pendingNotification
}

func newNotifyQueue(n notifier) *notifyQueue {
	return &notifyQueue{notifier: n, pending: map[string][]pendingNotification{}}
}

func (q *notifyQueue) push(ctx context.Context, sessionID string, event Event, snapshot *Snapshot) {
	q.mu.Lock()
	defer q.mu.Unlock()

	queued, running := q.pending[sessionID]
	q.pending[sessionID] = append(queued, pendingNotification{ctx: ctx, event: event, snapshot: snapshot})

	if !running {
		go q.drain(sessionID)
	}
}

func (q *notifyQueue) drain(sessionID string) {
	for {
		q.mu.Lock()

		queued := q.pending[sessionID]
		if len(queued) == 0 {
			delete(q.pending, sessionID)
			q.mu.Unlock()

			return
		}

		next := queued[0]
		q.pending[sessionID] = queued[1:]

		q.mu.Unlock()

		q.notifier.Notify(next.ctx, sessionID, next.event, next.snapshot)
	}
}
