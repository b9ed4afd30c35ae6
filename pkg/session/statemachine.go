/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination gomocks_test.go -self_package mocks -package session_test -source=statemachine.go -mock_names mutexLocker=MockMutexLocker,notifier=MockNotifier,metricsProvider=MockMetricsProvider

package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/dcql"
	"github.com/trustbloc/vp-verifier/pkg/locker"
	"github.com/trustbloc/vp-verifier/pkg/policy"
)

var logger = log.New("session")

const (
	defaultTTL        = 10 * time.Minute
	defaultLockExpiry = 30 * time.Second
	lockKeyPrefix     = "vp_session_lock"
	nonceSize         = 32
)

// ApplyFunc applies an event to one bound session.
type ApplyFunc func(ctx context.Context, event Event, mutate func(*Session) error) (*Session, error)

type mutexLocker interface {
	NewMutex(key string, opts ...redsync.Option) locker.Lock
}

type notifier interface {
	Notify(ctx context.Context, sessionID string, event Event, snapshot *Snapshot)
}

type metricsProvider interface {
	SessionTransition(event string, status string)
}

// Config configures the state machine.
type Config struct {
	Store    Store
	Locker   mutexLocker
	Notifier notifier
	Metrics  metricsProvider
	// TTL is how long a created session accepts a response.
	TTL time.Duration
	// LockExpiry bounds how long a distributed session lock is held.
	LockExpiry time.Duration
	Now        func() time.Time
}

// StateMachine creates sessions and applies lifecycle events to them. Events for one session
// are serialized through a per-session lock, and their notifications are delivered in order.
type StateMachine struct {
	store      Store
	locker     mutexLocker
	notifier   *notifyQueue
	metrics    metricsProvider
	ttl        time.Duration
	lockExpiry time.Duration
	now        func() time.Time
}

// NewStateMachine returns a new state machine.
func NewStateMachine(config *Config) *StateMachine {
	sm := &StateMachine{
		store:      config.Store,
		locker:     config.Locker,
		metrics:    config.Metrics,
		ttl:        config.TTL,
		lockExpiry: config.LockExpiry,
		now:        config.Now,
	}

	if config.Notifier != nil {
		sm.notifier = newNotifyQueue(config.Notifier)
	}

	if sm.store == nil {
		sm.store = NewMemoryStore()
	}

	if sm.locker == nil {
		sm.locker = locker.NewKeyedMutex()
	}

	if sm.ttl <= 0 {
		sm.ttl = defaultTTL
	}

	if sm.lockExpiry <= 0 {
		sm.lockExpiry = defaultLockExpiry
	}

	if sm.now == nil {
		sm.now = time.Now
	}

	return sm
}

// CreateRequest holds the relying party's parameters for a new session.
type CreateRequest struct {
	// ID is the session ID. A random ID is generated when empty.
	ID             string
	ClientID       string
	ExpectedOrigin string
	ResponseURI    string
	ResponseMode   ResponseMode
	JWKThumbprint  []byte
	Query          *dcql.Query
	Policies       policy.Set
	Redirects      *Redirects
}

// Create starts a new session in status CREATED with a fresh nonce and state.
func (sm *StateMachine) Create(ctx context.Context, req *CreateRequest) (*Session, error) {
	if req.Query == nil {
		return nil, errors.New("dcql query is required")
	}

	mode := req.ResponseMode
	if mode == "" {
		mode = ResponseModeDirectPost
	}

	if err := mode.Validate(); err != nil {
		return nil, err
	}

	if mode.Channel().IsDCAPI() && req.ExpectedOrigin == "" {
		return nil, fmt.Errorf("expected origin is required for response mode %s", mode)
	}

	nonce, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	state, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := sm.now().UTC()

	s := &Session{
		ID:             id,
		CreatedAt:      now,
		ExpiresAt:      now.Add(sm.ttl),
		Status:         StatusCreated,
		ClientID:       req.ClientID,
		ExpectedOrigin: req.ExpectedOrigin,
		Nonce:          nonce,
		State:          state,
		ResponseURI:    req.ResponseURI,
		ResponseMode:   mode,
		JWKThumbprint:  req.JWKThumbprint,
		Query:          req.Query,
		Policies:       req.Policies,
		Redirects:      req.Redirects,
	}

	if err = sm.store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	logger.Debugc(ctx, "Session created", logfields.WithSessionID(s.ID),
		logfields.WithResponseMode(string(mode)), logfields.WithQueryIDs(req.Query.IDs()))

	return s, nil
}

// Get returns the session.
func (sm *StateMachine) Get(ctx context.Context, id string) (*Session, error) {
	return sm.store.Get(ctx, id)
}

// Bind returns an ApplyFunc bound to the given session.
func (sm *StateMachine) Bind(id string) ApplyFunc {
	return func(ctx context.Context, event Event, mutate func(*Session) error) (*Session, error) {
		return sm.ApplyEvent(ctx, id, event, mutate)
	}
}

// ApplyEvent loads the session under its lock, applies mutate and the event's status rule,
// persists the result and notifies sinks. Applying an event to a terminal session panics with
// a *TerminalStateError.
func (sm *StateMachine) ApplyEvent(
	ctx context.Context,
	id string,
	event Event,
	mutate func(*Session) error,
) (*Session, error) {
	mu := sm.locker.NewMutex(resolveLockKey(id), redsync.WithExpiry(sm.lockExpiry))

	if err := mu.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("lock session %s: %w", id, err)
	}

	defer func() {
		if _, err := mu.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			logger.Warnc(ctx, "Failed to unlock session", logfields.WithSessionID(id), log.WithError(err))
		}
	}()

	s, err := sm.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	// Terminal sessions are always attempted, so a repeated response is reported, not raised.
	if event == EventAttemptedPresentation && s.Attempted {
		return nil, ErrAlreadyAttempted
	}

	if s.Status.IsTerminal() {
		panic(&TerminalStateError{SessionID: id, Status: s.Status, Event: event})
	}

	prev := s.Status

	if mutate != nil {
		if err = mutate(s); err != nil {
			return nil, fmt.Errorf("apply %s to session %s: %w", event, id, err)
		}
	}

	// Identity and lifecycle fields are owned by the state machine.
	s.ID = id
	s.Status = prev

	if err = applyRule(s, event); err != nil {
		return nil, fmt.Errorf("apply %s to session %s: %w", event, id, err)
	}

	if !allowed(prev, s.Status) {
		return nil, fmt.Errorf("apply %s to session %s: %s -> %s: %w", event, id, prev, s.Status,
			ErrInvalidTransition)
	}

	if err = sm.store.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update session %s: %w", id, err)
	}

	logger.Infoc(ctx, "Session event applied", logfields.WithSessionID(id),
		logfields.WithSessionEvent(string(event)), logfields.WithSessionStatus(string(s.Status)))

	if sm.metrics != nil {
		sm.metrics.SessionTransition(string(event), string(s.Status))
	}

	sm.notify(ctx, s, event)

	return s, nil
}

func (sm *StateMachine) notify(ctx context.Context, s *Session, event Event) {
	if sm.notifier == nil {
		return
	}

	snapshot, err := NewSnapshot(s)
	if err != nil {
		logger.Warnc(ctx, "Failed to snapshot session", logfields.WithSessionID(s.ID), log.WithError(err))

		return
	}

	sm.notifier.push(context.WithoutCancel(ctx), s.ID, event, snapshot)
}

func applyRule(s *Session, event Event) error {
	switch event {
	case EventAttemptedPresentation:
		s.Attempted = true

		if s.Status == StatusCreated {
			s.Status = StatusValidating
		}
	case EventValidatedPresentationsAvailable, EventPresentationFulfilsDCQLQuery:
		if s.Status != StatusValidating {
			return fmt.Errorf("session status %s: %w", s.Status, ErrInvalidTransition)
		}
	case EventPresentationValidationFailed, EventDCQLFulfillmentCheckFailed:
		s.Status = StatusFailed

		if s.StatusReason == "" {
			s.StatusReason = string(event)
		}
	case EventPolicyResultsAvailable:
		if s.PolicyResult != nil && s.PolicyResult.OverallSuccess {
			s.Status = StatusSuccessful
		} else {
			s.Status = StatusFailed

			if s.StatusReason == "" {
				s.StatusReason = string(event)
			}
		}
	default:
		return fmt.Errorf("unknown event %q", event)
	}

	return nil
}

var transitions = map[Status][]Status{
	StatusCreated:    {StatusValidating},
	StatusValidating: {StatusValidating, StatusSuccessful, StatusFailed},
}

func allowed(from, to Status) bool {
	return lo.Contains(transitions[from], to)
}

func resolveLockKey(id string) string {
	return fmt.Sprintf("%s-%s", lockKeyPrefix, id)
}

func randomToken() (string, error) {
	b := make([]byte, nonceSize)

	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
