/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisapi "github.com/redis/go-redis/v9"

	"github.com/trustbloc/vp-verifier/pkg/dataprotect"
	"github.com/trustbloc/vp-verifier/pkg/session"
	"github.com/trustbloc/vp-verifier/pkg/storage/redis"
)

const (
	keyPrefix  = "vp_session"
	defaultTTL = time.Hour
)

// Store keeps verification sessions in redis.
type Store struct {
	ttl         time.Duration
	redisClient *redis.Client
	now         func() time.Time
	protector   dataprotect.Protector
}

// Opt configures the store.
type Opt func(s *Store)

// WithDataProtector seals session documents before they are written to redis.
func WithDataProtector(p dataprotect.Protector) Opt {
	return func(s *Store) {
		s.protector = p
	}
}

// New creates a session store. ttl is how long a session document is retained after creation.
func New(redisClient *redis.Client, ttl time.Duration, opts ...Opt) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	s := &Store{
		ttl:         ttl,
		redisClient: redisClient,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create stores a new session.
func (s *Store) Create(ctx context.Context, sess *session.Session) error {
	ctxWithTimeout, cancel := s.redisClient.ContextWithTimeout(ctx)
	defer cancel()

	doc, err := s.newDocument(ctxWithTimeout, sess, s.now().UTC().Add(s.ttl))
	if err != nil {
		return err
	}

	ok, err := s.redisClient.API().SetNX(ctxWithTimeout, s.key(sess.ID), doc, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("session create: %w", err)
	}

	if !ok {
		return fmt.Errorf("session %s already exists", sess.ID)
	}

	return nil
}

// Get returns the session with the given id.
func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	ctxWithTimeout, cancel := s.redisClient.ContextWithTimeout(ctx)
	defer cancel()

	doc, err := s.getDocument(ctxWithTimeout, id)
	if err != nil {
		return nil, err
	}

	return doc.Session, nil
}

// Update replaces a stored session, keeping its original expiry.
func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	ctxWithTimeout, cancel := s.redisClient.ContextWithTimeout(ctx)
	defer cancel()

	doc, err := s.getDocument(ctxWithTimeout, sess.ID)
	if err != nil {
		return err
	}

	ttl := doc.ExpireAt.Sub(s.now().UTC())
	if ttl <= 0 {
		return session.ErrDataNotFound
	}

	if doc, err = s.newDocument(ctxWithTimeout, sess, doc.ExpireAt); err != nil {
		return err
	}

	if err = s.redisClient.API().Set(ctxWithTimeout, s.key(sess.ID), doc, ttl).Err(); err != nil {
		return fmt.Errorf("session update: %w", err)
	}

	return nil
}

func (s *Store) getDocument(ctx context.Context, id string) (*sessionDocument, error) {
	b, err := s.redisClient.API().Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redisapi.Nil) {
			return nil, session.ErrDataNotFound
		}

		return nil, fmt.Errorf("find session: %w", err)
	}

	doc := &sessionDocument{}
	if err = doc.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("get and decode: %w", err)
	}

	if doc.ExpireAt.Before(s.now().UTC()) {
		return nil, session.ErrDataNotFound
	}

	if doc.Protected != nil {
		if s.protector == nil {
			return nil, fmt.Errorf("session %s is protected and no data protector is configured", id)
		}

		b, err = s.protector.Decrypt(ctx, doc.Protected)
		if err != nil {
			return nil, fmt.Errorf("decrypt session: %w", err)
		}

		doc.Session = &session.Session{}
		if err = json.Unmarshal(b, doc.Session); err != nil {
			return nil, fmt.Errorf("get and decode: %w", err)
		}

		doc.Protected = nil
	}

	if doc.Session == nil {
		return nil, fmt.Errorf("get and decode: session %s has no content", id)
	}

	return doc, nil
}

func (s *Store) newDocument(ctx context.Context, sess *session.Session, expireAt time.Time) (*sessionDocument, error) {
	if s.protector == nil {
		return &sessionDocument{Session: sess, ExpireAt: expireAt}, nil
	}

	b, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	protected, err := s.protector.Encrypt(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("encrypt session: %w", err)
	}

	return &sessionDocument{Protected: protected, ExpireAt: expireAt}, nil
}

func (s *Store) key(id string) string {
	return s.redisClient.Key(keyPrefix + "-" + id)
}
