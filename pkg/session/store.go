/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store persists sessions.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, s *Session) error
}

// MemoryStore keeps sessions in process memory. Sessions are kept in their serialized form, the
// same document the redis store persists, so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

// Create stores a new session.
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", s.ID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}

	m.sessions[s.ID] = doc

	return nil
}

// Get returns a copy of the session.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	doc, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrDataNotFound
	}

	s := &Session{}

	if err := json.Unmarshal(doc, s); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}

	return s, nil
}

// Update replaces an existing session.
func (m *MemoryStore) Update(_ context.Context, s *Session) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", s.ID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; !ok {
		return ErrDataNotFound
	}

	m.sessions[s.ID] = doc

	return nil
}
