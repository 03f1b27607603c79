// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jeranaias/ragdesk/internal/status"
)

// =============================================================================
// STORE
// =============================================================================

// Store owns the current State of a session and replaces it atomically.
type Store struct {
	mu    sync.RWMutex
	state State

	id        string
	startTime time.Time
}

// NewStore creates a store holding an empty session.
func NewStore() *Store {
	return &Store{
		id:        uuid.NewString(),
		startTime: time.Now(),
	}
}

// ID returns the session identifier.
func (s *Store) ID() string {
	return s.id
}

// StartTime returns when the session began.
func (s *Store) StartTime() time.Time {
	return s.startTime
}

// Snapshot returns the current State.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Update applies fn to the current State. On success the result becomes the
// current State; on error nothing changes.
func (s *Store) Update(fn Transition) (State, error) {
	s.mu.Lock()
	next, err := fn(s.state)
	if err != nil {
		cur := s.state
		s.mu.Unlock()
		return cur, err
	}
	next.Version = s.state.Version + 1
	s.state = next
	s.mu.Unlock()
	return next, nil
}

// Report stores a status line, making Store a status.Reporter.
func (s *Store) Report(region status.Region, message string) {
	_, _ = s.Update(func(st State) (State, error) {
		return st.WithStatus(region, message), nil
	})
}
