package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/invoicedesk/invoicedesk/internal/domain"
)

// MemoryStore is an in-process Store for tests and single-node setups.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Create registers a new session for the invoice.
func (s *MemoryStore) Create(ctx context.Context, userUUID string, inv domain.Invoice) (*Session, error) {
	now := time.Now().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		UserUUID:  userUUID,
		Invoice:   inv,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	out := sess
	return &out, nil
}

// Get returns the session or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	out := sess
	return &out, nil
}

// Put replaces the stored session wholesale.
func (s *MemoryStore) Put(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.sessions[sess.ID] = *sess
	s.mu.Unlock()
	return nil
}

// Delete discards the session.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}
