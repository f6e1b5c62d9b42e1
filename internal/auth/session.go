package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store maps opaque session tokens to the email of the user they belong to.
//
// THE CONTRACT:
//   - A token is valid exactly while the store holds it. There is no expiry
//     and no rotation; Delete is the only way a token stops working.
//   - Put overwrites silently. Tokens come from NewToken, so two sessions
//     never share one in practice.
//   - Get and Delete separate "not there" (ok/deleted false, nil error)
//     from "could not ask" (non-nil error). Callers rely on the split: a
//     missing token is a 401 or a 400, a failing store is a 500.
//   - Implementations must be safe for concurrent use; every request
//     goroutine shares one Store.
//
// MemoryStore is the default. RedisStore keeps sessions across restarts
// and across several server processes.
type Store interface {
	Put(ctx context.Context, token, email string) error
	// Get reports ok=false for a token the store does not hold.
	Get(ctx context.Context, token string) (email string, ok bool, err error)
	// Delete reports deleted=false when the token was not held.
	Delete(ctx context.Context, token string) (deleted bool, err error)
	Close() error
}

// NewToken returns a fresh random session token (a v4 UUID).
func NewToken() string {
	return uuid.NewString()
}

// MemoryStore is the default Store. Sessions live only as long as the
// process, so a restart logs everybody out.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]string)}
}

func (s *MemoryStore) Put(_ context.Context, token, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = email
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email, ok := s.sessions[token]
	return email, ok, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return false, nil
	}
	delete(s.sessions, token)
	return true, nil
}

// Close is a no-op; it exists to satisfy Store.
func (s *MemoryStore) Close() error { return nil }
