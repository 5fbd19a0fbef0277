package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JakeFAU/books-catalog-api/internal/auth"
)

// UserStore is an in-memory auth.CredentialStore.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]auth.Identity
	now   func() time.Time
}

// NewUserStore constructs an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]auth.Identity),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts username if it is not taken. Matching is case-sensitive.
func (s *UserStore) Create(_ context.Context, username, passwordHash string) (auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return auth.Identity{}, fmt.Errorf("create %q: %w", username, auth.ErrDuplicateIdentity)
	}
	identity := auth.Identity{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}
	s.users[username] = identity
	return identity, nil
}

// Find looks up username.
func (s *UserStore) Find(_ context.Context, username string) (auth.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.users[username]
	if !ok {
		return auth.Identity{}, fmt.Errorf("find %q: %w", username, auth.ErrIdentityNotFound)
	}
	return identity, nil
}
