package auth

import (
	"context"
	"time"
)

// Identity is a registered user. PasswordHash is never the plaintext.
type Identity struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// CredentialStore persists identities.
//
// Create must be an atomic insert-if-absent: two concurrent calls for the
// same username can never both succeed.
type CredentialStore interface {
	Create(ctx context.Context, username, passwordHash string) (Identity, error)
	Find(ctx context.Context, username string) (Identity, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
