package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JakeFAU/books-catalog-api/internal/auth"
)

// UserStore is a Postgres-backed auth.CredentialStore.
type UserStore struct {
	pool  Pool
	table string
	now   func() time.Time
}

// NewUserStore builds a UserStore on pool. An empty table defaults to "users".
func NewUserStore(pool Pool, table string) (*UserStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table, "users")
	if err != nil {
		return nil, err
	}
	return &UserStore{
		pool:  pool,
		table: name,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// EnsureSchema creates the users table if it does not exist.
func (s *UserStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s table: %w", s.table, err)
	}
	return nil
}

// Create inserts username unless it already exists. The conflict check and
// insert are one statement, so concurrent registrations cannot both win.
func (s *UserStore) Create(ctx context.Context, username, passwordHash string) (auth.Identity, error) {
	createdAt := s.now()
	query := fmt.Sprintf(`
INSERT INTO %s (username, password_hash, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (username) DO NOTHING`, s.table)
	tag, err := s.pool.Exec(ctx, query, username, passwordHash, createdAt)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("insert user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.Identity{}, fmt.Errorf("create %q: %w", username, auth.ErrDuplicateIdentity)
	}
	return auth.Identity{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}, nil
}

// Find looks up username.
func (s *UserStore) Find(ctx context.Context, username string) (auth.Identity, error) {
	query := fmt.Sprintf(`SELECT username, password_hash, created_at FROM %s WHERE username = $1`, s.table)
	var identity auth.Identity
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&identity.Username,
		&identity.PasswordHash,
		&identity.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Identity{}, fmt.Errorf("find %q: %w", username, auth.ErrIdentityNotFound)
	}
	if err != nil {
		return auth.Identity{}, fmt.Errorf("select user: %w", err)
	}
	return identity, nil
}
