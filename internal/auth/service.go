package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Service implements registration, login and refresh on top of the
// credential store, hasher and token service.
type Service struct {
	store  CredentialStore
	hasher PasswordHasher
	tokens *TokenService
	logger *zap.Logger

	decoyOnce sync.Once
	decoyHash string
}

// NewService constructs a Service.
func NewService(store CredentialStore, hasher PasswordHasher, tokens *TokenService, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new identity.
func (s *Service) Register(ctx context.Context, username, password string) (Identity, error) {
	if strings.TrimSpace(username) == "" {
		return Identity{}, &ValidationError{Field: "username", Reason: "is required"}
	}
	if password == "" {
		return Identity{}, &ValidationError{Field: "password", Reason: "is required"}
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Identity{}, &ValidationError{Field: "password", Reason: err.Error()}
	}
	identity, err := s.store.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			s.logger.Info("duplicate registration rejected", zap.String("username", username))
		}
		return Identity{}, fmt.Errorf("register %q: %w", username, err)
	}
	s.logger.Info("user registered", zap.String("username", username))
	return identity, nil
}

// Login checks credentials and issues a token. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (Token, error) {
	if username == "" || password == "" {
		return Token{}, &ValidationError{Field: "username and password", Reason: "are required"}
	}
	identity, err := s.store.Find(ctx, username)
	switch {
	case errors.Is(err, ErrIdentityNotFound):
		// Keep timing in line with the wrong-password path.
		s.hasher.Verify(password, s.decoy())
		s.logger.Info("login failed", zap.String("username", username), zap.String("reason", "unknown_user"))
		return Token{}, ErrInvalidCredentials
	case err != nil:
		return Token{}, fmt.Errorf("find %q: %w", username, err)
	}
	if !s.hasher.Verify(password, identity.PasswordHash) {
		s.logger.Info("login failed", zap.String("username", username), zap.String("reason", "bad_password"))
		return Token{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(identity.Username)
	if err != nil {
		return Token{}, fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("user logged in", zap.String("username", username))
	return token, nil
}

// Refresh exchanges the bearer token in header for a new one.
func (s *Service) Refresh(header string) (Token, error) {
	raw, err := ParseBearer(header)
	if err != nil {
		return Token{}, err
	}
	token, err := s.tokens.Refresh(raw)
	if err != nil {
		return Token{}, err
	}
	s.logger.Debug("token refreshed", zap.String("subject", token.Subject))
	return token, nil
}

func (s *Service) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("decoy-password")
		if err != nil {
			s.logger.Warn("decoy hash failed", zap.Error(err))
			return
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}
