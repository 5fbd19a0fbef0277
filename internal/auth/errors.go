package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateIdentity is returned when a username is already registered.
	ErrDuplicateIdentity = errors.New("username already registered")
	// ErrIdentityNotFound is returned by credential store lookups that miss.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is matched by every token verification failure.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password must not be empty")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// TokenFailure names the internal cause of a rejected token. It is logged
// and counted but never sent to clients.
type TokenFailure string

// Token failure causes.
const (
	FailureMissingHeader   TokenFailure = "missing_header"
	FailureWrongScheme     TokenFailure = "wrong_scheme"
	FailureMalformedHeader TokenFailure = "malformed_header"
	FailureMalformed       TokenFailure = "malformed"
	FailureBadSignature    TokenFailure = "bad_signature"
	FailureExpired         TokenFailure = "expired"
	FailureMissingSubject  TokenFailure = "missing_subject"
	FailureInvalidClaims   TokenFailure = "invalid_claims"
)

// TokenError is the concrete error behind ErrInvalidToken.
type TokenError struct {
	Reason TokenFailure
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid token: %s", e.Reason)
	}
	return fmt.Sprintf("invalid token: %s: %v", e.Reason, e.Err)
}

// Is makes errors.Is(err, ErrInvalidToken) hold for every TokenError.
func (e *TokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// FailureOf extracts the internal failure cause, or "" if err is not a TokenError.
func FailureOf(err error) TokenFailure {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Reason
	}
	return ""
}

func tokenFailure(reason TokenFailure, err error) error {
	return &TokenError{Reason: reason, Err: err}
}
