package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JakeFAU/books-catalog-api/internal/catalog"
)

const bearerScheme = "bearer"

// TokenConfig is fixed at process start and never mutated.
type TokenConfig struct {
	Secret    string
	Algorithm string
	TTL       time.Duration
}

// Token is a freshly signed bearer token.
type Token struct {
	AccessToken string
	Subject     string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies HMAC-signed JWTs.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	clock  catalog.Clock
	ids    catalog.IDGenerator
	parser *jwt.Parser
}

// NewTokenService validates cfg and builds a TokenService.
func NewTokenService(cfg TokenConfig, clock catalog.Clock, ids catalog.IDGenerator) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token ttl must be > 0, got %s", cfg.TTL)
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	if clock == nil || ids == nil {
		return nil, errors.New("clock and id generator are required")
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    cfg.TTL,
		clock:  clock,
		ids:    ids,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithTimeFunc(clock.Now),
		),
	}, nil
}

// Issue signs a token for subject that expires after the configured TTL.
func (s *TokenService) Issue(subject string) (Token, error) {
	if subject == "" {
		return Token{}, errors.New("subject is required")
	}
	jti, err := s.ids.NewID()
	if err != nil {
		return Token{}, fmt.Errorf("token id: %w", err)
	}
	now := s.clock.Now().Truncate(jwt.TimePrecision)
	expires := now.Add(s.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{
		AccessToken: signed,
		Subject:     subject,
		IssuedAt:    now,
		ExpiresAt:   expires,
	}, nil
}

// Verify checks signature, algorithm and expiry and returns the subject.
// Every failure satisfies errors.Is(err, ErrInvalidToken).
func (s *TokenService) Verify(tokenString string) (string, error) {
	var claims Claims
	_, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", tokenFailure(classify(err), err)
	}
	if claims.Subject == "" {
		return "", tokenFailure(FailureMissingSubject, nil)
	}
	return claims.Subject, nil
}

// VerifyHeader parses an Authorization header value of the form
// "Bearer <token>" and verifies the token.
func (s *TokenService) VerifyHeader(header string) (string, error) {
	raw, err := ParseBearer(header)
	if err != nil {
		return "", err
	}
	return s.Verify(raw)
}

// Refresh verifies current and mints a new token for the same subject.
// Expired tokens cannot be refreshed, and current stays valid until its own
// expiry.
func (s *TokenService) Refresh(current string) (Token, error) {
	subject, err := s.Verify(current)
	if err != nil {
		return Token{}, err
	}
	return s.Issue(subject)
}

// ParseBearer extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", tokenFailure(FailureMissingHeader, nil)
	}
	scheme, raw, found := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, bearerScheme) {
		return "", tokenFailure(FailureWrongScheme, nil)
	}
	raw = strings.TrimSpace(raw)
	if !found || raw == "" || strings.ContainsAny(raw, " \t") {
		return "", tokenFailure(FailureMalformedHeader, nil)
	}
	return raw, nil
}

func classify(err error) TokenFailure {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return FailureExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return FailureMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return FailureBadSignature
	default:
		return FailureInvalidClaims
	}
}
