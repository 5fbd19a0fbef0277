package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/books-catalog-api/internal/metrics"
)

// HeaderVerifier resolves an Authorization header value to a subject.
type HeaderVerifier interface {
	VerifyHeader(header string) (string, error)
}

type subjectKey struct{}

// WithSubject returns a copy of ctx carrying the authenticated subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFromContext returns the subject injected by Guard.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey{}).(string)
	return subject, ok && subject != ""
}

// Guard rejects requests without a valid bearer token before next runs.
// Every rejection gets the same 401 body; the cause is only logged.
func Guard(verifier HeaderVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := verifier.VerifyHeader(r.Header.Get("Authorization"))
			if err != nil {
				reason := FailureOf(err)
				logger.Info("bearer token rejected",
					zap.String("reason", string(reason)),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				metrics.ObserveAuthFailure(string(reason))
				RejectUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
		})
	}
}

// RejectUnauthorized writes the uniform invalid-token response.
func RejectUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": ErrInvalidToken.Error()})
}
