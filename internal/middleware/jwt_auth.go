package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jobalink/backend/internal/auth"
)

type contextKey string

const ctxSessionKey contextKey = "session"

// TokenValidator is the slice of the auth service the middleware needs.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (uuid.UUID, string, error)
}

// JWTAuth authenticates requests by validating the Bearer token. On
// success it sets an auth.Session, including the caller's user agent and
// origin for the audit trail, into request context.
func JWTAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				http.Error(w, `{"error":"missing or malformed Authorization header"}`, http.StatusUnauthorized)
				return
			}

			userID, role, err := validator.ValidateToken(r.Context(), raw)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			sess := auth.Session{
				UserID:    userID,
				Role:      role,
				UserAgent: r.UserAgent(),
				Origin:    clientOrigin(r),
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// SessionFromCtx returns the authenticated session, or false.
func SessionFromCtx(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(ctxSessionKey).(auth.Session)
	return sess, ok
}

// WithSession returns a context carrying the given session.
func WithSession(ctx context.Context, sess auth.Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey, sess)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func clientOrigin(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
