package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/jobalink/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stubValidator struct {
	userID uuid.UUID
	role   string
	err    error
}

func (s *stubValidator) ValidateToken(_ context.Context, _ string) (uuid.UUID, string, error) {
	return s.userID, s.role, s.err
}

// okHandler writes 200 and the session user id (for assertions).
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if sess, ok := SessionFromCtx(r.Context()); ok {
		w.Write([]byte(sess.UserID.String()))
	}
	w.WriteHeader(http.StatusOK)
})

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestJWTAuth_ValidToken(t *testing.T) {
	userID := uuid.New()
	mw := JWTAuth(&stubValidator{userID: userID, role: models.RoleLink})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	req.Header.Set("User-Agent", "go-test/1.0")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); body != userID.String() {
		t.Errorf("expected user id %q in body, got %q", userID, body)
	}
}

func TestJWTAuth_SessionCarriesRequestMetadata(t *testing.T) {
	userID := uuid.New()
	var got struct {
		role, agent, origin string
	}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromCtx(r.Context())
		got.role, got.agent, got.origin = sess.Role, sess.UserAgent, sess.Origin
	})
	mw := JWTAuth(&stubValidator{userID: userID, role: models.RoleJoba})(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	req.Header.Set("User-Agent", "go-test/1.0")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if got.role != models.RoleJoba {
		t.Errorf("role: got %q, want %q", got.role, models.RoleJoba)
	}
	if got.agent != "go-test/1.0" {
		t.Errorf("user agent: got %q", got.agent)
	}
	if got.origin != "203.0.113.9" {
		t.Errorf("origin: got %q", got.origin)
	}
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	mw := JWTAuth(&stubValidator{userID: uuid.New()})(okHandler)

	cases := []struct {
		name   string
		header string
	}{
		{"no header at all", ""},
		{"empty bearer", "Bearer "},
		{"wrong scheme", "Basic abc123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	mw := JWTAuth(&stubValidator{err: errors.New("token expired")})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}
