package router

import (
	"net/http"

	"github.com/jobalink/backend/internal/auth"
	"github.com/jobalink/backend/internal/dashboard"
)

// New returns an http.Handler that serves the account API under /api/v1.
// Everything else (the authenticated /v1 payment API) is registered on
// the top-level mux by cmd/api.
func New(authHandler *auth.Handler, dashHandler *dashboard.Handler) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"
	mux.HandleFunc(base+"/auth/register", authHandler.Register)
	mux.HandleFunc(base+"/auth/login", authHandler.Login)

	mux.HandleFunc(base+"/account/me", methodGET(dashHandler.GetMe))
	mux.HandleFunc(base+"/account/settings", methodPATCH(dashHandler.UpdateSettings))
	mux.HandleFunc(base+"/account/payments", methodGET(dashHandler.ListPayments))
	mux.HandleFunc(base+"/health", methodGET(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	return mux
}

func methodGET(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func methodPATCH(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}
