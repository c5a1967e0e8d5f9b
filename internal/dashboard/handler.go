// Package dashboard serves the account pages: the caller's profile,
// wallet balance, and payment history.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jobalink/backend/internal/auth"
	"github.com/jobalink/backend/internal/mobile"
	"github.com/jobalink/backend/internal/models"
)

// UserStore is the slice of the user repository the dashboard needs.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, u *models.User) error
}

// TransactionLog lists the caller's money movements.
type TransactionLog interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
}

type Handler struct {
	authSvc      auth.Service
	users        UserStore
	transactions TransactionLog
	log          *slog.Logger
}

func NewHandler(authSvc auth.Service, users UserStore, transactions TransactionLog, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{authSvc: authSvc, users: users, transactions: transactions, log: log}
}

func (h *Handler) userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return uuid.Nil, fmt.Errorf("missing authorization")
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return uuid.Nil, fmt.Errorf("bad authorization format")
	}
	token := strings.TrimSpace(authz[len(prefix):])
	if token == "" {
		return uuid.Nil, fmt.Errorf("empty token")
	}
	id, _, err := h.authSvc.ValidateToken(r.Context(), token)
	return id, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /api/v1/account/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userIDFromRequest(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		h.log.Error("get user failed", "error", err)
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":                 u.ID,
		"email":              u.Email,
		"display_name":       u.DisplayName,
		"role":               u.Role,
		"contact_number":     u.ContactNumber,
		"carrier":            u.Carrier,
		"nif":                u.NIF,
		"balance_cents":      u.BalanceCents,
		"total_earned_cents": u.TotalEarnedCents,
		"created_at":         u.CreatedAt,
	})
}

// PATCH /api/v1/account/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userIDFromRequest(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	var body struct {
		DisplayName   *string `json:"display_name"`
		ContactNumber *string `json:"contact_number"`
		Carrier       *string `json:"carrier"`
		NIF           *string `json:"nif"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if body.DisplayName != nil {
		u.DisplayName = *body.DisplayName
	}
	if body.Carrier != nil {
		if _, ok := mobile.ParseCarrier(*body.Carrier); !ok {
			http.Error(w, "unknown carrier", http.StatusBadRequest)
			return
		}
		u.Carrier = *body.Carrier
	}
	if body.ContactNumber != nil {
		carrier, _ := mobile.ParseCarrier(u.Carrier)
		if !mobile.ValidateNumber(*body.ContactNumber, carrier) {
			http.Error(w, "invalid contact number for carrier", http.StatusBadRequest)
			return
		}
		u.ContactNumber = mobile.Clean(*body.ContactNumber)
	}
	if body.NIF != nil {
		if *body.NIF != "" && !mobile.ValidateNIF(*body.NIF) {
			http.Error(w, "invalid NIF", http.StatusBadRequest)
			return
		}
		u.NIF = *body.NIF
	}
	if err := h.users.UpdateProfile(r.Context(), u); err != nil {
		h.log.Error("update settings failed", "error", err)
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/v1/account/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userIDFromRequest(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	entries, err := h.transactions.ListByUser(r.Context(), userID)
	if err != nil {
		h.log.Error("list payments failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*models.Transaction{}
	}
	writeJSON(w, http.StatusOK, entries)
}
