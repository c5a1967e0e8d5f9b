package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jobalink/backend/internal/audit"
	"github.com/jobalink/backend/internal/mobile"
	"github.com/jobalink/backend/internal/models"
)

// Request/response structs use snake_case JSON.

type RegisterRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	DisplayName   string `json:"display_name"`
	Role          string `json:"role"`
	ContactNumber string `json:"contact_number"`
	Carrier       string `json:"carrier"`
	NIF           string `json:"nif,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	DisplayName      string `json:"display_name"`
	Role             string `json:"role"`
	ContactNumber    string `json:"contact_number"`
	Carrier          string `json:"carrier"`
	NIF              string `json:"nif,omitempty"`
	BalanceCents     int64  `json:"balance_cents"`
	TotalEarnedCents int64  `json:"total_earned_cents"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// AuditAppender records login events outside the ledger's unit of work.
type AuditAppender interface {
	Append(ctx context.Context, e *models.AuditLogEntry) error
}

type Handler struct {
	svc     Service
	audits  AuditAppender
	monitor *audit.Monitor
	log     *slog.Logger
}

func NewHandler(svc Service, audits AuditAppender, monitor *audit.Monitor, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, audits: audits, monitor: monitor, log: log}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" || req.DisplayName == "" || req.Role == "" || req.ContactNumber == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	carrier, ok := mobile.ParseCarrier(req.Carrier)
	if !ok {
		http.Error(w, "unknown carrier", http.StatusBadRequest)
		return
	}
	u, err := h.svc.Register(r.Context(), RegisterParams{
		Email:         req.Email,
		Password:      req.Password,
		DisplayName:   req.DisplayName,
		Role:          req.Role,
		ContactNumber: req.ContactNumber,
		Carrier:       carrier,
		NIF:           req.NIF,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}
		switch err.Error() {
		case "invalid role", "invalid contact number for carrier", "invalid NIF":
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error("register failed", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(userToResponse(u))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "missing email or password", http.StatusBadRequest)
		return
	}
	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.log.Error("login failed", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	// The login event is best-effort: a write failure must not block the
	// session, but the trail feeds the activity monitor.
	if err := h.audits.Append(r.Context(), &models.AuditLogEntry{
		Event:     models.AuditUserLogin,
		UserID:    u.ID,
		UserAgent: r.UserAgent(),
		Origin:    clientOrigin(r),
	}); err != nil {
		h.log.Warn("login audit append failed", "user_id", u.ID, "error", err)
	}
	if report, err := h.monitor.Check(r.Context(), u.ID); err == nil && report.Suspicious {
		h.log.Warn("suspicious account activity", "user_id", u.ID, "reasons", report.Reasons)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(LoginResponse{Token: token, User: userToResponse(u)})
}

func clientOrigin(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}

func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:               u.ID.String(),
		Email:            u.Email,
		DisplayName:      u.DisplayName,
		Role:             u.Role,
		ContactNumber:    u.ContactNumber,
		Carrier:          u.Carrier,
		NIF:              u.NIF,
		BalanceCents:     u.BalanceCents,
		TotalEarnedCents: u.TotalEarnedCents,
	}
}
