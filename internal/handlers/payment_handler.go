package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jobalink/backend/internal/auth"
	"github.com/jobalink/backend/internal/escrow"
	"github.com/jobalink/backend/internal/middleware"
	"github.com/jobalink/backend/internal/mobile"
	"github.com/jobalink/backend/internal/models"
	"github.com/jobalink/backend/internal/screening"
)

var paymentOps = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "jobalink",
	Name:      "payment_operations_total",
	Help:      "Escrow operations by type and outcome.",
}, []string{"operation", "outcome"})

// EscrowService abstracts the ledger operations needed by the handler.
type EscrowService interface {
	Deposit(ctx context.Context, sess auth.Session, req escrow.DepositRequest) (*escrow.DepositResult, error)
	Release(ctx context.Context, sess auth.Session, req escrow.ReleaseRequest) (*escrow.ReleaseResult, error)
	Refund(ctx context.Context, sess auth.Session, req escrow.RefundRequest) (*escrow.RefundResult, error)
}

// TransactionLister reads the immutable money-movement log.
type TransactionLister interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
}

// AuditReader reads the audit trail.
type AuditReader interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.AuditLogEntry, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.AuditLogEntry, error)
}

// AuditAppender records failure events outside the ledger's unit of work.
type AuditAppender interface {
	Append(ctx context.Context, e *models.AuditLogEntry) error
}

// PaymentHandler serves the /v1/projects/{id}/... payment endpoints.
type PaymentHandler struct {
	Escrow       EscrowService
	Transactions TransactionLister
	Audits       AuditReader
	AuditLog     AuditAppender
	Screener     *screening.Screener
	Logger       *slog.Logger
}

// --- POST /v1/projects/{id}/deposit ---

type depositRequest struct {
	AmountCents   int64  `json:"amount_cents"`
	Carrier       string `json:"carrier"`
	ContactNumber string `json:"contact_number"`
}

// Deposit handles POST /v1/projects/{id}/deposit. Only the Link (payer)
// side may fund a project.
func (h *PaymentHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	sess, projectID, ok := h.payerSession(w, r)
	if !ok {
		return
	}

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	carrier, ok := mobile.ParseCarrier(req.Carrier)
	if !ok {
		http.Error(w, `{"error":"unknown carrier"}`, http.StatusBadRequest)
		return
	}

	res, err := h.Escrow.Deposit(r.Context(), sess, escrow.DepositRequest{
		ProjectID:     projectID,
		AmountCents:   req.AmountCents,
		Carrier:       carrier,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		h.writeEscrowError(w, r, sess, "deposit", projectID, req.AmountCents, err)
		return
	}
	paymentOps.WithLabelValues("deposit", "ok").Inc()
	writeJSON(w, http.StatusOK, res)
}

// --- POST /v1/projects/{id}/release ---

type releaseRequest struct {
	JobaID            string `json:"joba_id"`
	AmountCents       int64  `json:"amount_cents"`
	Carrier           string `json:"carrier"`
	ContactNumber     string `json:"contact_number"`
	CommissionPercent *int   `json:"commission_percent,omitempty"`
}

// Release handles POST /v1/projects/{id}/release.
func (h *PaymentHandler) Release(w http.ResponseWriter, r *http.Request) {
	sess, projectID, ok := h.payerSession(w, r)
	if !ok {
		return
	}

	var req releaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	jobaID, err := uuid.Parse(req.JobaID)
	if err != nil {
		http.Error(w, `{"error":"invalid joba_id"}`, http.StatusBadRequest)
		return
	}
	carrier, ok := mobile.ParseCarrier(req.Carrier)
	if !ok {
		http.Error(w, `{"error":"unknown carrier"}`, http.StatusBadRequest)
		return
	}

	res, err := h.Escrow.Release(r.Context(), sess, escrow.ReleaseRequest{
		ProjectID:         projectID,
		JobaID:            jobaID,
		GrossAmountCents:  req.AmountCents,
		PayeeContact:      req.ContactNumber,
		PayeeCarrier:      carrier,
		CommissionPercent: req.CommissionPercent,
	})
	if err != nil {
		h.writeEscrowError(w, r, sess, "release", projectID, req.AmountCents, err)
		return
	}
	paymentOps.WithLabelValues("release", "ok").Inc()
	writeJSON(w, http.StatusOK, res)
}

// --- POST /v1/projects/{id}/refund ---

type refundRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

// Refund handles POST /v1/projects/{id}/refund.
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	sess, projectID, ok := h.payerSession(w, r)
	if !ok {
		return
	}

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		http.Error(w, `{"error":"reason is required"}`, http.StatusBadRequest)
		return
	}

	res, err := h.Escrow.Refund(r.Context(), sess, escrow.RefundRequest{
		ProjectID:   projectID,
		AmountCents: req.AmountCents,
		Reason:      req.Reason,
	})
	if err != nil {
		h.writeEscrowError(w, r, sess, "refund", projectID, req.AmountCents, err)
		return
	}
	paymentOps.WithLabelValues("refund", "ok").Inc()
	writeJSON(w, http.StatusOK, res)
}

// --- GET /v1/projects/{id}/transactions ---

func (h *PaymentHandler) ListProjectTransactions(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.SessionFromCtx(r.Context()); !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	projectID, ok := extractProjectID(r)
	if !ok {
		http.Error(w, `{"error":"invalid project id"}`, http.StatusBadRequest)
		return
	}
	txns, err := h.Transactions.ListByProject(r.Context(), projectID)
	if err != nil {
		h.Logger.Error("list project transactions", "project_id", projectID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

// --- GET /v1/projects/{id}/audit ---

func (h *PaymentHandler) ListProjectAudit(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.SessionFromCtx(r.Context()); !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	projectID, ok := extractProjectID(r)
	if !ok {
		http.Error(w, `{"error":"invalid project id"}`, http.StatusBadRequest)
		return
	}
	entries, err := h.Audits.ListByProject(r.Context(), projectID)
	if err != nil {
		h.Logger.Error("list project audit", "project_id", projectID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- GET /v1/transactions ---

// ListMyTransactions returns the caller's transaction history, newest first.
func (h *PaymentHandler) ListMyTransactions(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	txns, err := h.Transactions.ListByUser(r.Context(), sess.UserID)
	if err != nil {
		h.Logger.Error("list user transactions", "user_id", sess.UserID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

// --- GET /v1/me/audit ---

// ListMyAudit returns the caller's own audit trail, oldest first.
func (h *PaymentHandler) ListMyAudit(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	entries, err := h.Audits.ListByUser(r.Context(), sess.UserID)
	if err != nil {
		h.Logger.Error("list user audit", "user_id", sess.UserID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- POST /v1/screening ---

type screeningRequest struct {
	Content string `json:"content"`
}

type screeningResponse struct {
	screening.Result
	Sanitized string `json:"sanitized"`
}

// ScreenContent handles POST /v1/screening. Advisory only.
func (h *PaymentHandler) ScreenContent(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.SessionFromCtx(r.Context()); !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req screeningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, `{"error":"content is required"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, screeningResponse{
		Result:    h.Screener.Screen(req.Content),
		Sanitized: screening.Sanitize(req.Content),
	})
}

// --- helpers ---

// payerSession authenticates the request, requires the Link role, and
// parses the project id from the path.
func (h *PaymentHandler) payerSession(w http.ResponseWriter, r *http.Request) (auth.Session, uuid.UUID, bool) {
	sess, ok := middleware.SessionFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return auth.Session{}, uuid.Nil, false
	}
	if sess.Role != models.RoleLink {
		http.Error(w, `{"error":"only the project owner can move funds"}`, http.StatusForbidden)
		return auth.Session{}, uuid.Nil, false
	}
	projectID, ok := extractProjectID(r)
	if !ok {
		http.Error(w, `{"error":"invalid project id"}`, http.StatusBadRequest)
		return auth.Session{}, uuid.Nil, false
	}
	return sess, projectID, true
}

// writeEscrowError maps the ledger's failure taxonomy onto HTTP statuses
// and records failed payment attempts for the activity monitor.
func (h *PaymentHandler) writeEscrowError(w http.ResponseWriter, r *http.Request, sess auth.Session, operation string, projectID uuid.UUID, amountCents int64, err error) {
	switch {
	case errors.Is(err, escrow.ErrValidationFailed):
		paymentOps.WithLabelValues(operation, "validation_failed").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})

	case errors.Is(err, escrow.ErrNotOwner):
		paymentOps.WithLabelValues(operation, "not_owner").Inc()
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})

	case errors.Is(err, escrow.ErrInvalidState):
		paymentOps.WithLabelValues(operation, "invalid_state").Inc()
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})

	case errors.Is(err, escrow.ErrAmountMismatch):
		paymentOps.WithLabelValues(operation, "amount_mismatch").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})

	case errors.Is(err, escrow.ErrPaymentFailed):
		paymentOps.WithLabelValues(operation, "payment_failed").Inc()
		// The ledger wrote nothing; the failure event itself is recorded
		// best-effort so the monitor can see repeated attempts.
		if auditErr := h.AuditLog.Append(r.Context(), &models.AuditLogEntry{
			ProjectID:   &projectID,
			Event:       models.AuditPaymentFailed,
			AmountCents: amountCents,
			UserID:      sess.UserID,
			UserAgent:   sess.UserAgent,
			Origin:      sess.Origin,
		}); auditErr != nil {
			h.Logger.Warn("payment failure audit append failed", "project_id", projectID, "error", auditErr)
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "Falha na transação. Tente novamente.",
		})

	default:
		paymentOps.WithLabelValues(operation, "error").Inc()
		h.Logger.Error("escrow operation failed", "operation", operation, "project_id", projectID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}

// extractProjectID parses the project UUID from the URL path.
// Supports paths like /v1/projects/{id} and /v1/projects/{id}/deposit.
func extractProjectID(r *http.Request) (uuid.UUID, bool) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/projects/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
