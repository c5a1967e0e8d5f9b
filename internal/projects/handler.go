package projects

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jobalink/backend/internal/middleware"
	"github.com/jobalink/backend/internal/models"
)

// Handler serves /v1/projects (creation, assignment, listing). Payment
// sub-paths on the same prefix are routed elsewhere.
type Handler struct {
	Svc    *Service
	Logger *slog.Logger
}

type createProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	BudgetCents int64  `json:"budget_cents"`
}

// Create handles POST /v1/projects. Only Links open projects.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if sess.Role != models.RoleLink {
		http.Error(w, `{"error":"only links can open projects"}`, http.StatusForbidden)
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	p, err := h.Svc.Create(r.Context(), sess, CreateParams{
		Title:       req.Title,
		Description: req.Description,
		BudgetCents: req.BudgetCents,
	})
	if err != nil {
		if errors.Is(err, ErrContentBlocked) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": "Conteúdo bloqueado: solicitação de pagamento fora da plataforma",
			})
			return
		}
		switch err.Error() {
		case "title is required", "budget must be positive":
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.Logger.Error("create project", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// List handles GET /v1/projects, scoped to the calling Link.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	ps, err := h.Svc.ListByLink(r.Context(), sess.UserID)
	if err != nil {
		h.Logger.Error("list projects", "link_id", sess.UserID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// Get handles GET /v1/projects/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.SessionFromCtx(r.Context()); !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	id, ok := extractProjectID(r)
	if !ok {
		http.Error(w, `{"error":"invalid project id"}`, http.StatusBadRequest)
		return
	}
	p, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"project not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type assignRequest struct {
	JobaID string `json:"joba_id"`
}

// Assign handles POST /v1/projects/{id}/assign.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	projectID, ok := extractProjectID(r)
	if !ok {
		http.Error(w, `{"error":"invalid project id"}`, http.StatusBadRequest)
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	jobaID, err := uuid.Parse(req.JobaID)
	if err != nil {
		http.Error(w, `{"error":"invalid joba_id"}`, http.StatusBadRequest)
		return
	}

	p, err := h.Svc.Assign(r.Context(), sess, projectID, jobaID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotOwner):
			http.Error(w, `{"error":"caller does not own this project"}`, http.StatusForbidden)
		case errors.Is(err, ErrAlreadyAssigned):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "project is not open for assignment"})
		default:
			h.Logger.Error("assign joba", "project_id", projectID, "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

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
