// Package projects manages the marketplace side of a job: creation by a
// Link, assignment of a Joba, and listing. Money movement lives in the
// escrow package; projects only own the work's lifecycle up to the point
// custody takes over.
package projects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jobalink/backend/internal/auth"
	"github.com/jobalink/backend/internal/models"
	"github.com/jobalink/backend/internal/screening"
)

// ErrContentBlocked is returned when a description screens as an
// off-platform-payment solicitation.
var ErrContentBlocked = errors.New("content blocked by screening")

// ErrNotOwner is returned when a caller acts on a project they don't own.
var ErrNotOwner = errors.New("caller does not own this project")

// ErrAlreadyAssigned is returned when the project already has a Joba.
var ErrAlreadyAssigned = errors.New("project is not open for assignment")

// Store is the slice of the project repository this service needs.
type Store interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListByLink(ctx context.Context, linkID uuid.UUID) ([]*models.Project, error)
	AssignJoba(ctx context.Context, projectID, jobaID uuid.UUID) (bool, error)
}

// AuditAppender records screening flags outside the payment ledger.
type AuditAppender interface {
	Append(ctx context.Context, e *models.AuditLogEntry) error
}

type Service struct {
	store    Store
	screener *screening.Screener
	audits   AuditAppender
	logger   *slog.Logger
}

func NewService(store Store, screener *screening.Screener, audits AuditAppender, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, screener: screener, audits: audits, logger: logger}
}

type CreateParams struct {
	Title       string
	Description string
	BudgetCents int64
}

// Create screens the incoming text, stores a sanitized copy, and opens
// the project with custody pending. Content recommended for blocking is
// rejected; content recommended for review is stored but flagged in the
// audit trail.
func (s *Service) Create(ctx context.Context, sess auth.Session, p CreateParams) (*models.Project, error) {
	if p.Title == "" {
		return nil, errors.New("title is required")
	}
	if p.BudgetCents <= 0 {
		return nil, errors.New("budget must be positive")
	}

	result := s.screener.Screen(p.Title + "\n" + p.Description)
	if result.Recommendation == screening.RecommendBlock {
		s.logger.Warn("project content blocked",
			"link_id", sess.UserID, "flagged_terms", result.FlaggedTerms, "risk", result.RiskLevel)
		return nil, fmt.Errorf("%w: %v", ErrContentBlocked, result.FlaggedTerms)
	}

	project := &models.Project{
		ID:            uuid.New(),
		LinkID:        sess.UserID,
		Title:         screening.Sanitize(p.Title),
		Description:   screening.Sanitize(p.Description),
		BudgetCents:   p.BudgetCents,
		Status:        models.ProjectStatusOpen,
		CustodyStatus: models.CustodyPending,
	}
	if err := s.store.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	if result.Recommendation == screening.RecommendReview {
		// Stored anyway; the flag feeds the activity monitor and must
		// point at the project it concerns.
		if err := s.audits.Append(ctx, &models.AuditLogEntry{
			Event:     models.AuditContentFlagged,
			UserID:    sess.UserID,
			ProjectID: &project.ID,
			UserAgent: sess.UserAgent,
			Origin:    sess.Origin,
		}); err != nil {
			s.logger.Warn("content flag audit append failed",
				"project_id", project.ID, "link_id", sess.UserID, "error", err)
		}
	}
	return project, nil
}

// Assign puts a Joba on an open project and moves it to in_progress.
func (s *Service) Assign(ctx context.Context, sess auth.Session, projectID, jobaID uuid.UUID) (*models.Project, error) {
	p, err := s.store.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if p.LinkID != sess.UserID {
		return nil, ErrNotOwner
	}
	assigned, err := s.store.AssignJoba(ctx, projectID, jobaID)
	if err != nil {
		return nil, fmt.Errorf("assign joba: %w", err)
	}
	if !assigned {
		return nil, ErrAlreadyAssigned
	}
	return s.store.GetByID(ctx, projectID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListByLink(ctx context.Context, linkID uuid.UUID) ([]*models.Project, error) {
	return s.store.ListByLink(ctx, linkID)
}
