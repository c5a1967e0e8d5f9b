package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobalink/backend/internal/models"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

const projectCols = `id, link_id, joba_id, title, description, budget_cents, status, custody_status,
	escrow_amount_cents, escrow_transaction_id, released_amount_cents, commission_paid_cents,
	cancel_reason, created_at, updated_at`

func (r *ProjectRepo) Create(ctx context.Context, p *models.Project) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO projects (id, link_id, title, description, budget_cents, status, custody_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, p.ID, p.LinkID, p.Title, p.Description, p.BudgetCents, p.Status, p.CustodyStatus).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := r.pool.QueryRow(ctx, `
		SELECT `+projectCols+` FROM projects WHERE id = $1
	`, id).Scan(&p.ID, &p.LinkID, &p.JobaID, &p.Title, &p.Description, &p.BudgetCents, &p.Status, &p.CustodyStatus,
		&p.EscrowAmountCents, &p.EscrowTransactionID, &p.ReleasedAmountCents, &p.CommissionPaidCents,
		&p.CancelReason, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) ListByLink(ctx context.Context, linkID uuid.UUID) ([]*models.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+projectCols+` FROM projects WHERE link_id = $1 ORDER BY created_at DESC
	`, linkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.LinkID, &p.JobaID, &p.Title, &p.Description, &p.BudgetCents, &p.Status, &p.CustodyStatus,
			&p.EscrowAmountCents, &p.EscrowTransactionID, &p.ReleasedAmountCents, &p.CommissionPaidCents,
			&p.CancelReason, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// AssignJoba moves an open project to in_progress with the given Joba.
// Conditional on status so a second assignment loses the race.
func (r *ProjectRepo) AssignJoba(ctx context.Context, projectID, jobaID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE projects SET joba_id = $2, status = $3, updated_at = now()
		WHERE id = $1 AND status = $4
	`, projectID, jobaID, models.ProjectStatusInProgress, models.ProjectStatusOpen)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkPaidInEscrowTx records a completed deposit. Conditional on the
// custody status being pending; returns false when the project was not
// in that state, leaving it untouched.
func (r *ProjectRepo) MarkPaidInEscrowTx(ctx context.Context, tx pgx.Tx, projectID uuid.UUID, amountCents int64, transactionID string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE projects SET custody_status = $2, escrow_amount_cents = $3, escrow_transaction_id = $4, updated_at = now()
		WHERE id = $1 AND custody_status = $5
	`, projectID, models.CustodyPaidInEscrow, amountCents, transactionID, models.CustodyPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkReleasedTx finalizes the success path: custody released, project
// completed, with the net amount and commission stamped.
func (r *ProjectRepo) MarkReleasedTx(ctx context.Context, tx pgx.Tx, projectID uuid.UUID, netCents, commissionCents int64) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE projects SET custody_status = $2, status = $3, released_amount_cents = $4, commission_paid_cents = $5, updated_at = now()
		WHERE id = $1 AND custody_status = $6
	`, projectID, models.CustodyReleased, models.ProjectStatusCompleted, netCents, commissionCents, models.CustodyPaidInEscrow)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkRefundedTx finalizes the reversal path from pending or
// paid_in_escrow: custody refunded, project cancelled with the reason.
func (r *ProjectRepo) MarkRefundedTx(ctx context.Context, tx pgx.Tx, projectID uuid.UUID, reason string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE projects SET custody_status = $2, status = $3, cancel_reason = $4, updated_at = now()
		WHERE id = $1 AND custody_status IN ($5, $6)
	`, projectID, models.CustodyRefunded, models.ProjectStatusCancelled, reason, models.CustodyPending, models.CustodyPaidInEscrow)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
