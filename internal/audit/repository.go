// Package audit is the append-only trail of business-significant events.
// Entries are written once and never updated or deleted; escrow events
// are appended inside the ledger's transaction so a lost audit write
// fails the whole operation.
package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobalink/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const insertSQL = `
	INSERT INTO audit_log (id, project_id, event, amount_cents, original_amount_cents, commission_cents,
		transaction_id, user_id, joba_id, reason, user_agent, origin)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING created_at
`

// Append writes one entry outside any surrounding transaction. Used for
// advisory events (logins, failed payment attempts, content flags).
func (r *Repository) Append(ctx context.Context, e *models.AuditLogEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, insertSQL,
		e.ID, e.ProjectID, e.Event, e.AmountCents, e.OriginalAmountCents, e.CommissionCents,
		e.TransactionID, e.UserID, e.JobaID, e.Reason, e.UserAgent, e.Origin).Scan(&e.CreatedAt)
}

// AppendTx writes one entry inside the given transaction. The escrow
// ledger uses this so the audit entry commits or rolls back with the
// monetary records.
func (r *Repository) AppendTx(ctx context.Context, tx pgx.Tx, e *models.AuditLogEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return tx.QueryRow(ctx, insertSQL,
		e.ID, e.ProjectID, e.Event, e.AmountCents, e.OriginalAmountCents, e.CommissionCents,
		e.TransactionID, e.UserID, e.JobaID, e.Reason, e.UserAgent, e.Origin).Scan(&e.CreatedAt)
}

const selectCols = `id, project_id, event, amount_cents, original_amount_cents, commission_cents,
	transaction_id, user_id, joba_id, reason, user_agent, origin, created_at`

// ListByProject returns all entries for a project, oldest first, for
// dispute reconstruction.
func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.AuditLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+selectCols+`
		FROM audit_log WHERE project_id = $1 ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// ListByUser returns all entries for an acting user, oldest first. Used
// for self-service history and the suspicious-activity monitor.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.AuditLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+selectCols+`
		FROM audit_log WHERE user_id = $1 ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]*models.AuditLogEntry, error) {
	defer rows.Close()
	var list []*models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Event, &e.AmountCents, &e.OriginalAmountCents, &e.CommissionCents,
			&e.TransactionID, &e.UserID, &e.JobaID, &e.Reason, &e.UserAgent, &e.Origin, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
