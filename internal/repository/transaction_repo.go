package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobalink/backend/internal/models"
)

// TransactionRepo persists immutable money-movement records. There is no
// update or delete; completed transactions are written once.
type TransactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepo(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionCols = `id, project_id, user_id, type, status, amount_cents, original_amount_cents,
	commission_cents, carrier, contact_number, reason, metadata, created_at`

// CreateTx inserts a transaction record inside the given transaction.
func (r *TransactionRepo) CreateTx(ctx context.Context, tx pgx.Tx, t *models.Transaction) error {
	return tx.QueryRow(ctx, `
		INSERT INTO transactions (id, project_id, user_id, type, status, amount_cents, original_amount_cents,
			commission_cents, carrier, contact_number, reason, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`, t.ID, t.ProjectID, t.UserID, t.Type, t.Status, t.AmountCents, t.OriginalAmountCents,
		t.CommissionCents, t.Carrier, t.ContactNumber, t.Reason, t.Metadata).Scan(&t.CreatedAt)
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.pool.QueryRow(ctx, `
		SELECT `+transactionCols+` FROM transactions WHERE id = $1
	`, id).Scan(&t.ID, &t.ProjectID, &t.UserID, &t.Type, &t.Status, &t.AmountCents, &t.OriginalAmountCents,
		&t.CommissionCents, &t.Carrier, &t.ContactNumber, &t.Reason, &t.Metadata, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionCols+` FROM transactions WHERE project_id = $1 ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func (r *TransactionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionCols+` FROM transactions WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]*models.Transaction, error) {
	defer rows.Close()
	var list []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.UserID, &t.Type, &t.Status, &t.AmountCents, &t.OriginalAmountCents,
			&t.CommissionCents, &t.Carrier, &t.ContactNumber, &t.Reason, &t.Metadata, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
