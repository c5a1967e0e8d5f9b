package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobalink/backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userCols = `id, email, display_name, role, password_hash, contact_number, carrier, nif,
	balance_cents, total_earned_cents, created_at, updated_at`

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, display_name, role, password_hash, contact_number, carrier, nif)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.DisplayName, u.Role, u.PasswordHash, u.ContactNumber, u.Carrier, u.NIF).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT `+userCols+` FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.PasswordHash, &u.ContactNumber, &u.Carrier, &u.NIF,
		&u.BalanceCents, &u.TotalEarnedCents, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT `+userCols+` FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.PasswordHash, &u.ContactNumber, &u.Carrier, &u.NIF,
		&u.BalanceCents, &u.TotalEarnedCents, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile persists the editable profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET display_name = $1, contact_number = $2, carrier = $3, nif = $4, updated_at = now()
		WHERE id = $5
	`, u.DisplayName, u.ContactNumber, u.Carrier, u.NIF, u.ID)
	return err
}

// ApplyPayout credits a Joba's balance for one released transaction,
// exactly once. The payouts row keyed by transaction id is the
// idempotency guard: a retry that finds the row already present applies
// nothing and returns false.
func (r *UserRepo) ApplyPayout(ctx context.Context, transactionID string, jobaID uuid.UUID, amountCents int64) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO payouts (transaction_id, joba_id, amount_cents)
		VALUES ($1, $2, $3)
		ON CONFLICT (transaction_id) DO NOTHING
	`, transactionID, jobaID, amountCents)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE users SET balance_cents = balance_cents + $1, total_earned_cents = total_earned_cents + $1, updated_at = now()
		WHERE id = $2
	`, amountCents, jobaID)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}
