// Package payout credits a Joba's wallet balance after a release.
// Crediting is deliberately outside the release's atomic unit of work:
// the job is enqueued in the same database transaction, then delivered
// at least once, and the payouts table keyed by transaction id makes the
// credit idempotent across retries.
package payout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

type CreditPayoutArgs struct {
	TransactionID string    `json:"transaction_id"`
	JobaID        uuid.UUID `json:"joba_id"`
	AmountCents   int64     `json:"amount_cents"`
}

func (CreditPayoutArgs) Kind() string { return "credit_payout" }

// Crediter applies one payout idempotently, keyed by transaction id.
// Returns false when the payout was already applied.
type Crediter interface {
	ApplyPayout(ctx context.Context, transactionID string, jobaID uuid.UUID, amountCents int64) (bool, error)
}

type CreditPayoutWorker struct {
	river.WorkerDefaults[CreditPayoutArgs]
	users  Crediter
	logger *slog.Logger
}

func NewCreditPayoutWorker(users Crediter, logger *slog.Logger) *CreditPayoutWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreditPayoutWorker{users: users, logger: logger}
}

func (w *CreditPayoutWorker) Work(ctx context.Context, job *river.Job[CreditPayoutArgs]) error {
	args := job.Args
	applied, err := w.users.ApplyPayout(ctx, args.TransactionID, args.JobaID, args.AmountCents)
	if err != nil {
		return fmt.Errorf("apply payout %s: %w", args.TransactionID, err)
	}
	if !applied {
		w.logger.Info("payout already applied, skipping",
			"transaction_id", args.TransactionID, "joba_id", args.JobaID)
		return nil
	}
	w.logger.Info("payout credited",
		"transaction_id", args.TransactionID, "joba_id", args.JobaID, "amount_cents", args.AmountCents)
	return nil
}
