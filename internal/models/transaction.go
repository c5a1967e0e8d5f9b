package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction types.
const (
	TransactionDeposit    = "deposit"
	TransactionWithdrawal = "withdrawal"
	TransactionCommission = "commission"
	TransactionRefund     = "refund"
)

// Transaction statuses.
const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
)

// Transaction is one immutable money movement. The ID is a prefixed
// reference ("txn_", "rel_", "com_", "ref_") generated at creation and
// never reused. Completed transactions are never mutated or deleted.
//
// Withdrawal rows carry OriginalAmountCents and CommissionCents, with
// AmountCents = OriginalAmountCents - CommissionCents.
type Transaction struct {
	ID                  string            `json:"id"`
	ProjectID           uuid.UUID         `json:"project_id"`
	UserID              uuid.UUID         `json:"user_id"`
	Type                string            `json:"type"`
	Status              string            `json:"status"`
	AmountCents         int64             `json:"amount_cents"`
	OriginalAmountCents *int64            `json:"original_amount_cents,omitempty"`
	CommissionCents     *int64            `json:"commission_cents,omitempty"`
	Carrier             *string           `json:"carrier,omitempty"`
	ContactNumber       *string           `json:"contact_number,omitempty"`
	Reason              *string           `json:"reason,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
}
