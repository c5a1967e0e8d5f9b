package models

import (
	"time"

	"github.com/google/uuid"
)

// Project lifecycle status.
const (
	ProjectStatusOpen       = "open"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusCancelled  = "cancelled"
)

// Escrow custody status. Transitions are one-directional:
// pending -> paid_in_escrow -> released, or pending|paid_in_escrow -> refunded.
// released and refunded are terminal.
const (
	CustodyPending       = "pending"
	CustodyPaidInEscrow  = "paid_in_escrow"
	CustodyReleased      = "released"
	CustodyRefunded      = "refunded"
)

type Project struct {
	ID                  uuid.UUID  `json:"id"`
	LinkID              uuid.UUID  `json:"link_id"`
	JobaID              *uuid.UUID `json:"joba_id,omitempty"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	BudgetCents         int64      `json:"budget_cents"`
	Status              string     `json:"status"`
	CustodyStatus       string     `json:"custody_status"`
	EscrowAmountCents   int64      `json:"escrow_amount_cents"`
	EscrowTransactionID *string    `json:"escrow_transaction_id,omitempty"`
	ReleasedAmountCents *int64     `json:"released_amount_cents,omitempty"`
	CommissionPaidCents *int64     `json:"commission_paid_cents,omitempty"`
	CancelReason        *string    `json:"cancel_reason,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
