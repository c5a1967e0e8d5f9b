package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit event names. The escrow events are written inside the ledger's
// unit of work; the remaining ones are appended best-effort by the API
// layer and feed the suspicious-activity monitor.
const (
	AuditDepositCompleted = "DEPOSIT_COMPLETED"
	AuditPaymentReleased  = "PAYMENT_RELEASED"
	AuditRefundIssued     = "REFUND_ISSUED"

	AuditUserLogin      = "USER_LOGIN"
	AuditPaymentFailed  = "PAYMENT_FAILED"
	AuditContentFlagged = "CONTENT_FLAGGED"
)

// AuditLogEntry is an immutable record of a business event. Entries are
// append-only: there is no update or delete path anywhere in the code.
type AuditLogEntry struct {
	ID                  uuid.UUID  `json:"id"`
	ProjectID           *uuid.UUID `json:"project_id,omitempty"`
	Event               string     `json:"event"`
	AmountCents         int64      `json:"amount_cents"`
	OriginalAmountCents *int64     `json:"original_amount_cents,omitempty"`
	CommissionCents     *int64     `json:"commission_cents,omitempty"`
	TransactionID       *string    `json:"transaction_id,omitempty"`
	UserID              uuid.UUID  `json:"user_id"`
	JobaID              *uuid.UUID `json:"joba_id,omitempty"`
	Reason              *string    `json:"reason,omitempty"`
	UserAgent           string     `json:"user_agent,omitempty"`
	Origin              string     `json:"origin,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}
