package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jobalink/backend/internal/models"
)

// Rolling windows and thresholds for the suspicious-activity heuristic.
const (
	loginWindow    = 5 * time.Minute
	loginThreshold = 5

	failedPaymentWindow    = time.Hour
	failedPaymentThreshold = 3

	contentFlagWindow    = 24 * time.Hour
	contentFlagThreshold = 2
)

// UserLog is the slice of the audit trail the monitor reads.
type UserLog interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.AuditLogEntry, error)
}

// Report is an advisory recommendation. It never blocks an operation.
type Report struct {
	Suspicious bool     `json:"suspicious"`
	Reasons    []string `json:"reasons,omitempty"`
}

// Monitor flags users whose recent audit trail looks like brute-force
// logins, repeated failed payments, or repeated content flags.
type Monitor struct {
	log UserLog
	now func() time.Time
}

func NewMonitor(log UserLog) *Monitor {
	return &Monitor{log: log, now: time.Now}
}

func (m *Monitor) Check(ctx context.Context, userID uuid.UUID) (*Report, error) {
	entries, err := m.log.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := m.now()

	var logins, failedPayments, contentFlags int
	for _, e := range entries {
		age := now.Sub(e.CreatedAt)
		switch e.Event {
		case models.AuditUserLogin:
			if age < loginWindow {
				logins++
			}
		case models.AuditPaymentFailed:
			if age < failedPaymentWindow {
				failedPayments++
			}
		case models.AuditContentFlagged:
			if age < contentFlagWindow {
				contentFlags++
			}
		}
	}

	var reasons []string
	if logins > loginThreshold {
		reasons = append(reasons, "Múltiplas tentativas de login em curto período")
	}
	if failedPayments > failedPaymentThreshold {
		reasons = append(reasons, "Múltiplas tentativas de pagamento falhadas")
	}
	if contentFlags > contentFlagThreshold {
		reasons = append(reasons, "Conteúdo inapropriado detectado múltiplas vezes")
	}

	return &Report{Suspicious: len(reasons) > 0, Reasons: reasons}, nil
}
