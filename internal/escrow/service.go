// Package escrow is the payment ledger: the state machine that moves a
// Link's funds into custody, holds them while the work happens, and
// releases them to the Joba (net of commission) or reverses them by
// refund.
//
// Every successful operation writes its transaction record(s), the
// project custody update, and the audit entry in a single database
// transaction. If any of those writes fails -- the audit append
// included -- nothing commits and the operation is surfaced as failed.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jobalink/backend/internal/auth"
	"github.com/jobalink/backend/internal/commission"
	"github.com/jobalink/backend/internal/gateway"
	"github.com/jobalink/backend/internal/mobile"
	"github.com/jobalink/backend/internal/models"
	"github.com/jobalink/backend/internal/payout"
)

// TxBeginner abstracts transaction creation so tests don't need a
// pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ProjectStore is the slice of the project repository the ledger needs.
// The Mark* methods are conditional on the current custody status and
// report whether a row transitioned.
type ProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	MarkPaidInEscrowTx(ctx context.Context, tx pgx.Tx, projectID uuid.UUID, amountCents int64, transactionID string) (bool, error)
	MarkReleasedTx(ctx context.Context, tx pgx.Tx, projectID uuid.UUID, netCents, commissionCents int64) (bool, error)
	MarkRefundedTx(ctx context.Context, tx pgx.Tx, projectID uuid.UUID, reason string) (bool, error)
}

// TransactionStore appends immutable money-movement records.
type TransactionStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, t *models.Transaction) error
}

// AuditStore appends audit entries inside the ledger's transaction.
type AuditStore interface {
	AppendTx(ctx context.Context, tx pgx.Tx, e *models.AuditLogEntry) error
}

// EnqueuePayoutTxFunc enqueues a balance-crediting job within the given
// transaction. Provided by main as a closure over river.Client.InsertTx.
type EnqueuePayoutTxFunc func(ctx context.Context, tx pgx.Tx, args payout.CreditPayoutArgs) error

// Service is the escrow ledger.
type Service struct {
	pool          TxBeginner
	projects      ProjectStore
	transactions  TransactionStore
	audits        AuditStore
	gateway       gateway.Gateway
	enqueuePayout EnqueuePayoutTxFunc
	logger        *slog.Logger
	locks         projectLocks
}

func NewService(
	pool TxBeginner,
	projects ProjectStore,
	transactions TransactionStore,
	audits AuditStore,
	gw gateway.Gateway,
	enqueuePayout EnqueuePayoutTxFunc,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		pool:          pool,
		projects:      projects,
		transactions:  transactions,
		audits:        audits,
		gateway:       gw,
		enqueuePayout: enqueuePayout,
		logger:        logger,
	}
}

// newRef builds a prefixed transaction reference ("txn_", "rel_",
// "com_", "ref_"). References are generated once and never reused.
func newRef(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// --- Deposit ---

type DepositRequest struct {
	ProjectID     uuid.UUID
	AmountCents   int64
	Carrier       mobile.Carrier
	ContactNumber string
}

type DepositResult struct {
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

// Deposit collects the amount from the Link's mobile wallet into
// custody. On success the project moves pending -> paid_in_escrow with
// the amount and transaction id stamped, and one DEPOSIT_COMPLETED
// audit entry is appended. On a network failure nothing is written.
func (s *Service) Deposit(ctx context.Context, sess auth.Session, req DepositRequest) (*DepositResult, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidationFailed)
	}
	if !mobile.ValidateNumber(req.ContactNumber, req.Carrier) {
		return nil, fmt.Errorf("%w: %q is not a valid %s number", ErrValidationFailed, req.ContactNumber, req.Carrier)
	}

	unlock := s.locks.lock(req.ProjectID)
	defer unlock()

	p, err := s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if p.LinkID != sess.UserID {
		return nil, ErrNotOwner
	}
	if p.CustodyStatus != models.CustodyPending {
		return nil, fmt.Errorf("%w: deposit requires custody %s, project is %s", ErrInvalidState, models.CustodyPending, p.CustodyStatus)
	}

	if err := s.gateway.Collect(ctx, gateway.CollectRequest{
		Carrier:       string(req.Carrier),
		ContactNumber: req.ContactNumber,
		AmountCents:   req.AmountCents,
	}); err != nil {
		if errors.Is(err, gateway.ErrUnavailable) {
			s.logger.Warn("deposit collect failed", "project_id", p.ID, "carrier", req.Carrier, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
		return nil, fmt.Errorf("collect: %w", err)
	}

	txnID := newRef("txn")
	carrier := string(req.Carrier)
	record := &models.Transaction{
		ID:            txnID,
		ProjectID:     p.ID,
		UserID:        sess.UserID,
		Type:          models.TransactionDeposit,
		Status:        models.TransactionCompleted,
		AmountCents:   req.AmountCents,
		Carrier:       &carrier,
		ContactNumber: &req.ContactNumber,
		Metadata: map[string]string{
			"payment_method": strings.ToUpper(carrier) + "_MOBILE",
		},
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin deposit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.transactions.CreateTx(ctx, tx, record); err != nil {
		return nil, fmt.Errorf("create deposit transaction: %w", err)
	}
	moved, err := s.projects.MarkPaidInEscrowTx(ctx, tx, p.ID, req.AmountCents, txnID)
	if err != nil {
		return nil, fmt.Errorf("mark paid in escrow: %w", err)
	}
	if !moved {
		return nil, fmt.Errorf("%w: project left %s during deposit", ErrInvalidState, models.CustodyPending)
	}
	if err := s.audits.AppendTx(ctx, tx, &models.AuditLogEntry{
		ProjectID:     &p.ID,
		Event:         models.AuditDepositCompleted,
		AmountCents:   req.AmountCents,
		TransactionID: &txnID,
		UserID:        sess.UserID,
		UserAgent:     sess.UserAgent,
		Origin:        sess.Origin,
	}); err != nil {
		return nil, fmt.Errorf("append audit: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit deposit: %w", err)
	}

	s.logger.Info("deposit completed", "project_id", p.ID, "transaction_id", txnID, "amount_cents", req.AmountCents)
	return &DepositResult{
		TransactionID: txnID,
		Message:       fmt.Sprintf("Pagamento de %s MZN realizado com sucesso via %s", formatMZN(req.AmountCents), strings.ToUpper(carrier)),
	}, nil
}

// --- Release ---

type ReleaseRequest struct {
	ProjectID        uuid.UUID
	JobaID           uuid.UUID
	GrossAmountCents int64
	PayeeContact     string
	PayeeCarrier     mobile.Carrier
	// CommissionPercent overrides the platform default when non-nil.
	CommissionPercent *int
}

type ReleaseResult struct {
	TransactionID   string `json:"transaction_id"`
	NetAmountCents  int64  `json:"net_amount_cents"`
	CommissionCents int64  `json:"commission_cents"`
	Message         string `json:"message"`
}

// Release disburses the escrowed amount to the Joba's mobile wallet, net
// of commission. Exactly two transaction records are written: the
// withdrawal (amount = net, original amount and commission attached) and
// the commission record referencing it. The project moves
// paid_in_escrow -> released and completes, and one PAYMENT_RELEASED
// audit entry carries both gross and net. A project already released
// rejects a second call with ErrInvalidState rather than double-paying.
func (s *Service) Release(ctx context.Context, sess auth.Session, req ReleaseRequest) (*ReleaseResult, error) {
	if req.GrossAmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidationFailed)
	}
	if !mobile.ValidateNumber(req.PayeeContact, req.PayeeCarrier) {
		return nil, fmt.Errorf("%w: %q is not a valid %s number", ErrValidationFailed, req.PayeeContact, req.PayeeCarrier)
	}
	percent := commission.DefaultPercent
	if req.CommissionPercent != nil {
		percent = *req.CommissionPercent
	}
	commissionCents, netCents, err := commission.Calculate(req.GrossAmountCents, percent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	unlock := s.locks.lock(req.ProjectID)
	defer unlock()

	p, err := s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if p.LinkID != sess.UserID {
		return nil, ErrNotOwner
	}
	if p.CustodyStatus != models.CustodyPaidInEscrow {
		return nil, fmt.Errorf("%w: release requires custody %s, project is %s", ErrInvalidState, models.CustodyPaidInEscrow, p.CustodyStatus)
	}
	if p.JobaID != nil && *p.JobaID != req.JobaID {
		return nil, fmt.Errorf("%w: joba does not match project assignment", ErrValidationFailed)
	}
	if req.GrossAmountCents != p.EscrowAmountCents {
		s.logger.Error("escrow amount mismatch on release",
			"project_id", p.ID, "requested_cents", req.GrossAmountCents, "escrowed_cents", p.EscrowAmountCents, "user_id", sess.UserID)
		return nil, fmt.Errorf("%w: requested %d, escrowed %d", ErrAmountMismatch, req.GrossAmountCents, p.EscrowAmountCents)
	}

	if err := s.gateway.Disburse(ctx, gateway.DisburseRequest{
		Carrier:       string(req.PayeeCarrier),
		ContactNumber: req.PayeeContact,
		AmountCents:   netCents,
	}); err != nil {
		if errors.Is(err, gateway.ErrUnavailable) {
			s.logger.Warn("release disburse failed", "project_id", p.ID, "carrier", req.PayeeCarrier, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
		return nil, fmt.Errorf("disburse: %w", err)
	}

	relID := newRef("rel")
	comID := newRef("com")
	carrier := string(req.PayeeCarrier)
	percentStr := fmt.Sprintf("%d", percent)

	withdrawal := &models.Transaction{
		ID:                  relID,
		ProjectID:           p.ID,
		UserID:              req.JobaID,
		Type:                models.TransactionWithdrawal,
		Status:              models.TransactionCompleted,
		AmountCents:         netCents,
		OriginalAmountCents: &req.GrossAmountCents,
		CommissionCents:     &commissionCents,
		Carrier:             &carrier,
		ContactNumber:       &req.PayeeContact,
		Metadata: map[string]string{
			"payment_method":     strings.ToUpper(carrier) + "_MOBILE",
			"commission_percent": percentStr,
		},
	}
	commissionRecord := &models.Transaction{
		ID:          comID,
		ProjectID:   p.ID,
		UserID:      sess.UserID,
		Type:        models.TransactionCommission,
		Status:      models.TransactionCompleted,
		AmountCents: commissionCents,
		Metadata: map[string]string{
			"original_transaction_id": relID,
			"commission_percent":      percentStr,
		},
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin release tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.transactions.CreateTx(ctx, tx, withdrawal); err != nil {
		return nil, fmt.Errorf("create withdrawal transaction: %w", err)
	}
	if err := s.transactions.CreateTx(ctx, tx, commissionRecord); err != nil {
		return nil, fmt.Errorf("create commission transaction: %w", err)
	}
	moved, err := s.projects.MarkReleasedTx(ctx, tx, p.ID, netCents, commissionCents)
	if err != nil {
		return nil, fmt.Errorf("mark released: %w", err)
	}
	if !moved {
		return nil, fmt.Errorf("%w: project left %s during release", ErrInvalidState, models.CustodyPaidInEscrow)
	}
	if err := s.audits.AppendTx(ctx, tx, &models.AuditLogEntry{
		ProjectID:           &p.ID,
		Event:               models.AuditPaymentReleased,
		AmountCents:         netCents,
		OriginalAmountCents: &req.GrossAmountCents,
		CommissionCents:     &commissionCents,
		TransactionID:       &relID,
		UserID:              sess.UserID,
		JobaID:              &req.JobaID,
		UserAgent:           sess.UserAgent,
		Origin:              sess.Origin,
	}); err != nil {
		return nil, fmt.Errorf("append audit: %w", err)
	}
	// Balance crediting is a separate at-least-once step: the job
	// commits with this transaction, the payout worker applies it
	// idempotently keyed by the withdrawal's transaction id.
	if err := s.enqueuePayout(ctx, tx, payout.CreditPayoutArgs{
		TransactionID: relID,
		JobaID:        req.JobaID,
		AmountCents:   netCents,
	}); err != nil {
		return nil, fmt.Errorf("enqueue payout: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit release: %w", err)
	}

	s.logger.Info("payment released",
		"project_id", p.ID, "transaction_id", relID, "net_cents", netCents, "commission_cents", commissionCents)
	return &ReleaseResult{
		TransactionID:   relID,
		NetAmountCents:  netCents,
		CommissionCents: commissionCents,
		Message:         fmt.Sprintf("Pagamento de %s MZN liberado para o Joba via %s", formatMZN(netCents), strings.ToUpper(carrier)),
	}, nil
}

// --- Refund ---

type RefundRequest struct {
	ProjectID   uuid.UUID
	AmountCents int64
	Reason      string
}

type RefundResult struct {
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

// Refund reverses custody back to the Link. Allowed only while custody
// is pending or paid_in_escrow; a released project cannot be refunded.
// The refund leg has no modeled network failure: once the preconditions
// hold it succeeds.
func (s *Service) Refund(ctx context.Context, sess auth.Session, req RefundRequest) (*RefundResult, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidationFailed)
	}

	unlock := s.locks.lock(req.ProjectID)
	defer unlock()

	p, err := s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if p.LinkID != sess.UserID {
		return nil, ErrNotOwner
	}
	if p.CustodyStatus != models.CustodyPending && p.CustodyStatus != models.CustodyPaidInEscrow {
		return nil, fmt.Errorf("%w: refund requires custody %s or %s, project is %s",
			ErrInvalidState, models.CustodyPending, models.CustodyPaidInEscrow, p.CustodyStatus)
	}

	if err := s.gateway.Refund(ctx, gateway.RefundRequest{AmountCents: req.AmountCents}); err != nil {
		return nil, fmt.Errorf("refund: %w", err)
	}

	refID := newRef("ref")
	reason := req.Reason
	record := &models.Transaction{
		ID:          refID,
		ProjectID:   p.ID,
		UserID:      sess.UserID,
		Type:        models.TransactionRefund,
		Status:      models.TransactionCompleted,
		AmountCents: req.AmountCents,
		Reason:      &reason,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin refund tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.transactions.CreateTx(ctx, tx, record); err != nil {
		return nil, fmt.Errorf("create refund transaction: %w", err)
	}
	moved, err := s.projects.MarkRefundedTx(ctx, tx, p.ID, req.Reason)
	if err != nil {
		return nil, fmt.Errorf("mark refunded: %w", err)
	}
	if !moved {
		return nil, fmt.Errorf("%w: project became terminal during refund", ErrInvalidState)
	}
	if err := s.audits.AppendTx(ctx, tx, &models.AuditLogEntry{
		ProjectID:     &p.ID,
		Event:         models.AuditRefundIssued,
		AmountCents:   req.AmountCents,
		TransactionID: &refID,
		UserID:        sess.UserID,
		Reason:        &reason,
		UserAgent:     sess.UserAgent,
		Origin:        sess.Origin,
	}); err != nil {
		return nil, fmt.Errorf("append audit: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit refund: %w", err)
	}

	s.logger.Info("refund issued", "project_id", p.ID, "transaction_id", refID, "amount_cents", req.AmountCents, "reason", req.Reason)
	return &RefundResult{
		TransactionID: refID,
		Message:       fmt.Sprintf("Reembolso de %s MZN processado com sucesso", formatMZN(req.AmountCents)),
	}, nil
}
