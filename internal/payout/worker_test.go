package payout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// memCrediter applies each transaction id once, like the payouts table.
type memCrediter struct {
	mu       sync.Mutex
	applied  map[string]int64
	balances map[uuid.UUID]int64
	err      error
}

func newMemCrediter() *memCrediter {
	return &memCrediter{applied: make(map[string]int64), balances: make(map[uuid.UUID]int64)}
}

func (m *memCrediter) ApplyPayout(_ context.Context, transactionID string, jobaID uuid.UUID, amountCents int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.applied[transactionID]; ok {
		return false, nil
	}
	m.applied[transactionID] = amountCents
	m.balances[jobaID] += amountCents
	return true, nil
}

func payoutJob(args CreditPayoutArgs) *river.Job[CreditPayoutArgs] {
	return &river.Job[CreditPayoutArgs]{Args: args}
}

func TestWorkCreditsOnce(t *testing.T) {
	users := newMemCrediter()
	w := NewCreditPayoutWorker(users, nil)

	joba := uuid.New()
	args := CreditPayoutArgs{TransactionID: "rel_abc", JobaID: joba, AmountCents: 14250}

	if err := w.Work(context.Background(), payoutJob(args)); err != nil {
		t.Fatalf("Work: %v", err)
	}
	if got := users.balances[joba]; got != 14250 {
		t.Errorf("balance after payout: got %d, want 14250", got)
	}

	// A redelivery of the same transaction id is a no-op, not an error.
	if err := w.Work(context.Background(), payoutJob(args)); err != nil {
		t.Fatalf("Work (redelivery): %v", err)
	}
	if got := users.balances[joba]; got != 14250 {
		t.Errorf("balance after redelivery: got %d, want 14250 (credited once)", got)
	}
}

func TestWorkReturnsErrorForRetry(t *testing.T) {
	users := newMemCrediter()
	users.err = errors.New("db down")
	w := NewCreditPayoutWorker(users, nil)

	err := w.Work(context.Background(), payoutJob(CreditPayoutArgs{TransactionID: "rel_x", JobaID: uuid.New(), AmountCents: 100}))
	if err == nil {
		t.Fatal("expected error so the queue retries the job")
	}

	// Once the store recovers, the retry succeeds and credits once.
	users.err = nil
	if err := w.Work(context.Background(), payoutJob(CreditPayoutArgs{TransactionID: "rel_x", JobaID: uuid.New(), AmountCents: 100})); err != nil {
		t.Fatalf("Work after recovery: %v", err)
	}
}
