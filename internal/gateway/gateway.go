// Package gateway models the mobile-money network the platform collects
// from and disburses to. The real carriers are external; the interface
// here is what the escrow ledger depends on, and the Simulator stands in
// for the network with configurable latency and failure rates.
package gateway

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrUnavailable marks a transient network failure. Callers may retry
// the same request; no money moved.
var ErrUnavailable = errors.New("mobile money network unavailable")

// CollectRequest pulls funds from a payer's mobile wallet into custody.
type CollectRequest struct {
	Carrier       string
	ContactNumber string
	AmountCents   int64
}

// DisburseRequest pushes funds from custody to a payee's mobile wallet.
type DisburseRequest struct {
	Carrier       string
	ContactNumber string
	AmountCents   int64
}

// RefundRequest returns custodied funds to the original payer.
type RefundRequest struct {
	AmountCents int64
}

type Gateway interface {
	Collect(ctx context.Context, req CollectRequest) error
	Disburse(ctx context.Context, req DisburseRequest) error
	Refund(ctx context.Context, req RefundRequest) error
}

// Failure rates observed against the real carriers; deposits fail more
// often than releases.
const (
	DefaultCollectFailureRate  = 0.10
	DefaultDisburseFailureRate = 0.05
)

// Simulator fakes carrier calls with a fixed latency and per-leg failure
// rates. The random source is owned by the Simulator so tests construct
// it with a known seed, or force outcomes with rates of 0 or 1.
// Refunds never fail once issued; there is no modeled carrier error on
// that leg.
type Simulator struct {
	Latency             time.Duration
	CollectFailureRate  float64
	DisburseFailureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator returns a Simulator with the default failure rates and
// the given latency and seed.
func NewSimulator(latency time.Duration, seed int64) *Simulator {
	return &Simulator{
		Latency:             latency,
		CollectFailureRate:  DefaultCollectFailureRate,
		DisburseFailureRate: DefaultDisburseFailureRate,
		rng:                 rand.New(rand.NewSource(seed)),
	}
}

var _ Gateway = (*Simulator)(nil)

func (s *Simulator) Collect(ctx context.Context, req CollectRequest) error {
	if err := s.sleep(ctx); err != nil {
		return err
	}
	if s.roll() < s.CollectFailureRate {
		return ErrUnavailable
	}
	return nil
}

func (s *Simulator) Disburse(ctx context.Context, req DisburseRequest) error {
	if err := s.sleep(ctx); err != nil {
		return err
	}
	if s.roll() < s.DisburseFailureRate {
		return ErrUnavailable
	}
	return nil
}

func (s *Simulator) Refund(ctx context.Context, req RefundRequest) error {
	return s.sleep(ctx)
}

func (s *Simulator) sleep(ctx context.Context) error {
	if s.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Simulator) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
