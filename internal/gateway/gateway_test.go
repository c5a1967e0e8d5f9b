package gateway

import (
	"context"
	"errors"
	"testing"
)

func TestSimulatorForcedOutcomes(t *testing.T) {
	ctx := context.Background()
	s := NewSimulator(0, 1)

	s.CollectFailureRate = 0
	s.DisburseFailureRate = 0
	for i := 0; i < 50; i++ {
		if err := s.Collect(ctx, CollectRequest{Carrier: "vodacom", ContactNumber: "841234567", AmountCents: 1000}); err != nil {
			t.Fatalf("rate 0 collect failed: %v", err)
		}
		if err := s.Disburse(ctx, DisburseRequest{Carrier: "movitel", ContactNumber: "861234567", AmountCents: 1000}); err != nil {
			t.Fatalf("rate 0 disburse failed: %v", err)
		}
	}

	s.CollectFailureRate = 1
	s.DisburseFailureRate = 1
	for i := 0; i < 50; i++ {
		if err := s.Collect(ctx, CollectRequest{}); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("rate 1 collect: got %v, want ErrUnavailable", err)
		}
		if err := s.Disburse(ctx, DisburseRequest{}); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("rate 1 disburse: got %v, want ErrUnavailable", err)
		}
	}
}

// Refunds have no modeled failure: they always succeed.
func TestSimulatorRefundNeverFails(t *testing.T) {
	s := NewSimulator(0, 1)
	s.CollectFailureRate = 1
	s.DisburseFailureRate = 1
	for i := 0; i < 50; i++ {
		if err := s.Refund(context.Background(), RefundRequest{AmountCents: 8500}); err != nil {
			t.Fatalf("refund failed: %v", err)
		}
	}
}

func TestSimulatorDeterministicSeed(t *testing.T) {
	ctx := context.Background()
	run := func() []bool {
		s := NewSimulator(0, 42)
		s.CollectFailureRate = 0.5
		out := make([]bool, 20)
		for i := range out {
			out[i] = s.Collect(ctx, CollectRequest{}) == nil
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at call %d", i)
		}
	}
}
