// Package commission computes the platform fee deducted from a gross
// amount at release time.
package commission

import (
	"errors"
	"fmt"
)

// DefaultPercent is the platform commission applied when the caller does
// not override it.
const DefaultPercent = 5

// ErrInvalidPercent is returned for percentages outside 0-100.
var ErrInvalidPercent = errors.New("commission percent must be between 0 and 100")

// Calculate splits gross (in minor units) into commission and net.
// The commission is rounded half-up to the minor unit and the net is the
// remainder, so commission + net always equals gross exactly.
func Calculate(gross int64, percent int) (commission, net int64, err error) {
	if gross < 0 {
		return 0, 0, fmt.Errorf("gross amount must not be negative, got %d", gross)
	}
	if percent < 0 || percent > 100 {
		return 0, 0, fmt.Errorf("%w, got %d", ErrInvalidPercent, percent)
	}
	commission = (gross*int64(percent) + 50) / 100
	net = gross - commission
	return commission, net, nil
}
