package escrow

import "errors"

// Failure taxonomy for ledger operations.
var (
	// ErrPaymentFailed is a transient mobile-money network failure.
	// Safe to retry; no records were created and no state changed.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrInvalidState means the project's custody status does not allow
	// the operation. Retrying the same call will not help; it indicates
	// a workflow or ordering bug in the caller.
	ErrInvalidState = errors.New("invalid custody state")

	// ErrAmountMismatch means the requested release amount does not
	// equal the amount held in escrow. Always fatal, never
	// auto-corrected, and logged at high severity.
	ErrAmountMismatch = errors.New("amount mismatch")

	// ErrValidationFailed means caller-supplied data failed a sanity
	// check. Rejected before any side effect; the message tells the
	// caller what to fix.
	ErrValidationFailed = errors.New("validation failed")

	// ErrNotOwner means the caller holds the Link role but does not own
	// the project. Only the Link who opened a project may move its
	// funds.
	ErrNotOwner = errors.New("caller does not own this project")
)
