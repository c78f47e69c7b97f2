// Package settlement implements the seat occupancy and ticket-time
// settlement engine: entitlement checks and expiry derivation at
// check-in, time/mileage reconciliation at check-out, purchase quotes
// and todo goal evaluation.  The package is pure computation; all
// reads and writes stay in the repository layer so the rules here can
// be tested without a database.
package settlement

import "errors"

// Sentinel errors raised by the engine.  Handlers translate these
// into HTTP statuses: not-found 404, conflicts 409, credential
// mismatches 401, entitlement and mileage failures 400.
var (
	// ErrSeatUnavailable signals a check-in against an occupied seat.
	ErrSeatUnavailable = errors.New("seat is already occupied")

	// ErrAlreadyCheckedIn signals a second check-in for a member that
	// already holds an open session somewhere.
	ErrAlreadyCheckedIn = errors.New("member already has an open session")

	// ErrNoActiveSession signals a check-out against a seat with no
	// open usage session.
	ErrNoActiveSession = errors.New("no open session for seat")

	// ErrAuthMismatch signals a failed check-out credential check
	// (wrong PIN for members, wrong phone for guests).
	ErrAuthMismatch = errors.New("credential mismatch")

	// ErrNoEntitlement signals a check-in without a usable ticket:
	// empty minute balance on a free seat, no unexpired period order
	// on a fixed seat, or a guest without a valid order reference.
	ErrNoEntitlement = errors.New("no valid entitlement")

	// ErrOrderUsed signals a guest order that already backed a
	// session; one walk-in purchase funds exactly one stint.
	ErrOrderUsed = errors.New("order already used")

	// ErrGuestMileage signals a guest trying to spend mileage.
	ErrGuestMileage = errors.New("guests cannot use mileage")

	// ErrInsufficientMileage signals spending more mileage than held.
	ErrInsufficientMileage = errors.New("insufficient mileage balance")

	// ErrMileageExceedsPrice signals spending more mileage than the
	// product costs.
	ErrMileageExceedsPrice = errors.New("mileage exceeds product price")
)
