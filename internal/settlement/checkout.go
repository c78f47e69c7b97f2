package settlement

import (
	"time"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
)

// Credential is the identity proof supplied with a check-out request.
// Members present their PIN (or force, for staff-assisted clears),
// guests present the phone number entered at purchase time.
type Credential struct {
	Phone string
	PIN   *int
	Force bool
}

// VerifyCredential authorizes a check-out.  For guests the supplied
// phone must match the buyer phone of the order backing the session;
// force never bypasses the guest check.  For members the PIN must
// match unless force is set.
func VerifyCredential(role model.Role, memberPIN *int, orderPhone *string, cred Credential) error {
	if role.IsGuest() {
		if cred.Phone == "" || orderPhone == nil {
			return ErrAuthMismatch
		}
		if NormalizePhone(cred.Phone) != NormalizePhone(*orderPhone) {
			return ErrAuthMismatch
		}
		return nil
	}
	if cred.Force {
		return nil
	}
	if cred.PIN == nil || memberPIN == nil || *cred.PIN != *memberPIN {
		return ErrAuthMismatch
	}
	return nil
}

// VerifyOccupant confirms that an open session re-read under lock is
// still held by the member whose credential was verified.  The seat
// can turn over between the credential check and the transaction (a
// duplicate check-out commits first, someone else checks in), and a
// stale request must never close the new occupant's session or settle
// against the old member's balance.
func VerifyOccupant(sessionMemberID *uint64, verifiedMemberID uint64) error {
	if sessionMemberID == nil || *sessionMemberID != verifiedMemberID {
		return ErrNoActiveSession
	}
	return nil
}

// GrantAttendance decides the daily attendance credit at session
// close: only balance-carrying roles earn it, and at most once per
// member per calendar day.
func GrantAttendance(role model.Role, alreadyAttendedToday bool) bool {
	return role.HasBalances() && !alreadyAttendedToday
}

// UsedMinutes returns the whole minutes elapsed between check-in and
// the check-out instant, never negative.
func UsedMinutes(checkIn, now time.Time) int {
	m := int(now.Sub(checkIn).Minutes())
	if m < 0 {
		return 0
	}
	return m
}

// SettleBalance applies the deduct-used-minutes model to a member's
// minute balance: only member sessions on free seats deduct, and the
// balance floors at zero; overage is absorbed, not billed.  Fixed
// seats draw on the period ticket and guests have no balance at all,
// so both pass through unchanged.
func SettleBalance(role model.Role, seatKind model.SeatKind, savedTimeMinute, usedMinutes int) int {
	if !role.HasBalances() || seatKind == model.SeatFixed {
		return savedTimeMinute
	}
	remaining := savedTimeMinute - usedMinutes
	if remaining < 0 {
		return 0
	}
	return remaining
}
