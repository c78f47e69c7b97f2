package settlement

import (
	"strings"
	"time"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
)

// NormalizePhone strips dashes and spaces so that numbers entered on
// the kiosk pad compare equal to numbers stored with separators.
func NormalizePhone(s string) string {
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "")
}

// ExpiryForMemberFree derives ticket_expired_time for a member
// checking into a free seat: the entire remaining minute balance is
// at risk for the session.  Nothing is pre-deducted; the deduction
// happens at check-out.  An empty balance is not an entitlement.
func ExpiryForMemberFree(now time.Time, savedTimeMinute int) (time.Time, error) {
	if savedTimeMinute <= 0 {
		return time.Time{}, ErrNoEntitlement
	}
	return now.Add(time.Duration(savedTimeMinute) * time.Minute), nil
}

// ExpiryForMemberFixed derives ticket_expired_time for a member
// checking into a fixed seat from their active period order.  The
// order's period end date is authoritative; a missing or expired
// order means no entitlement.
func ExpiryForMemberFixed(now time.Time, periodOrder *model.Order) (time.Time, error) {
	if periodOrder == nil || periodOrder.PeriodEndDate == nil {
		return time.Time{}, ErrNoEntitlement
	}
	if !periodOrder.PeriodEndDate.After(now) {
		return time.Time{}, ErrNoEntitlement
	}
	return *periodOrder.PeriodEndDate, nil
}

// ValidateGuestOrder checks that an order presented at guest check-in
// can back a session: it must belong to the shared guest account (a
// registered member's order already credited their own balance at
// purchase) and must not have been consumed by an earlier stint, which
// a stamped period window marks.
func ValidateGuestOrder(order model.Order, guestID uint64) error {
	if order.MemberID == nil || *order.MemberID != guestID {
		return ErrNoEntitlement
	}
	if order.ProductID == nil {
		return ErrNoEntitlement
	}
	if order.PeriodStartDate != nil {
		return ErrOrderUsed
	}
	return nil
}

// ExpiryForGuest derives ticket_expired_time for a walk-in from the
// purchased time ticket's duration.  Period tickets grant no guest
// entitlement.  The caller must also stamp the same window onto the
// backing order so the check-out can verify it.
func ExpiryForGuest(now time.Time, product *model.Product) (time.Time, error) {
	if product == nil {
		return time.Time{}, ErrNoEntitlement
	}
	minutes := product.DurationMinutes()
	if minutes <= 0 {
		return time.Time{}, ErrNoEntitlement
	}
	return now.Add(time.Duration(minutes) * time.Minute), nil
}
