package settlement

import "github.com/jmlee-dev/studycafe-backend/internal/model"

// Surface names the entry point of a purchase.  The kiosk and the
// web shop have historically used different mileage earn rates and
// the difference is deliberate policy until product says otherwise,
// so the rate is selected per surface instead of being unified.
type Surface string

const (
	SurfaceKiosk Surface = "kiosk"
	SurfaceWeb   Surface = "web"
)

// EarnPolicy carries the per-surface mileage earn rates.  Both values
// come from configuration.
type EarnPolicy struct {
	KioskDivisor int // kiosk: earned = amount / KioskDivisor
	WebPercent   int // web:   earned = amount * WebPercent / 100
}

// Earn computes the mileage earned on a payment of the given final
// amount through the given surface.  Results are truncated toward
// zero; a non-positive divisor disables kiosk earning.
func (p EarnPolicy) Earn(surface Surface, amount int) int {
	if amount <= 0 {
		return 0
	}
	switch surface {
	case SurfaceKiosk:
		if p.KioskDivisor <= 0 {
			return 0
		}
		return amount / p.KioskDivisor
	case SurfaceWeb:
		if p.WebPercent <= 0 {
			return 0
		}
		return amount * p.WebPercent / 100
	}
	return 0
}

// PurchaseQuote is the fully validated outcome of a purchase request.
// All ledger mutations derived from it must be applied in one
// transaction together with the order insert.
type PurchaseQuote struct {
	FinalAmount   int // price minus applied mileage
	UseMileage    int // mileage debited from the buyer
	EarnMileage   int // mileage credited to the buyer
	CreditMinutes int // minutes credited for time tickets
}

// QuotePurchase validates a purchase of product by a buyer with the
// given role and mileage balance and returns the resulting ledger
// deltas.  Guests may not spend mileage and never accrue balances;
// period tickets grant no minute credit (their entitlement lives on
// the order's period window).
func QuotePurchase(role model.Role, product model.Product, useMileage, totalMileage int, surface Surface, pol EarnPolicy) (PurchaseQuote, error) {
	if useMileage < 0 {
		useMileage = 0
	}
	if useMileage > 0 {
		if role.IsGuest() {
			return PurchaseQuote{}, ErrGuestMileage
		}
		if useMileage > totalMileage {
			return PurchaseQuote{}, ErrInsufficientMileage
		}
		if useMileage > product.Price {
			return PurchaseQuote{}, ErrMileageExceedsPrice
		}
	}
	q := PurchaseQuote{
		FinalAmount: product.Price - useMileage,
		UseMileage:  useMileage,
	}
	if role.HasBalances() {
		q.EarnMileage = pol.Earn(surface, q.FinalAmount)
		q.CreditMinutes = product.DurationMinutes()
	}
	return q, nil
}
