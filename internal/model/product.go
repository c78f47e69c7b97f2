package model

import "time"

// ProductKind distinguishes the two ticket types sold at the counter.
type ProductKind string

const (
	ProductTime   ProductKind = "time"   // prepaid hours for free seats
	ProductPeriod ProductKind = "period" // calendar-day pass for fixed seats
)

// Product is a row of the read-only ticket catalog.  Value is hours
// for time tickets and days for period tickets; the conversion to
// minutes or dates happens exactly once, through the helpers below.
type Product struct {
	ID      uint64      // products.product_id
	Name    string      // products.name
	Kind    ProductKind // products.kind
	Price   int         // products.price
	Value   int         // products.value
	Visible bool        // products.is_visible
}

// DurationMinutes converts a time ticket's hour value to the minutes
// credited to the member ledger.  Zero for period tickets.
func (p Product) DurationMinutes() int {
	if p.Kind != ProductTime {
		return 0
	}
	return p.Value * 60
}

// PeriodWindow returns the validity window granted by a period ticket
// purchased at the given instant.  The zero window is returned for
// time tickets.
func (p Product) PeriodWindow(from time.Time) (start, end time.Time) {
	if p.Kind != ProductPeriod {
		return time.Time{}, time.Time{}
	}
	return from, from.AddDate(0, 0, p.Value)
}
