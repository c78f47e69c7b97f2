package model

import "time"

// Order records one purchase transaction.  For period tickets the
// PeriodEndDate column is the authoritative seat entitlement expiry,
// independent of the member's minute balance.  Guest orders carry the
// buyer phone used to authorize the later check-out.
type Order struct {
	ID              uint64     // orders.order_id
	MemberID        *uint64    // orders.member_id (nullable)
	ProductID       *uint64    // orders.product_id (nullable)
	BuyerPhone      *string    // orders.buyer_phone (nullable)
	PaymentAmount   int        // orders.payment_amount
	PeriodStartDate *time.Time // orders.period_start_date (nullable)
	PeriodEndDate   *time.Time // orders.period_end_date (nullable)
	CreatedAt       time.Time  // orders.created_at
}
