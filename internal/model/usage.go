package model

import "time"

// SeatUsage is one check-in-to-check-out occupancy record.  A session
// is open while CheckOutTime is nil; at most one open session exists
// per seat, and per non-guest member.  TicketExpiredTime is computed
// at check-in and is the contractual upper bound on the stay; it is
// informational for settlement, not a hard kick-out.
type SeatUsage struct {
	ID                uint64     // seat_usage.usage_id
	SeatID            *uint64    // seat_usage.seat_id (nullable)
	MemberID          *uint64    // seat_usage.member_id (nullable)
	OrderID           *uint64    // seat_usage.order_id (nullable)
	CheckInTime       time.Time  // seat_usage.check_in_time
	CheckOutTime      *time.Time // seat_usage.check_out_time (nullable)
	TicketExpiredTime *time.Time // seat_usage.ticket_expired_time (nullable)
	IsAttended        bool       // seat_usage.is_attended
}
