package model

// SeatKind distinguishes the two seat entitlement models: fixed seats
// require an unexpired period ticket, free seats draw down the
// member's prepaid minute balance.
type SeatKind string

const (
	SeatFixed SeatKind = "fixed"
	SeatFree  SeatKind = "free"
)

// Seat describes a physical seat on the floor.  Occupied mirrors the
// open-session invariant: it is true iff exactly one seat_usage row
// for this seat has a null check_out_time.  The attribute flags feed
// the seat map shown on the kiosk and the web dashboard.
type Seat struct {
	ID                uint64   // seats.seat_id
	Kind              SeatKind // seats.kind
	Occupied          bool     // seats.is_occupied
	NearWindow        bool     // seats.near_window
	CornerSeat        bool     // seats.corner_seat
	AisleSeat         bool     // seats.aisle_seat
	Isolated          bool     // seats.isolated
	NearBeverageTable bool     // seats.near_beverage_table
	IsCenter          bool     // seats.is_center
}
