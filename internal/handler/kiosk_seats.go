package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// seatView is the floor-map projection rendered by the kiosk.  For
// occupied seats it exposes who sits there and how long their ticket
// still runs; occupant fields stay null for vacant seats.
type seatView struct {
	SeatID            uint64     `json:"seat_id"`
	Kind              string     `json:"kind"`
	Occupied          bool       `json:"occupied"`
	NearWindow        bool       `json:"near_window"`
	CornerSeat        bool       `json:"corner_seat"`
	AisleSeat         bool       `json:"aisle_seat"`
	Isolated          bool       `json:"isolated"`
	NearBeverageTable bool       `json:"near_beverage_table"`
	IsCenter          bool       `json:"is_center"`
	UserName          *string    `json:"user_name"`
	Role              *string    `json:"role"`
	RemainingMinutes  *int       `json:"remaining_minutes"`
	TicketExpiredTime *time.Time `json:"ticket_expired_time"`
}

// ListSeats handles GET /api/kiosk/seats.  The projection is served
// from the Redis board cache when possible; on a miss it is rebuilt
// from the database and cached.  Check-in and check-out invalidate
// the cache, so staleness is bounded by the cache TTL.
func (h *KioskHandler) ListSeats(c echo.Context) error {
	ctx := c.Request().Context()

	if payload, ok := h.Board.Get(ctx); ok {
		return c.JSONBlob(http.StatusOK, payload)
	}

	seats, err := h.Seats.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	now := time.Now()
	out := make([]seatView, 0, len(seats))
	for _, s := range seats {
		v := seatView{
			SeatID:            s.ID,
			Kind:              string(s.Kind),
			Occupied:          s.Occupied,
			NearWindow:        s.NearWindow,
			CornerSeat:        s.CornerSeat,
			AisleSeat:         s.AisleSeat,
			Isolated:          s.Isolated,
			NearBeverageTable: s.NearBeverageTable,
			IsCenter:          s.IsCenter,
		}
		if s.Occupied {
			usage, err := h.Usages.OpenBySeat(ctx, s.ID)
			if err == nil {
				if usage.MemberID != nil {
					if m, err := h.Members.GetByID(ctx, *usage.MemberID); err == nil {
						name := m.Name
						role := string(m.Role)
						v.UserName = &name
						v.Role = &role
					}
				}
				if usage.TicketExpiredTime != nil {
					exp := *usage.TicketExpiredTime
					v.TicketExpiredTime = &exp
					remain := int(exp.Sub(now).Minutes())
					if remain < 0 {
						remain = 0
					}
					v.RemainingMinutes = &remain
				}
			} else if err != sql.ErrNoRows {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
			}
		}
		out = append(out, v)
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode failed"})
	}
	h.Board.Set(ctx, payload)
	return c.JSONBlob(http.StatusOK, payload)
}
