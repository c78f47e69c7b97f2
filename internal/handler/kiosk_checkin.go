package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
	"github.com/jmlee-dev/studycafe-backend/internal/settlement"
)

type checkInReq struct {
	Phone   string  `json:"phone"`
	SeatID  uint64  `json:"seat_id"`
	OrderID *uint64 `json:"order_id"` // required for guests
}

// CheckIn handles POST /api/kiosk/check-in.  The occupant is resolved
// by phone; an unknown phone means a walk-in on the guest account.
// Entitlement is derived per seat kind inside one transaction that
// also opens the usage session and flips the seat occupied, so two
// kiosks racing for the same seat serialize on the seat row lock and
// a member racing against themselves serializes on the member row
// lock (locked first, always in that order).
func (h *KioskHandler) CheckIn(c echo.Context) error {
	var req checkInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Phone = strings.TrimSpace(req.Phone)
	if req.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id required"})
	}

	ctx := c.Request().Context()
	now := time.Now()

	// Phone lookup outside the transaction; only resolves identity.
	var memberID uint64
	isGuest := true
	if req.Phone != "" {
		m, err := h.Members.GetByPhone(ctx, settlement.NormalizePhone(req.Phone))
		switch {
		case err == nil:
			memberID = m.ID
			isGuest = false
		case err != sql.ErrNoRows:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}
	if isGuest && req.OrderID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id required for guest check-in"})
	}

	tx, err := h.Members.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Member row lock first, then the seat row.
	var member model.Member
	if isGuest {
		member, err = h.Members.GetOrCreateGuestTx(ctx, tx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "guest account failed"})
		}
	} else {
		member, err = h.Members.GetForUpdateTx(ctx, tx, memberID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		// One open session per non-guest member.
		if _, err := h.Usages.OpenByMemberTx(ctx, tx, member.ID); err == nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": settlement.ErrAlreadyCheckedIn.Error()})
		} else if err != sql.ErrNoRows {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}

	seat, err := h.Seats.GetForUpdateTx(ctx, tx, req.SeatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if seat.Occupied {
		return c.JSON(http.StatusConflict, echo.Map{"error": settlement.ErrSeatUnavailable.Error()})
	}

	var expiry time.Time
	var orderID *uint64
	if !isGuest {
		if seat.Kind == model.SeatFixed {
			order, err := h.Orders.ActivePeriodOrderTx(ctx, tx, member.ID, now)
			if err != nil && err != sql.ErrNoRows {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
			}
			var active *model.Order
			if err == nil {
				active = &order
			}
			expiry, err = settlement.ExpiryForMemberFixed(now, active)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid period ticket"})
			}
		} else {
			expiry, err = settlement.ExpiryForMemberFree(now, member.SavedTimeMinute)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "no remaining ticket time"})
			}
		}
	} else {
		order, err := h.Orders.GetByIDTx(ctx, tx, *req.OrderID)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		switch err := settlement.ValidateGuestOrder(order, member.ID); err {
		case nil:
		case settlement.ErrOrderUsed:
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		default:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		product, err := h.Products.GetByIDTx(ctx, tx, *order.ProductID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		expiry, err = settlement.ExpiryForGuest(now, &product)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "order grants no time"})
		}
		// Stamp the consumed window onto the order so the later
		// check-out can verify the buyer phone against it.
		if err := h.Orders.SetPeriodWindowTx(ctx, tx, order.ID, now, expiry); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		orderID = &order.ID
	}

	usage := model.SeatUsage{
		SeatID:            &seat.ID,
		MemberID:          &member.ID,
		OrderID:           orderID,
		CheckInTime:       now,
		TicketExpiredTime: &expiry,
	}
	if err := h.Usages.CreateTx(ctx, tx, &usage); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	if err := h.Seats.SetOccupiedTx(ctx, tx, seat.ID, true); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update seat failed"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.Board.Invalidate(ctx)

	// Camera tracking is best effort.
	if h.Vision.Enabled() {
		go func(seatID, usageID uint64) {
			nctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.Vision.NotifyCheckIn(nctx, seatID, usageID); err != nil {
				log.Printf("vision: checkin notify failed for seat %d: %v", seatID, err)
			}
		}(seat.ID, usage.ID)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"usage_id":            usage.ID,
		"seat_id":             seat.ID,
		"check_in_time":       usage.CheckInTime,
		"ticket_expired_time": expiry,
	})
}
