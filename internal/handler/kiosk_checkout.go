package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
	"github.com/jmlee-dev/studycafe-backend/internal/queue"
	queue_publisher "github.com/jmlee-dev/studycafe-backend/internal/service"
	"github.com/jmlee-dev/studycafe-backend/internal/settlement"
	"github.com/jmlee-dev/studycafe-backend/internal/vision"
)

type checkOutReq struct {
	SeatID uint64 `json:"seat_id"`
	Phone  string `json:"phone"`
	PIN    *int   `json:"pin"`
	Force  bool   `json:"force"`
}

// CheckOut handles POST /api/kiosk/check-out.  The flow is: verify
// the occupant's credential, run the lost-item camera gate (skipped
// on force, degraded to clean on camera failure), then settle the
// session in one transaction: close the usage row, deduct used
// minutes from free-seat member balances, award the daily attendance
// credit at most once, evaluate every open goal of the member and pay
// achieved ones, and free the seat.  Force skips the member PIN but
// never the guest phone check.
func (h *KioskHandler) CheckOut(c echo.Context) error {
	var req checkOutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id required"})
	}

	ctx := c.Request().Context()

	// Pre-checks without locks: identify the occupant and fail fast on
	// bad credentials before bothering the camera.  Everything is
	// re-verified inside the transaction.
	usage, err := h.Usages.OpenBySeat(ctx, req.SeatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": settlement.ErrNoActiveSession.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if usage.MemberID == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "occupant not found"})
	}
	member, err := h.Members.GetByID(ctx, *usage.MemberID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "occupant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	cred := settlement.Credential{Phone: req.Phone, PIN: req.PIN, Force: req.Force}
	var buyerPhone *string
	if member.Role.IsGuest() {
		if usage.OrderID == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest session has no order"})
		}
		order, err := h.Orders.GetByID(ctx, *usage.OrderID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest order not found"})
		}
		buyerPhone = order.BuyerPhone
	}
	if err := settlement.VerifyCredential(member.Role, member.PinCode, buyerPhone, cred); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}

	// Lost-item gate.  A detection blocks the check-out so the member
	// can fetch their belongings; camera trouble never does.
	capture := vision.CaptureResult{Message: "skipped"}
	if !req.Force && h.Vision.Enabled() {
		vctx, cancel := context.WithTimeout(ctx, 8*time.Second)
		capture = h.Vision.Capture(vctx, req.SeatID, usage.ID)
		cancel()
		if capture.Detected {
			return c.JSON(http.StatusConflict, echo.Map{
				"code":      "DETECTED",
				"message":   "belongings detected on seat",
				"items":     capture.Items,
				"image_url": capture.ImagePath,
			})
		}
	}

	now := time.Now()
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

	// Member row lock first when balances are at stake, then the seat
	// and its open session.
	if member.Role.HasBalances() {
		member, err = h.Members.GetForUpdateTx(ctx, tx, member.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}
	seat, err := h.Seats.GetForUpdateTx(ctx, tx, req.SeatID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	usage, err = h.Usages.OpenBySeatForUpdateTx(ctx, tx, req.SeatID)
	if err != nil {
		if err == sql.ErrNoRows {
			// Lost the race against another kiosk.
			return c.JSON(http.StatusNotFound, echo.Map{"error": settlement.ErrNoActiveSession.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// The seat may have turned over during the vision gate: the
	// credential was verified against the pre-gate occupant, so the
	// locked session must still belong to that member.
	if err := settlement.VerifyOccupant(usage.MemberID, member.ID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}

	usedMinutes := settlement.UsedMinutes(usage.CheckInTime, now)

	attended := false
	alreadyAttended := false
	if member.Role.HasBalances() {
		alreadyAttended, err = h.Usages.HasAttendanceOnDayTx(ctx, tx, member.ID, usage.CheckInTime)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		attended = settlement.GrantAttendance(member.Role, alreadyAttended)

		newBalance := settlement.SettleBalance(member.Role, seat.Kind, member.SavedTimeMinute, usedMinutes)
		if newBalance != member.SavedTimeMinute {
			if err := h.Members.SetSavedTimeTx(ctx, tx, member.ID, newBalance); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
			}
		}
		member.SavedTimeMinute = newBalance
	}

	if err := h.Usages.CloseTx(ctx, tx, usage.ID, now, attended); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "close session failed"})
	}
	if err := h.Seats.SetOccupiedTx(ctx, tx, seat.ID, false); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update seat failed"})
	}

	// Every open goal of the member is evaluated against the ledger
	// including the session just closed.
	todoResults := make([]settlement.TodoResult, 0)
	achievedIDs := make([]uint64, 0)
	if member.Role.HasBalances() {
		open, err := h.Todos.OpenByMemberTx(ctx, tx, member.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		for _, o := range open {
			var current int
			switch o.Todo.Kind {
			case model.TodoTime:
				current, err = h.Usages.SumClosedMinutesSinceTx(ctx, tx, member.ID, o.UserTodo.StartedAt)
			case model.TodoAttendance:
				current, err = h.Usages.CountAttendedDaysSinceTx(ctx, tx, member.ID, o.UserTodo.StartedAt)
			default:
				continue
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
			}
			res := settlement.EvaluateTodo(o.UserTodo.ID, o.Todo, current)
			if res.AchievedNow {
				if err := h.Todos.MarkAchievedTx(ctx, tx, o.UserTodo.ID, now); err != nil {
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
				}
				if res.RewardMileage > 0 {
					if err := h.Members.AddMileageTx(ctx, tx, member.ID, res.RewardMileage); err != nil {
						return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
					}
					if err := h.Mileage.AppendTx(ctx, tx, member.ID, res.RewardMileage, model.MileagePrize); err != nil {
						return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
					}
				}
				achievedIDs = append(achievedIDs, o.UserTodo.ID)
			}
			todoResults = append(todoResults, res)
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.Board.Invalidate(ctx)

	remaining := 0
	if member.Role.HasBalances() {
		remaining = member.SavedTimeMinute
	}

	event := queue.CheckoutCompletedEvent{
		UsageID:          usage.ID,
		SeatID:           seat.ID,
		SeatName:         string(seat.Kind),
		MemberID:         member.ID,
		MemberRole:       string(member.Role),
		UsedMinutes:      usedMinutes,
		RemainingMinutes: remaining,
		LostItemDetected: capture.Detected,
		LostItems:        capture.Items,
		AchievedTodoIDs:  achievedIDs,
		CheckedOutAt:     now.UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := queue_publisher.PublishCheckoutCompleted(pctx, event); err != nil {
			log.Printf("checkout event publish failed for usage %d: %v", event.UsageID, err)
		}
	}()

	return c.JSON(http.StatusOK, echo.Map{
		"usage_id":               usage.ID,
		"seat_id":                seat.ID,
		"check_out_time":         now,
		"time_used_minutes":      usedMinutes,
		"remaining_time_minutes": remaining,
		"is_attended":            attended,
		"already_attended":       alreadyAttended,
		"todo_results":           todoResults,
	})
}
