package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jmlee-dev/studycafe-backend/internal/settlement"
)

type memberLoginReq struct {
	Phone string `json:"phone"`
	PIN   *int   `json:"pin"`
}

// MemberLogin handles POST /api/kiosk/auth/member-login.  A member
// identifies at the kiosk with phone number and 4-digit PIN; the
// response carries the balances the kiosk shows on its home screen
// plus whether an unexpired period ticket exists (fixed seats light
// up only then).  The guest account can never log in here: the phone
// lookup excludes the guest role.
func (h *KioskHandler) MemberLogin(c echo.Context) error {
	var req memberLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Phone == "" || req.PIN == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone and pin required"})
	}

	ctx := c.Request().Context()
	m, err := h.Members.GetByPhone(ctx, settlement.NormalizePhone(req.Phone))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if m.PinCode == nil || *m.PinCode != *req.PIN {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "pin mismatch"})
	}

	hasPeriod, err := h.Orders.HasActivePeriodOrder(ctx, m.ID, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"member_id":         m.ID,
		"name":              m.Name,
		"phone":             m.Phone,
		"saved_time_minute": m.SavedTimeMinute,
		"total_mileage":     m.TotalMileage,
		"has_period_pass":   hasPeriod,
	})
}
