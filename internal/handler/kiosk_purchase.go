package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jmlee-dev/studycafe-backend/internal/settlement"
)

type kioskPurchaseReq struct {
	ProductID  uint64 `json:"product_id"`
	MemberID   uint64 `json:"member_id"` // zero means walk-in guest
	Phone      string `json:"phone"`
	UseMileage int    `json:"use_mileage"`
}

// Purchase handles POST /api/kiosk/purchase.  Members buy against
// their account; walk-ins buy as the shared guest account and leave a
// phone number on the order, which later authorizes their check-out.
// Mileage may partially pay the price (members only); earning on the
// kiosk follows the kiosk divisor rate.
func (h *KioskHandler) Purchase(c echo.Context) error {
	var req kioskPurchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id required"})
	}
	req.Phone = strings.TrimSpace(req.Phone)
	if req.MemberID == 0 && req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest purchase requires phone"})
	}

	deps := purchaseDeps{Members: h.Members, Products: h.Products, Orders: h.Orders, Mileage: h.Mileage}
	res, err := executePurchase(c.Request().Context(), deps, settlement.SurfaceKiosk, h.earnPolicy(), req.MemberID, req.ProductID, req.Phone, req.UseMileage)
	if err != nil {
		switch err {
		case errProductNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		case errMemberNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		case settlement.ErrGuestMileage, settlement.ErrInsufficientMileage, settlement.ErrMileageExceedsPrice:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "purchase failed"})
	}

	resp := echo.Map{
		"order_id":     res.OrderID,
		"product_name": res.Product.Name,
		"price":        res.Product.Price,
		"used_mileage": res.Quote.UseMileage,
		"final_price":  res.Quote.FinalAmount,
	}
	if res.Role.HasBalances() {
		resp["saved_time_minute"] = res.SavedTimeMinute
		resp["total_mileage"] = res.TotalMileage
	}
	return c.JSON(http.StatusCreated, resp)
}
