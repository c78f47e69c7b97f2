package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
)

type productView struct {
	ProductID uint64 `json:"product_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Price     int    `json:"price"`
	Value     int    `json:"value"`
}

// ListProducts handles GET /api/kiosk/products.  The kiosk sells time
// tickets only; period passes are sold at the counter or on the web.
func (h *KioskHandler) ListProducts(c echo.Context) error {
	products, err := h.Products.ListVisible(c.Request().Context(), model.ProductTime)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, productView{
			ProductID: p.ID,
			Name:      p.Name,
			Kind:      string(p.Kind),
			Price:     p.Price,
			Value:     p.Value,
		})
	}
	return c.JSON(http.StatusOK, out)
}
