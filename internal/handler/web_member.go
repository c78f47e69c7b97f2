package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jmlee-dev/studycafe-backend/internal/config"
	"github.com/jmlee-dev/studycafe-backend/internal/model"
	"github.com/jmlee-dev/studycafe-backend/internal/repository"
	"github.com/jmlee-dev/studycafe-backend/internal/settlement"
)

// WebHandler serves the authenticated member dashboard: profile and
// balances, the web ticket shop (which earns at the web rate, not the
// kiosk rate), the mileage ledger and goal participation.
type WebHandler struct {
	Cfg      config.Config
	Members  *repository.MemberRepo
	Products *repository.ProductRepo
	Orders   *repository.OrderRepo
	Mileage  *repository.MileageRepo
	Todos    *repository.TodoRepo
}

func NewWebHandler(cfg config.Config, m *repository.MemberRepo, p *repository.ProductRepo, o *repository.OrderRepo, ml *repository.MileageRepo, td *repository.TodoRepo) *WebHandler {
	if m == nil || p == nil || o == nil || ml == nil || td == nil {
		panic("nil repository passed to NewWebHandler")
	}
	return &WebHandler{Cfg: cfg, Members: m, Products: p, Orders: o, Mileage: ml, Todos: td}
}

// Me handles GET /api/web/me: profile, balances and period pass state.
func (h *WebHandler) Me(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()

	m, err := h.Members.GetByID(ctx, memberID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	hasPeriod, err := h.Orders.HasActivePeriodOrder(ctx, m.ID, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	loginID := ""
	if m.LoginID != nil {
		loginID = *m.LoginID
	}
	email := ""
	if m.Email != nil {
		email = *m.Email
	}
	return c.JSON(http.StatusOK, echo.Map{
		"member_id":         m.ID,
		"login_id":          loginID,
		"name":              m.Name,
		"phone":             m.Phone,
		"email":             email,
		"role":              string(m.Role),
		"saved_time_minute": m.SavedTimeMinute,
		"total_mileage":     m.TotalMileage,
		"has_period_pass":   hasPeriod,
	})
}

// ListProducts handles GET /api/web/products.  Unlike the kiosk, the
// web shop sells both time and period tickets.
func (h *WebHandler) ListProducts(c echo.Context) error {
	products, err := h.Products.ListVisible(c.Request().Context())
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

type webPurchaseReq struct {
	ProductID  uint64 `json:"product_id"`
	UseMileage int    `json:"use_mileage"`
}

// Purchase handles POST /api/web/purchase.  The buyer is the
// authenticated member; the earn rate is the web percentage, kept
// deliberately separate from the kiosk divisor.
func (h *WebHandler) Purchase(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req webPurchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id required"})
	}

	pol := settlement.EarnPolicy{KioskDivisor: h.Cfg.KioskEarnDiv, WebPercent: h.Cfg.WebEarnPct}
	deps := purchaseDeps{Members: h.Members, Products: h.Products, Orders: h.Orders, Mileage: h.Mileage}
	res, err := executePurchase(c.Request().Context(), deps, settlement.SurfaceWeb, pol, memberID, req.ProductID, "", req.UseMileage)
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

	return c.JSON(http.StatusCreated, echo.Map{
		"order_id":          res.OrderID,
		"product_name":      res.Product.Name,
		"price":             res.Product.Price,
		"used_mileage":      res.Quote.UseMileage,
		"final_price":       res.Quote.FinalAmount,
		"earned_mileage":    res.Quote.EarnMileage,
		"saved_time_minute": res.SavedTimeMinute,
		"total_mileage":     res.TotalMileage,
	})
}

// MileageHistory handles GET /api/web/mileage: the full ledger plus
// its signed sum, which always equals the denormalized balance.
func (h *WebHandler) MileageHistory(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()

	entries, err := h.Mileage.ListByMember(ctx, memberID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	sum, err := h.Mileage.SumSignedByMember(ctx, memberID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	type entryView struct {
		HistoryID uint64    `json:"history_id"`
		Amount    int       `json:"amount"`
		Kind      string    `json:"kind"`
		Signed    int       `json:"signed"`
		CreatedAt time.Time `json:"created_at"`
	}
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryView{
			HistoryID: e.ID,
			Amount:    e.Amount,
			Kind:      string(e.Kind),
			Signed:    e.Kind.Signed(e.Amount),
			CreatedAt: e.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"balance": sum, "history": out})
}

// ListTodos handles GET /api/web/todos: the goals open for joining.
func (h *WebHandler) ListTodos(c echo.Context) error {
	todos, err := h.Todos.ListVisible(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	type todoView struct {
		TodoID         uint64 `json:"todo_id"`
		Kind           string `json:"kind"`
		Title          string `json:"title"`
		Content        string `json:"content,omitempty"`
		TargetValue    int    `json:"target_value"`
		BetMileage     int    `json:"bet_mileage"`
		PaybackPercent int    `json:"payback_percent"`
	}
	out := make([]todoView, 0, len(todos))
	for _, t := range todos {
		v := todoView{
			TodoID:         t.ID,
			Kind:           string(t.Kind),
			Title:          t.Title,
			TargetValue:    t.TargetValue,
			BetMileage:     t.BetMileage,
			PaybackPercent: t.PaybackPercent,
		}
		if t.Content != nil {
			v.Content = *t.Content
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, out)
}

// JoinTodo handles POST /api/web/todos/:id/join.  Joining stakes the
// goal's bet mileage: the debit, its ledger entry and the instance
// insert commit together.
func (h *WebHandler) JoinTodo(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	todoID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid todo id"})
	}

	ctx := c.Request().Context()
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

	member, err := h.Members.GetForUpdateTx(ctx, tx, memberID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !member.Role.HasBalances() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	todo, err := h.Todos.GetByIDTx(ctx, tx, todoID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "todo not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !todo.Visible {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "todo not found"})
	}

	open, err := h.Todos.HasOpenInstanceTx(ctx, tx, member.ID, todo.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if open {
		return c.JSON(http.StatusConflict, echo.Map{"error": "already joined"})
	}

	if todo.BetMileage > member.TotalMileage {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": settlement.ErrInsufficientMileage.Error()})
	}
	if todo.BetMileage > 0 {
		if err := h.Members.AddMileageTx(ctx, tx, member.ID, -todo.BetMileage); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		if err := h.Mileage.AppendTx(ctx, tx, member.ID, todo.BetMileage, model.MileageUse); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}

	userTodoID, err := h.Todos.Join(ctx, tx, member.ID, todo.ID, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "join failed"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{
		"user_todo_id":  userTodoID,
		"todo_id":       todo.ID,
		"staked":        todo.BetMileage,
		"total_mileage": member.TotalMileage - todo.BetMileage,
		"started_at":    now,
	})
}
