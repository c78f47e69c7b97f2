package handler

import (
	"github.com/jmlee-dev/studycafe-backend/internal/cache"
	"github.com/jmlee-dev/studycafe-backend/internal/config"
	"github.com/jmlee-dev/studycafe-backend/internal/repository"
	"github.com/jmlee-dev/studycafe-backend/internal/settlement"
	"github.com/jmlee-dev/studycafe-backend/internal/vision"
)

// KioskHandler groups the repositories and collaborators behind the
// unauthenticated kiosk surface: member PIN login, ticket sales, the
// seat map and the check-in/check-out flows.  All occupancy and
// ledger mutations run inside a single transaction per request; the
// camera collaborator and the seat board cache sit outside the
// transaction and never decide outcomes on failure.
type KioskHandler struct {
	Cfg      config.Config
	Members  *repository.MemberRepo
	Seats    *repository.SeatRepo
	Products *repository.ProductRepo
	Orders   *repository.OrderRepo
	Usages   *repository.UsageRepo
	Mileage  *repository.MileageRepo
	Todos    *repository.TodoRepo
	Board    *cache.SeatBoard
	Vision   *vision.Client
}

// NewKioskHandler constructs a KioskHandler.  Board and Vision may be
// nil; everything else must be non-nil.
func NewKioskHandler(cfg config.Config, m *repository.MemberRepo, s *repository.SeatRepo, p *repository.ProductRepo, o *repository.OrderRepo, u *repository.UsageRepo, ml *repository.MileageRepo, td *repository.TodoRepo, board *cache.SeatBoard, vc *vision.Client) *KioskHandler {
	if m == nil || s == nil || p == nil || o == nil || u == nil || ml == nil || td == nil {
		panic("nil repository passed to NewKioskHandler")
	}
	return &KioskHandler{
		Cfg:      cfg,
		Members:  m,
		Seats:    s,
		Products: p,
		Orders:   o,
		Usages:   u,
		Mileage:  ml,
		Todos:    td,
		Board:    board,
		Vision:   vc,
	}
}

func (h *KioskHandler) earnPolicy() settlement.EarnPolicy {
	return settlement.EarnPolicy{KioskDivisor: h.Cfg.KioskEarnDiv, WebPercent: h.Cfg.WebEarnPct}
}
