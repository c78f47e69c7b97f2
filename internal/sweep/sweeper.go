// Package sweep reclaims fixed seats whose period pass ran out while
// the session stayed open.  Free-seat sessions are settled only at
// check-out; the sweeper never touches them.
package sweep

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/jmlee-dev/studycafe-backend/internal/cache"
	"github.com/jmlee-dev/studycafe-backend/internal/model"
	"github.com/jmlee-dev/studycafe-backend/internal/repository"
	"github.com/jmlee-dev/studycafe-backend/internal/settlement"
)

// Sweeper periodically closes open fixed-seat sessions whose
// ticket_expired_time has passed and frees their seats.  Each session
// is settled in its own transaction so one bad row cannot wedge the
// whole sweep.
type Sweeper struct {
	Members  *repository.MemberRepo
	Seats    *repository.SeatRepo
	Usages   *repository.UsageRepo
	Board    *cache.SeatBoard
	Interval time.Duration
}

func New(m *repository.MemberRepo, s *repository.SeatRepo, u *repository.UsageRepo, board *cache.SeatBoard, interval time.Duration) *Sweeper {
	if interval <= 0 || interval > 24*time.Hour {
		interval = 24 * time.Hour
	}
	return &Sweeper{Members: m, Seats: s, Usages: u, Board: board, Interval: interval}
}

// Run sweeps once immediately and then on every tick until the
// context is cancelled.  Intended to run as a goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now()
	expired, err := s.Usages.ExpiredFixedOpen(ctx, now)
	if err != nil {
		log.Printf("sweep: list expired sessions failed: %v", err)
		return
	}
	closed := 0
	for _, u := range expired {
		if u.SeatID == nil {
			continue
		}
		if err := s.closeOne(ctx, *u.SeatID, u.ID, u.MemberID, now); err != nil {
			log.Printf("sweep: close usage %d failed: %v", u.ID, err)
			continue
		}
		closed++
	}
	if closed > 0 {
		s.Board.Invalidate(ctx)
		log.Printf("sweep: reclaimed %d expired fixed seat(s)", closed)
	}
}

func (s *Sweeper) closeOne(ctx context.Context, seatID, usageID uint64, memberID *uint64, now time.Time) error {
	tx, err := s.Members.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Member row first, then the seat session, the same lock order as
	// check-in and check-out.
	var memberRole model.Role
	if memberID != nil {
		m, err := s.Members.GetForUpdateTx(ctx, tx, *memberID)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		if err == nil {
			memberRole = m.Role
		}
	}

	if _, err := s.Seats.GetForUpdateTx(ctx, tx, seatID); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}

	// Re-read under lock; the occupant may have checked out between
	// the listing and now.
	usage, err := s.Usages.OpenBySeatForUpdateTx(ctx, tx, seatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}
	if usage.ID != usageID {
		return nil
	}
	if usage.TicketExpiredTime == nil || usage.TicketExpiredTime.After(now) {
		return nil
	}

	// The session still counts as the member's attendance for the
	// check-in day, once per day like a normal check-out.
	attended := false
	if memberRole.HasBalances() && usage.MemberID != nil {
		already, err := s.Usages.HasAttendanceOnDayTx(ctx, tx, *usage.MemberID, usage.CheckInTime)
		if err != nil {
			return err
		}
		attended = settlement.GrantAttendance(memberRole, already)
	}

	if err := s.Usages.CloseTx(ctx, tx, usage.ID, now, attended); err != nil {
		return err
	}
	if err := s.Seats.SetOccupiedTx(ctx, tx, seatID, false); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
