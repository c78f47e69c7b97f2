package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
)

// UsageRepo provides access to the seat_usage table.  Open sessions
// (check_out_time IS NULL) embody the occupancy invariant: at most
// one per seat and one per non-guest member, enforced by the locked
// reads below inside the check-in/check-out transactions.
type UsageRepo struct {
	db *sql.DB
}

// NewUsageRepo returns a UsageRepo bound to the given database.
func NewUsageRepo(db *sql.DB) *UsageRepo { return &UsageRepo{db: db} }

const usageCols = `usage_id, seat_id, member_id, order_id, check_in_time, check_out_time, ticket_expired_time, is_attended`

func scanUsage(row rowScanner) (model.SeatUsage, error) {
	var u model.SeatUsage
	var seatID, memberID, orderID sql.NullInt64
	var checkOut, expired sql.NullTime
	err := row.Scan(&u.ID, &seatID, &memberID, &orderID, &u.CheckInTime, &checkOut, &expired, &u.IsAttended)
	if err != nil {
		return model.SeatUsage{}, err
	}
	if seatID.Valid {
		v := uint64(seatID.Int64)
		u.SeatID = &v
	}
	if memberID.Valid {
		v := uint64(memberID.Int64)
		u.MemberID = &v
	}
	if orderID.Valid {
		v := uint64(orderID.Int64)
		u.OrderID = &v
	}
	if checkOut.Valid {
		v := checkOut.Time
		u.CheckOutTime = &v
	}
	if expired.Valid {
		v := expired.Time
		u.TicketExpiredTime = &v
	}
	return u, nil
}

// CreateTx opens a session and populates its generated id.
func (r *UsageRepo) CreateTx(ctx context.Context, tx *sql.Tx, u *model.SeatUsage) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO seat_usage (seat_id, member_id, order_id, check_in_time, ticket_expired_time) VALUES (?, ?, ?, ?, ?)`,
		u.SeatID, u.MemberID, u.OrderID, u.CheckInTime, u.TicketExpiredTime)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// OpenBySeat returns the open session for a seat without locking.
// Used for read-only pre-checks before the authoritative transaction.
func (r *UsageRepo) OpenBySeat(ctx context.Context, seatID uint64) (model.SeatUsage, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+usageCols+` FROM seat_usage WHERE seat_id = ? AND check_out_time IS NULL LIMIT 1`, seatID)
	return scanUsage(row)
}

// OpenBySeatForUpdateTx returns the open session for a seat, locked
// for the remainder of the transaction.  sql.ErrNoRows means the seat
// has no occupant to check out.
func (r *UsageRepo) OpenBySeatForUpdateTx(ctx context.Context, tx *sql.Tx, seatID uint64) (model.SeatUsage, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+usageCols+` FROM seat_usage WHERE seat_id = ? AND check_out_time IS NULL LIMIT 1 FOR UPDATE`, seatID)
	return scanUsage(row)
}

// OpenByMemberTx returns the member's open session, if any.  The
// caller holds the member row lock, which serializes this check
// against concurrent check-ins by the same member.
func (r *UsageRepo) OpenByMemberTx(ctx context.Context, tx *sql.Tx, memberID uint64) (model.SeatUsage, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+usageCols+` FROM seat_usage WHERE member_id = ? AND check_out_time IS NULL LIMIT 1`, memberID)
	return scanUsage(row)
}

// CloseTx finalizes a session exactly once.
func (r *UsageRepo) CloseTx(ctx context.Context, tx *sql.Tx, usageID uint64, checkOut time.Time, attended bool) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE seat_usage SET check_out_time = ?, is_attended = ? WHERE usage_id = ? AND check_out_time IS NULL`,
		checkOut, attended, usageID)
	return err
}

// HasAttendanceOnDayTx reports whether the member already earned the
// attendance credit for the calendar day of the given instant.  The
// flag is set on at most one session per member per day.
func (r *UsageRepo) HasAttendanceOnDayTx(ctx context.Context, tx *sql.Tx, memberID uint64, day time.Time) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM seat_usage WHERE member_id = ? AND is_attended = 1 AND DATE(check_in_time) = DATE(?) LIMIT 1`,
		memberID, day).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SumClosedMinutesSinceTx aggregates the total minutes of the
// member's closed sessions whose check-in is at or after since.
// Called after CloseTx in the same transaction, so the session just
// closed is included.
func (r *UsageRepo) SumClosedMinutesSinceTx(ctx context.Context, tx *sql.Tx, memberID uint64, since time.Time) (int, error) {
	var minutes int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(TIMESTAMPDIFF(MINUTE, check_in_time, check_out_time)), 0)
		 FROM seat_usage
		 WHERE member_id = ? AND check_out_time IS NOT NULL AND check_in_time >= ?`,
		memberID, since).Scan(&minutes)
	return minutes, err
}

// CountAttendedDaysSinceTx counts the distinct calendar days with an
// attended session for the member since the given instant.
func (r *UsageRepo) CountAttendedDaysSinceTx(ctx context.Context, tx *sql.Tx, memberID uint64, since time.Time) (int, error) {
	var days int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT DATE(check_in_time))
		 FROM seat_usage
		 WHERE member_id = ? AND is_attended = 1 AND check_in_time >= ?`,
		memberID, since).Scan(&days)
	return days, err
}

// ExpiredFixedOpen lists open sessions on fixed seats whose period
// entitlement has lapsed.  The sweeper reclaims these one at a time
// in their own transactions.
func (r *UsageRepo) ExpiredFixedOpen(ctx context.Context, now time.Time) ([]model.SeatUsage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.usage_id, u.seat_id, u.member_id, u.order_id, u.check_in_time, u.check_out_time, u.ticket_expired_time, u.is_attended
		 FROM seat_usage u
		 JOIN seats s ON s.seat_id = u.seat_id
		 WHERE u.check_out_time IS NULL AND s.kind = 'fixed' AND u.ticket_expired_time IS NOT NULL AND u.ticket_expired_time <= ?`,
		now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var usages []model.SeatUsage
	for rows.Next() {
		u, err := scanUsage(rows)
		if err != nil {
			return nil, err
		}
		usages = append(usages, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return usages, nil
}
