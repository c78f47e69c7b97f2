package repository

import (
	"context"
	"database/sql"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
)

// SeatRepo provides access to the seats table.  The is_occupied flag
// is only flipped inside check-in/check-out/sweeper transactions that
// also create or close the corresponding seat_usage row.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

const seatCols = `seat_id, kind, is_occupied, near_window, corner_seat, aisle_seat, isolated, near_beverage_table, is_center`

func scanSeat(row rowScanner) (model.Seat, error) {
	var s model.Seat
	var kind string
	err := row.Scan(&s.ID, &kind, &s.Occupied, &s.NearWindow, &s.CornerSeat,
		&s.AisleSeat, &s.Isolated, &s.NearBeverageTable, &s.IsCenter)
	if err != nil {
		return model.Seat{}, err
	}
	s.Kind = model.SeatKind(kind)
	return s, nil
}

// GetByID fetches a seat by primary key.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (model.Seat, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+seatCols+` FROM seats WHERE seat_id = ?`, id)
	return scanSeat(row)
}

// GetForUpdateTx locks the seat row for the remainder of the
// transaction.  Two concurrent check-ins for the same seat serialize
// here; the loser observes is_occupied = true and fails.
func (r *SeatRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Seat, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+seatCols+` FROM seats WHERE seat_id = ? FOR UPDATE`, id)
	return scanSeat(row)
}

// SetOccupiedTx flips the seat occupancy flag.
func (r *SeatRepo) SetOccupiedTx(ctx context.Context, tx *sql.Tx, id uint64, occupied bool) error {
	_, err := tx.ExecContext(ctx, `UPDATE seats SET is_occupied = ? WHERE seat_id = ?`, occupied, id)
	return err
}

// ListAll returns every seat ordered by id for the seat map.
func (r *SeatRepo) ListAll(ctx context.Context) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+seatCols+` FROM seats ORDER BY seat_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}
