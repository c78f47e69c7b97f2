package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
)

// OrderRepo provides access to the orders table.  Orders are created
// only inside purchase transactions; period windows are stamped at
// purchase for period tickets and at check-in for guest sessions.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `order_id, member_id, product_id, buyer_phone, payment_amount, period_start_date, period_end_date, created_at`

func scanOrder(row rowScanner) (model.Order, error) {
	var o model.Order
	var memberID, productID sql.NullInt64
	var phone sql.NullString
	var start, end sql.NullTime
	err := row.Scan(&o.ID, &memberID, &productID, &phone, &o.PaymentAmount, &start, &end, &o.CreatedAt)
	if err != nil {
		return model.Order{}, err
	}
	if memberID.Valid {
		v := uint64(memberID.Int64)
		o.MemberID = &v
	}
	if productID.Valid {
		v := uint64(productID.Int64)
		o.ProductID = &v
	}
	if phone.Valid {
		v := phone.String
		o.BuyerPhone = &v
	}
	if start.Valid {
		v := start.Time
		o.PeriodStartDate = &v
	}
	if end.Valid {
		v := end.Time
		o.PeriodEndDate = &v
	}
	return o, nil
}

// CreateTx inserts an order and populates its generated id.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (member_id, product_id, buyer_phone, payment_amount, period_start_date, period_end_date) VALUES (?, ?, ?, ?, ?, ?)`,
		o.MemberID, o.ProductID, o.BuyerPhone, o.PaymentAmount, o.PeriodStartDate, o.PeriodEndDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// GetByID fetches an order by primary key.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE order_id = ?`, id)
	return scanOrder(row)
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *OrderRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Order, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE order_id = ?`, id)
	return scanOrder(row)
}

// ActivePeriodOrderTx returns the member's unexpired period-ticket
// order with the latest end date, or sql.ErrNoRows.  This order is
// the fixed-seat entitlement; its period_end_date becomes the
// session's ticket_expired_time.
func (r *OrderRepo) ActivePeriodOrderTx(ctx context.Context, tx *sql.Tx, memberID uint64, now time.Time) (model.Order, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT o.order_id, o.member_id, o.product_id, o.buyer_phone, o.payment_amount, o.period_start_date, o.period_end_date, o.created_at
		 FROM orders o
		 JOIN products p ON p.product_id = o.product_id
		 WHERE o.member_id = ? AND p.kind = 'period' AND o.period_end_date > ?
		 ORDER BY o.period_end_date DESC
		 LIMIT 1`,
		memberID, now)
	return scanOrder(row)
}

// HasActivePeriodOrder reports whether the member holds any unexpired
// period ticket.  Used by the kiosk login response.
func (r *OrderRepo) HasActivePeriodOrder(ctx context.Context, memberID uint64, now time.Time) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1
		 FROM orders o
		 JOIN products p ON p.product_id = o.product_id
		 WHERE o.member_id = ? AND p.kind = 'period' AND o.period_end_date > ?
		 LIMIT 1`,
		memberID, now).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetPeriodWindowTx stamps the entitlement window on an order.  Guest
// check-ins write the window matching the session's expiry so the
// ticket cannot be reused for a second stint.
func (r *OrderRepo) SetPeriodWindowTx(ctx context.Context, tx *sql.Tx, orderID uint64, start, end time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE orders SET period_start_date = ?, period_end_date = ? WHERE order_id = ?`,
		start, end, orderID)
	return err
}
