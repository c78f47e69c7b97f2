package repository

import (
	"context"
	"database/sql"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
)

// MileageRepo provides access to the append-only mileage_history
// ledger.  Every balance change on members.total_mileage must be
// justified by exactly one entry appended in the same transaction;
// the signed sum over a member's entries always equals the balance.
type MileageRepo struct {
	db *sql.DB
}

// NewMileageRepo returns a MileageRepo bound to the given database.
func NewMileageRepo(db *sql.DB) *MileageRepo { return &MileageRepo{db: db} }

// AppendTx appends one ledger entry.  Amounts are stored positive;
// the kind carries the sign.
func (r *MileageRepo) AppendTx(ctx context.Context, tx *sql.Tx, memberID uint64, amount int, kind model.MileageKind) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO mileage_history (member_id, amount, kind) VALUES (?, ?, ?)`,
		memberID, amount, string(kind))
	return err
}

// SumSignedByMember folds the member's ledger into its signed sum.
// Reconciliation checks compare it against members.total_mileage.
func (r *MileageRepo) SumSignedByMember(ctx context.Context, memberID uint64) (int, error) {
	var sum int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN kind = 'use' THEN -amount ELSE amount END), 0)
		 FROM mileage_history WHERE member_id = ?`,
		memberID).Scan(&sum)
	return sum, err
}

// ListByMember returns the member's ledger, newest first.
func (r *MileageRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.MileageHistory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT history_id, member_id, amount, kind, created_at
		 FROM mileage_history WHERE member_id = ? ORDER BY created_at DESC, history_id DESC`,
		memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.MileageHistory, 0)
	for rows.Next() {
		var e model.MileageHistory
		var kind string
		if err := rows.Scan(&e.ID, &e.MemberID, &e.Amount, &kind, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = model.MileageKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
