package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
)

// MemberRepo provides access to the members table.  Balance columns
// (saved_time_minute, total_mileage) are only ever mutated through
// the Tx methods so that every change rides the same transaction as
// the order, usage or mileage row that justifies it.
type MemberRepo struct {
	db *sql.DB
}

// NewMemberRepo returns a MemberRepo bound to the given database.
func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *MemberRepo) DB() *sql.DB { return r.db }

const memberCols = `member_id, login_id, password_hash, name, phone, email, pin_code, role, saved_time_minute, total_mileage, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMember(row rowScanner) (model.Member, error) {
	var m model.Member
	var loginID, passwordHash, email sql.NullString
	var pin sql.NullInt64
	var role string
	err := row.Scan(&m.ID, &loginID, &passwordHash, &m.Name, &m.Phone, &email, &pin,
		&role, &m.SavedTimeMinute, &m.TotalMileage, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Member{}, err
	}
	if loginID.Valid {
		v := loginID.String
		m.LoginID = &v
	}
	if passwordHash.Valid {
		v := passwordHash.String
		m.PasswordHash = &v
	}
	if email.Valid {
		v := email.String
		m.Email = &v
	}
	if pin.Valid {
		v := int(pin.Int64)
		m.PinCode = &v
	}
	parsed, perr := model.ParseRole(role)
	if perr != nil {
		// Unknown role tags are treated as regular users rather than
		// silently granting or denying capabilities.
		parsed = model.RoleUser
	}
	m.Role = parsed
	return m, nil
}

// GetByID fetches a member by primary key.
func (r *MemberRepo) GetByID(ctx context.Context, id uint64) (model.Member, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+memberCols+` FROM members WHERE member_id = ?`, id)
	return scanMember(row)
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *MemberRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Member, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+memberCols+` FROM members WHERE member_id = ?`, id)
	return scanMember(row)
}

// GetForUpdateTx locks the member row for the remainder of the
// transaction.  Check-in, check-out and purchase all lock the member
// first so balance mutations and the one-open-session-per-member
// check serialize per member.
func (r *MemberRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Member, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+memberCols+` FROM members WHERE member_id = ? FOR UPDATE`, id)
	return scanMember(row)
}

// GetByPhone fetches a non-guest member by phone number.  The lookup
// ignores dash separators on both sides so kiosk pad input matches
// numbers stored formatted.
func (r *MemberRepo) GetByPhone(ctx context.Context, phone string) (model.Member, error) {
	normalized := strings.ReplaceAll(strings.ReplaceAll(phone, "-", ""), " ", "")
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberCols+` FROM members WHERE REPLACE(phone, '-', '') = ? AND role <> 'guest' LIMIT 1`,
		normalized)
	return scanMember(row)
}

// GetByLoginID fetches a member by web login id.
func (r *MemberRepo) GetByLoginID(ctx context.Context, loginID string) (model.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberCols+` FROM members WHERE login_id = ? LIMIT 1`, loginID)
	return scanMember(row)
}

// GetOrCreateGuestTx resolves the walk-in sentinel account by role,
// creating it on first use.  The row is locked so concurrent guest
// flows serialize on it.  Balances on the guest row are never
// authoritative; they stay zero.
func (r *MemberRepo) GetOrCreateGuestTx(ctx context.Context, tx *sql.Tx) (model.Member, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+memberCols+` FROM members WHERE role = 'guest' LIMIT 1 FOR UPDATE`)
	m, err := scanMember(row)
	if err == nil {
		return m, nil
	}
	if err != sql.ErrNoRows {
		return model.Member{}, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO members (name, phone, role, saved_time_minute, total_mileage) VALUES ('guest', '', 'guest', 0, 0)`)
	if err != nil {
		return model.Member{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Member{}, err
	}
	return r.GetByIDTx(ctx, tx, uint64(id))
}

// Create inserts a registered member (web signup).  passwordHash must
// already be a bcrypt hash.  Unique collisions on login id or phone
// surface as ErrDuplicate.
func (r *MemberRepo) Create(ctx context.Context, loginID, passwordHash, name, phone, email string, pin int) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO members (login_id, password_hash, name, phone, email, pin_code, role) VALUES (?, ?, ?, ?, ?, ?, 'user')`,
		loginID, passwordHash, name, phone, email, pin)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// AddSavedTimeTx adds delta minutes to the member's prepaid balance.
func (r *MemberRepo) AddSavedTimeTx(ctx context.Context, tx *sql.Tx, id uint64, delta int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE members SET saved_time_minute = saved_time_minute + ? WHERE member_id = ?`, delta, id)
	return err
}

// SetSavedTimeTx overwrites the member's prepaid balance with the
// settled value computed at check-out.
func (r *MemberRepo) SetSavedTimeTx(ctx context.Context, tx *sql.Tx, id uint64, minutes int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE members SET saved_time_minute = ? WHERE member_id = ?`, minutes, id)
	return err
}

// AddMileageTx adds delta (may be negative) to the member's mileage
// balance.  Callers must append the matching mileage_history row in
// the same transaction.
func (r *MemberRepo) AddMileageTx(ctx context.Context, tx *sql.Tx, id uint64, delta int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE members SET total_mileage = total_mileage + ? WHERE member_id = ?`, delta, id)
	return err
}
