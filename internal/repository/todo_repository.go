package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
)

// OpenUserTodo pairs an open user_todos row with its goal definition
// for evaluation at check-out.
type OpenUserTodo struct {
	UserTodo model.UserTodo
	Todo     model.Todo
}

// TodoRepo provides access to the todos and user_todos tables.  Goal
// definitions are managed elsewhere; this repository only reads open
// instances and closes achieved ones.
type TodoRepo struct {
	db *sql.DB
}

// NewTodoRepo returns a TodoRepo bound to the given database.
func NewTodoRepo(db *sql.DB) *TodoRepo { return &TodoRepo{db: db} }

// OpenByMemberTx returns the member's open todo instances joined with
// their definitions.
func (r *TodoRepo) OpenByMemberTx(ctx context.Context, tx *sql.Tx, memberID uint64) ([]OpenUserTodo, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT ut.user_todo_id, ut.member_id, ut.todo_id, ut.is_achieved, ut.started_at,
				t.todo_id, t.kind, t.title, t.content, t.target_value, t.bet_mileage, t.payback_percent, t.is_visible
		 FROM user_todos ut
		 JOIN todos t ON t.todo_id = ut.todo_id
		 WHERE ut.member_id = ? AND ut.is_achieved = 0`,
		memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	open := make([]OpenUserTodo, 0)
	for rows.Next() {
		var o OpenUserTodo
		var utMemberID, utTodoID sql.NullInt64
		var kind string
		var content sql.NullString
		err := rows.Scan(&o.UserTodo.ID, &utMemberID, &utTodoID, &o.UserTodo.Achieved, &o.UserTodo.StartedAt,
			&o.Todo.ID, &kind, &o.Todo.Title, &content, &o.Todo.TargetValue, &o.Todo.BetMileage, &o.Todo.PaybackPercent, &o.Todo.Visible)
		if err != nil {
			return nil, err
		}
		if utMemberID.Valid {
			v := uint64(utMemberID.Int64)
			o.UserTodo.MemberID = &v
		}
		if utTodoID.Valid {
			v := uint64(utTodoID.Int64)
			o.UserTodo.TodoID = &v
		}
		if content.Valid {
			v := content.String
			o.Todo.Content = &v
		}
		o.Todo.Kind = model.TodoKind(kind)
		open = append(open, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return open, nil
}

const todoCols = `todo_id, kind, title, content, target_value, bet_mileage, payback_percent, is_visible`

func scanTodo(row rowScanner) (model.Todo, error) {
	var t model.Todo
	var kind string
	var content sql.NullString
	err := row.Scan(&t.ID, &kind, &t.Title, &content, &t.TargetValue, &t.BetMileage, &t.PaybackPercent, &t.Visible)
	if err != nil {
		return model.Todo{}, err
	}
	t.Kind = model.TodoKind(kind)
	if content.Valid {
		v := content.String
		t.Content = &v
	}
	return t, nil
}

// GetByIDTx loads one goal definition, locked so the stake amount
// cannot change under a join in flight.
func (r *TodoRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, todoID uint64) (model.Todo, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+todoCols+` FROM todos WHERE todo_id = ? FOR UPDATE`, todoID)
	return scanTodo(row)
}

// ListVisible returns the goals members can currently opt into.
func (r *TodoRepo) ListVisible(ctx context.Context) ([]model.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+todoCols+` FROM todos WHERE is_visible = 1 ORDER BY todo_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// HasOpenInstanceTx reports whether the member already has an open
// instance of the goal, so a double join can be rejected.
func (r *TodoRepo) HasOpenInstanceTx(ctx context.Context, tx *sql.Tx, memberID, todoID uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM user_todos WHERE member_id = ? AND todo_id = ? AND is_achieved = 0 LIMIT 1`,
		memberID, todoID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkAchievedTx closes a todo instance.  The guard on is_achieved
// keeps the close idempotent.
func (r *TodoRepo) MarkAchievedTx(ctx context.Context, tx *sql.Tx, userTodoID uint64, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE user_todos SET is_achieved = 1, achieved_at = ? WHERE user_todo_id = ? AND is_achieved = 0`,
		at, userTodoID)
	return err
}

// Join opts a member into a visible goal, staking its bet mileage.
// The stake debit and ledger entry are the caller's responsibility,
// inside the same transaction.
func (r *TodoRepo) Join(ctx context.Context, tx *sql.Tx, memberID, todoID uint64, at time.Time) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO user_todos (member_id, todo_id, started_at) VALUES (?, ?, ?)`,
		memberID, todoID, at)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
