package model

import "time"

// TodoKind selects how a goal's progress is measured.
type TodoKind string

const (
	TodoTime       TodoKind = "time"       // accumulated closed-session minutes
	TodoAttendance TodoKind = "attendance" // distinct attended calendar days
)

// Todo defines a goal that members can opt into.  BetMileage is
// staked when a member joins; on completion the member receives the
// stake back plus PaybackPercent of it.  TargetValue is minutes for
// time goals and distinct days for attendance goals.
type Todo struct {
	ID             uint64   // todos.todo_id
	Kind           TodoKind // todos.kind
	Title          string   // todos.title
	Content        *string  // todos.content (nullable)
	TargetValue    int      // todos.target_value
	BetMileage     int      // todos.bet_mileage
	PaybackPercent int      // todos.payback_percent
	Visible        bool     // todos.is_visible
}

// UserTodo binds a member to a Todo instance.  Open instances
// (Achieved == false) are re-evaluated at every check-out of the
// member; once achieved they are closed with AchievedAt set and are
// never evaluated again.  StartedAt is the aggregation window start
// for progress queries.
type UserTodo struct {
	ID         uint64     // user_todos.user_todo_id
	MemberID   *uint64    // user_todos.member_id (nullable)
	TodoID     *uint64    // user_todos.todo_id (nullable)
	Achieved   bool       // user_todos.is_achieved
	StartedAt  time.Time  // user_todos.started_at
	AchievedAt *time.Time // user_todos.achieved_at (nullable)
}
