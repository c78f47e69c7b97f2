package settlement

import "github.com/jmlee-dev/studycafe-backend/internal/model"

// TodoResult reports the evaluation of one open user todo at
// check-out.  Every open todo of the member is evaluated
// independently and all results go back in the check-out response.
type TodoResult struct {
	UserTodoID    uint64         `json:"user_todo_id"`
	Title         string         `json:"title"`
	Kind          model.TodoKind `json:"kind"`
	TargetValue   int            `json:"target_value"`
	CurrentValue  int            `json:"current_value"`
	AchievedNow   bool           `json:"achieved_now"`
	RewardMileage int            `json:"reward_mileage"`
}

// Reward computes the prize for a completed todo: the staked mileage
// plus its payback percentage, truncated to an integer.
func Reward(betMileage, paybackPercent int) int {
	if betMileage <= 0 {
		return 0
	}
	return betMileage * (100 + paybackPercent) / 100
}

// EvaluateTodo compares a goal's current aggregate value (minutes for
// time goals, attended days for attendance goals, computed by the
// caller from closed sessions since the todo started) against its
// target.  The reward is only set when the goal is reached now.
func EvaluateTodo(userTodoID uint64, def model.Todo, current int) TodoResult {
	res := TodoResult{
		UserTodoID:   userTodoID,
		Title:        def.Title,
		Kind:         def.Kind,
		TargetValue:  def.TargetValue,
		CurrentValue: current,
	}
	if current >= def.TargetValue {
		res.AchievedNow = true
		res.RewardMileage = Reward(def.BetMileage, def.PaybackPercent)
	}
	return res
}
