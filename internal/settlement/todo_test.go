package settlement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
	"github.com/jmlee-dev/studycafe-backend/internal/settlement"
)

func TestReward_StakePlusPayback(t *testing.T) {
	assert.Equal(t, 1500, settlement.Reward(1000, 50))
	assert.Equal(t, 1000, settlement.Reward(1000, 0))
	// Truncated to integer: 333 * 1.10 = 366.3
	assert.Equal(t, 366, settlement.Reward(333, 10))
	assert.Equal(t, 0, settlement.Reward(0, 50))
}

func TestEvaluateTodo_TimeGoalReached(t *testing.T) {
	def := model.Todo{Kind: model.TodoTime, Title: "study 10 hours", TargetValue: 600, BetMileage: 2000, PaybackPercent: 30}

	res := settlement.EvaluateTodo(7, def, 615)

	assert.True(t, res.AchievedNow)
	assert.Equal(t, uint64(7), res.UserTodoID)
	assert.Equal(t, 615, res.CurrentValue)
	assert.Equal(t, 2600, res.RewardMileage)
}

func TestEvaluateTodo_TimeGoalShort(t *testing.T) {
	def := model.Todo{Kind: model.TodoTime, TargetValue: 600, BetMileage: 2000, PaybackPercent: 30}

	res := settlement.EvaluateTodo(7, def, 599)

	assert.False(t, res.AchievedNow)
	assert.Equal(t, 0, res.RewardMileage)
}

func TestEvaluateTodo_AttendanceGoalAtExactTarget(t *testing.T) {
	def := model.Todo{Kind: model.TodoAttendance, TargetValue: 5, BetMileage: 500, PaybackPercent: 100}

	res := settlement.EvaluateTodo(3, def, 5)

	assert.True(t, res.AchievedNow)
	assert.Equal(t, 1000, res.RewardMileage)
}
