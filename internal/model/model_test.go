package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"guest", "user", "admin"} {
		r, err := model.ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(r))
	}
	_, err := model.ParseRole("owner")
	assert.Error(t, err)
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, model.RoleGuest.IsGuest())
	assert.False(t, model.RoleGuest.HasBalances())
	assert.False(t, model.RoleGuest.CanUseDashboard())

	assert.True(t, model.RoleUser.HasBalances())
	assert.True(t, model.RoleUser.CanUseDashboard())
	assert.True(t, model.RoleAdmin.HasBalances())
	assert.True(t, model.RoleAdmin.CanUseDashboard())
}

func TestProductDurationMinutes(t *testing.T) {
	timeTicket := model.Product{Kind: model.ProductTime, Value: 4}
	assert.Equal(t, 240, timeTicket.DurationMinutes())

	periodPass := model.Product{Kind: model.ProductPeriod, Value: 30}
	assert.Equal(t, 0, periodPass.DurationMinutes())
}

func TestProductPeriodWindow(t *testing.T) {
	from := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	pass := model.Product{Kind: model.ProductPeriod, Value: 30}
	start, end := pass.PeriodWindow(from)
	assert.Equal(t, from, start)
	assert.Equal(t, from.AddDate(0, 0, 30), end)

	ticket := model.Product{Kind: model.ProductTime, Value: 4}
	start, end = ticket.PeriodWindow(from)
	assert.True(t, start.IsZero())
	assert.True(t, end.IsZero())
}

func TestMileageKindSigned(t *testing.T) {
	assert.Equal(t, 500, model.MileageEarn.Signed(500))
	assert.Equal(t, -500, model.MileageUse.Signed(500))
	assert.Equal(t, 1500, model.MileagePrize.Signed(1500))
}
