package settlement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
	"github.com/jmlee-dev/studycafe-backend/internal/settlement"
)

func TestExpiryForMemberFree_WholeBalanceAtRisk(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	exp, err := settlement.ExpiryForMemberFree(now, 120)

	assert.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Hour), exp)
}

func TestExpiryForMemberFree_EmptyBalanceRejected(t *testing.T) {
	now := time.Now().UTC()

	_, err := settlement.ExpiryForMemberFree(now, 0)
	assert.ErrorIs(t, err, settlement.ErrNoEntitlement)

	_, err = settlement.ExpiryForMemberFree(now, -5)
	assert.ErrorIs(t, err, settlement.ErrNoEntitlement)
}

func TestExpiryForMemberFixed_UsesPeriodEndDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	order := &model.Order{PeriodEndDate: &end}

	exp, err := settlement.ExpiryForMemberFixed(now, order)

	assert.NoError(t, err)
	// The order's window is authoritative, not a balance-derived value.
	assert.Equal(t, end, exp)
}

func TestExpiryForMemberFixed_ExpiredOrMissingOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	_, err := settlement.ExpiryForMemberFixed(now, &model.Order{PeriodEndDate: &past})
	assert.ErrorIs(t, err, settlement.ErrNoEntitlement)

	_, err = settlement.ExpiryForMemberFixed(now, nil)
	assert.ErrorIs(t, err, settlement.ErrNoEntitlement)

	_, err = settlement.ExpiryForMemberFixed(now, &model.Order{})
	assert.ErrorIs(t, err, settlement.ErrNoEntitlement)
}

func TestExpiryForGuest_DerivedFromTicketDuration(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	product := &model.Product{Kind: model.ProductTime, Value: 2}

	exp, err := settlement.ExpiryForGuest(now, product)

	assert.NoError(t, err)
	assert.Equal(t, now.Add(120*time.Minute), exp)
}

func TestExpiryForGuest_MissingOrWorthlessProduct(t *testing.T) {
	now := time.Now().UTC()

	_, err := settlement.ExpiryForGuest(now, nil)
	assert.ErrorIs(t, err, settlement.ErrNoEntitlement)

	_, err = settlement.ExpiryForGuest(now, &model.Product{Value: 0})
	assert.ErrorIs(t, err, settlement.ErrNoEntitlement)
}

func TestValidateGuestOrder(t *testing.T) {
	guestID := uint64(1)
	memberID := uint64(42)
	productID := uint64(3)
	now := time.Now().UTC()

	ok := model.Order{MemberID: &guestID, ProductID: &productID}
	assert.NoError(t, settlement.ValidateGuestOrder(ok, guestID))

	// A registered member's order already credited their own balance
	// at purchase; it cannot also fund a walk-in session.
	memberOrder := model.Order{MemberID: &memberID, ProductID: &productID}
	assert.ErrorIs(t, settlement.ValidateGuestOrder(memberOrder, guestID), settlement.ErrNoEntitlement)

	orphan := model.Order{ProductID: &productID}
	assert.ErrorIs(t, settlement.ValidateGuestOrder(orphan, guestID), settlement.ErrNoEntitlement)

	noProduct := model.Order{MemberID: &guestID}
	assert.ErrorIs(t, settlement.ValidateGuestOrder(noProduct, guestID), settlement.ErrNoEntitlement)

	used := model.Order{MemberID: &guestID, ProductID: &productID, PeriodStartDate: &now}
	assert.ErrorIs(t, settlement.ValidateGuestOrder(used, guestID), settlement.ErrOrderUsed)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "01012345678", settlement.NormalizePhone("010-1234-5678"))
	assert.Equal(t, "01012345678", settlement.NormalizePhone("010 1234 5678"))
	assert.Equal(t, "01012345678", settlement.NormalizePhone("01012345678"))
}
