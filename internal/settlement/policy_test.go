package settlement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
	"github.com/jmlee-dev/studycafe-backend/internal/settlement"
)

var policy = settlement.EarnPolicy{KioskDivisor: 10, WebPercent: 1}

func TestQuotePurchase_KioskWithMileage(t *testing.T) {
	product := model.Product{Kind: model.ProductTime, Price: 10000, Value: 2}

	q, err := settlement.QuotePurchase(model.RoleUser, product, 2000, 5000, settlement.SurfaceKiosk, policy)

	assert.NoError(t, err)
	assert.Equal(t, 8000, q.FinalAmount)
	assert.Equal(t, 2000, q.UseMileage)
	assert.Equal(t, 800, q.EarnMileage) // 8000 / 10
	assert.Equal(t, 120, q.CreditMinutes)
}

func TestQuotePurchase_WebRateDiffersFromKiosk(t *testing.T) {
	product := model.Product{Kind: model.ProductTime, Price: 10000, Value: 2}

	q, err := settlement.QuotePurchase(model.RoleUser, product, 2000, 5000, settlement.SurfaceWeb, policy)

	assert.NoError(t, err)
	assert.Equal(t, 8000, q.FinalAmount)
	assert.Equal(t, 80, q.EarnMileage) // 8000 * 1%
}

func TestQuotePurchase_PeriodTicketGrantsNoMinutes(t *testing.T) {
	product := model.Product{Kind: model.ProductPeriod, Price: 90000, Value: 30}

	q, err := settlement.QuotePurchase(model.RoleUser, product, 0, 0, settlement.SurfaceKiosk, policy)

	assert.NoError(t, err)
	assert.Equal(t, 90000, q.FinalAmount)
	assert.Equal(t, 0, q.CreditMinutes)
	assert.Equal(t, 9000, q.EarnMileage)
}

func TestQuotePurchase_GuestCannotUseMileage(t *testing.T) {
	product := model.Product{Kind: model.ProductTime, Price: 5000, Value: 1}

	_, err := settlement.QuotePurchase(model.RoleGuest, product, 100, 0, settlement.SurfaceKiosk, policy)

	assert.ErrorIs(t, err, settlement.ErrGuestMileage)
}

func TestQuotePurchase_GuestEarnsNothing(t *testing.T) {
	product := model.Product{Kind: model.ProductTime, Price: 5000, Value: 1}

	q, err := settlement.QuotePurchase(model.RoleGuest, product, 0, 0, settlement.SurfaceKiosk, policy)

	assert.NoError(t, err)
	assert.Equal(t, 5000, q.FinalAmount)
	assert.Equal(t, 0, q.EarnMileage)
	assert.Equal(t, 0, q.CreditMinutes)
}

func TestQuotePurchase_InsufficientMileage(t *testing.T) {
	product := model.Product{Kind: model.ProductTime, Price: 5000, Value: 1}

	_, err := settlement.QuotePurchase(model.RoleUser, product, 3000, 2999, settlement.SurfaceKiosk, policy)

	assert.ErrorIs(t, err, settlement.ErrInsufficientMileage)
}

func TestQuotePurchase_MileageCappedAtPrice(t *testing.T) {
	product := model.Product{Kind: model.ProductTime, Price: 5000, Value: 1}

	_, err := settlement.QuotePurchase(model.RoleUser, product, 6000, 10000, settlement.SurfaceKiosk, policy)

	assert.ErrorIs(t, err, settlement.ErrMileageExceedsPrice)
}

func TestQuotePurchase_NegativeMileageTreatedAsZero(t *testing.T) {
	product := model.Product{Kind: model.ProductTime, Price: 5000, Value: 1}

	q, err := settlement.QuotePurchase(model.RoleUser, product, -50, 0, settlement.SurfaceKiosk, policy)

	assert.NoError(t, err)
	assert.Equal(t, 5000, q.FinalAmount)
	assert.Equal(t, 0, q.UseMileage)
}

func TestLedgerConservation_PurchaseAndPrize(t *testing.T) {
	// Every balance mutation is mirrored by one ledger entry; the
	// signed sum over the entries must equal the net balance delta.
	product := model.Product{Kind: model.ProductTime, Price: 10000, Value: 2}

	q, err := settlement.QuotePurchase(model.RoleUser, product, 2000, 5000, settlement.SurfaceKiosk, policy)
	assert.NoError(t, err)

	prize := settlement.Reward(1000, 30)

	entries := []struct {
		kind   model.MileageKind
		amount int
	}{
		{model.MileageUse, q.UseMileage},
		{model.MileageEarn, q.EarnMileage},
		{model.MileagePrize, prize},
	}
	signedSum := 0
	for _, e := range entries {
		signedSum += e.kind.Signed(e.amount)
	}

	balanceDelta := -q.UseMileage + q.EarnMileage + prize
	assert.Equal(t, balanceDelta, signedSum)
	assert.Equal(t, -2000+800+1300, signedSum)
}

func TestEarn_TruncatesTowardZero(t *testing.T) {
	assert.Equal(t, 99, policy.Earn(settlement.SurfaceKiosk, 999))
	assert.Equal(t, 9, policy.Earn(settlement.SurfaceWeb, 999))
	assert.Equal(t, 0, policy.Earn(settlement.SurfaceKiosk, 0))
	assert.Equal(t, 0, policy.Earn(settlement.SurfaceWeb, -100))
}
