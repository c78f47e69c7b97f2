package settlement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
	"github.com/jmlee-dev/studycafe-backend/internal/settlement"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func TestUsedMinutes(t *testing.T) {
	in := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 150, settlement.UsedMinutes(in, in.Add(150*time.Minute)))
	assert.Equal(t, 0, settlement.UsedMinutes(in, in.Add(30*time.Second)))
	// Clock skew must not produce a negative charge.
	assert.Equal(t, 0, settlement.UsedMinutes(in, in.Add(-time.Minute)))
}

func TestSettleBalance_OverageClampsToZero(t *testing.T) {
	// 120 minutes prepaid, 150 minutes used: balance floors at zero,
	// the overage is absorbed.
	got := settlement.SettleBalance(model.RoleUser, model.SeatFree, 120, 150)
	assert.Equal(t, 0, got)
}

func TestSettleBalance_DeductsExactUsage(t *testing.T) {
	got := settlement.SettleBalance(model.RoleUser, model.SeatFree, 300, 45)
	assert.Equal(t, 255, got)
}

func TestSettleBalance_FixedSeatLeavesBalanceAlone(t *testing.T) {
	got := settlement.SettleBalance(model.RoleUser, model.SeatFixed, 300, 600)
	assert.Equal(t, 300, got)
}

func TestSettleBalance_GuestNeverMutates(t *testing.T) {
	got := settlement.SettleBalance(model.RoleGuest, model.SeatFree, 0, 90)
	assert.Equal(t, 0, got)
}

func TestVerifyOccupant_SeatTurnoverRejected(t *testing.T) {
	// Credential verified for member 7, but by the time the session
	// row is locked the seat belongs to member 9 (the first request's
	// duplicate committed and someone else checked in).  The stale
	// request must not settle against the new occupant.
	other := uint64(9)
	assert.ErrorIs(t, settlement.VerifyOccupant(&other, 7), settlement.ErrNoActiveSession)

	assert.ErrorIs(t, settlement.VerifyOccupant(nil, 7), settlement.ErrNoActiveSession)

	same := uint64(7)
	assert.NoError(t, settlement.VerifyOccupant(&same, 7))
}

func TestGrantAttendance_OncePerDay(t *testing.T) {
	assert.True(t, settlement.GrantAttendance(model.RoleUser, false))
	assert.False(t, settlement.GrantAttendance(model.RoleUser, true))
	assert.True(t, settlement.GrantAttendance(model.RoleAdmin, false))
	// Guests never earn the daily credit.
	assert.False(t, settlement.GrantAttendance(model.RoleGuest, false))
}

func TestVerifyCredential_MemberPIN(t *testing.T) {
	err := settlement.VerifyCredential(model.RoleUser, intPtr(4321), nil,
		settlement.Credential{PIN: intPtr(4321)})
	assert.NoError(t, err)

	err = settlement.VerifyCredential(model.RoleUser, intPtr(4321), nil,
		settlement.Credential{PIN: intPtr(1111)})
	assert.ErrorIs(t, err, settlement.ErrAuthMismatch)

	err = settlement.VerifyCredential(model.RoleUser, intPtr(4321), nil,
		settlement.Credential{})
	assert.ErrorIs(t, err, settlement.ErrAuthMismatch)
}

func TestVerifyCredential_ForceSkipsMemberPINOnly(t *testing.T) {
	err := settlement.VerifyCredential(model.RoleUser, intPtr(4321), nil,
		settlement.Credential{Force: true})
	assert.NoError(t, err)

	// Force does not bypass the guest phone check.
	err = settlement.VerifyCredential(model.RoleGuest, nil, strPtr("010-1234-5678"),
		settlement.Credential{Force: true})
	assert.ErrorIs(t, err, settlement.ErrAuthMismatch)
}

func TestVerifyCredential_GuestPhone(t *testing.T) {
	orderPhone := strPtr("010-1234-5678")

	err := settlement.VerifyCredential(model.RoleGuest, nil, orderPhone,
		settlement.Credential{Phone: "01012345678"})
	assert.NoError(t, err)

	err = settlement.VerifyCredential(model.RoleGuest, nil, orderPhone,
		settlement.Credential{Phone: "010-9999-0000"})
	assert.ErrorIs(t, err, settlement.ErrAuthMismatch)

	err = settlement.VerifyCredential(model.RoleGuest, nil, nil,
		settlement.Credential{Phone: "01012345678"})
	assert.ErrorIs(t, err, settlement.ErrAuthMismatch)
}
