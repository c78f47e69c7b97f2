package model

import "time"

// MileageKind tags an entry of the append-only mileage ledger.
type MileageKind string

const (
	MileageEarn  MileageKind = "earn"  // credited on purchase
	MileageUse   MileageKind = "use"   // spent against a purchase price
	MileagePrize MileageKind = "prize" // todo goal reward
)

// Signed returns the contribution of an entry of this kind to the
// member's balance: earn and prize add, use subtracts.  The signed
// sum over a member's history must equal total_mileage at all times.
func (k MileageKind) Signed(amount int) int {
	if k == MileageUse {
		return -amount
	}
	return amount
}

// MileageHistory is one ledger entry justifying a balance change.
// Amounts are stored positive; the kind carries the sign.
type MileageHistory struct {
	ID        uint64      // mileage_history.history_id
	MemberID  uint64      // mileage_history.member_id
	Amount    int         // mileage_history.amount
	Kind      MileageKind // mileage_history.kind
	CreatedAt time.Time   // mileage_history.created_at
}
