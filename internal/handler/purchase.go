package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmlee-dev/studycafe-backend/internal/model"
	"github.com/jmlee-dev/studycafe-backend/internal/repository"
	"github.com/jmlee-dev/studycafe-backend/internal/settlement"
)

// purchase errors local to the HTTP layer; settlement sentinels pass
// through untouched.
var (
	errProductNotFound = errors.New("product not found")
	errMemberNotFound  = errors.New("member not found")
)

type purchaseDeps struct {
	Members  *repository.MemberRepo
	Products *repository.ProductRepo
	Orders   *repository.OrderRepo
	Mileage  *repository.MileageRepo
}

type purchaseResult struct {
	OrderID         uint64
	Product         model.Product
	Quote           settlement.PurchaseQuote
	Role            model.Role
	SavedTimeMinute int
	TotalMileage    int
}

// executePurchase runs the purchase-to-ledger settlement in one
// transaction: quote validation, mileage debit and credit with their
// ledger entries, minute credit, period window stamping and the order
// insert all commit or roll back together.  memberID zero selects the
// walk-in guest account; guest purchases never touch balances and the
// buyer phone is captured on the order row only.
func executePurchase(ctx context.Context, deps purchaseDeps, surface settlement.Surface, pol settlement.EarnPolicy, memberID, productID uint64, phone string, useMileage int) (purchaseResult, error) {
	var out purchaseResult

	tx, err := deps.Members.DB().BeginTx(ctx, nil)
	if err != nil {
		return out, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Member row first, locked: the lock serializes balance mutations
	// and the quote below reads an authoritative balance.
	var buyer model.Member
	if memberID == 0 {
		buyer, err = deps.Members.GetOrCreateGuestTx(ctx, tx)
		if err != nil {
			return out, err
		}
	} else {
		buyer, err = deps.Members.GetForUpdateTx(ctx, tx, memberID)
		if err != nil {
			if err == sql.ErrNoRows {
				return out, errMemberNotFound
			}
			return out, err
		}
	}

	product, err := deps.Products.GetByIDTx(ctx, tx, productID)
	if err != nil {
		if err == sql.ErrNoRows {
			return out, errProductNotFound
		}
		return out, err
	}

	quote, err := settlement.QuotePurchase(buyer.Role, product, useMileage, buyer.TotalMileage, surface, pol)
	if err != nil {
		return out, err
	}

	if quote.UseMileage > 0 {
		if err := deps.Members.AddMileageTx(ctx, tx, buyer.ID, -quote.UseMileage); err != nil {
			return out, err
		}
		if err := deps.Mileage.AppendTx(ctx, tx, buyer.ID, quote.UseMileage, model.MileageUse); err != nil {
			return out, err
		}
	}
	if quote.EarnMileage > 0 {
		if err := deps.Members.AddMileageTx(ctx, tx, buyer.ID, quote.EarnMileage); err != nil {
			return out, err
		}
		if err := deps.Mileage.AppendTx(ctx, tx, buyer.ID, quote.EarnMileage, model.MileageEarn); err != nil {
			return out, err
		}
	}
	if quote.CreditMinutes > 0 {
		if err := deps.Members.AddSavedTimeTx(ctx, tx, buyer.ID, quote.CreditMinutes); err != nil {
			return out, err
		}
	}

	order := model.Order{
		MemberID:      &buyer.ID,
		ProductID:     &product.ID,
		PaymentAmount: quote.FinalAmount,
	}
	if phone != "" {
		p := phone
		order.BuyerPhone = &p
	}
	// Period passes are entitlements on the calendar, not the minute
	// balance: stamp the validity window at purchase time.
	if product.Kind == model.ProductPeriod {
		start, end := product.PeriodWindow(time.Now())
		order.PeriodStartDate = &start
		order.PeriodEndDate = &end
	}
	if err := deps.Orders.CreateTx(ctx, tx, &order); err != nil {
		return out, err
	}

	if err := tx.Commit(); err != nil {
		return out, err
	}
	committed = true

	out.OrderID = order.ID
	out.Product = product
	out.Quote = quote
	out.Role = buyer.Role
	out.SavedTimeMinute = buyer.SavedTimeMinute + quote.CreditMinutes
	out.TotalMileage = buyer.TotalMileage - quote.UseMileage + quote.EarnMileage
	return out, nil
}
