// Package payout computes deterministic royalty splits. Each beneficiary
// receives floor(amount·share/10000); the catch-all party receives whatever
// the floors left behind, so the payout always sums to the settlement
// amount exactly.
package payout

import (
	"github.com/shopspring/decimal"

	"github.com/popula/editions/types"
)

var basisPoints = decimal.NewFromInt(types.FullShareBasisPts)

// ShareAmount is floor(amount * share / 10000).
func ShareAmount(share uint64, amount decimal.Decimal) decimal.Decimal {
	q, _ := amount.Mul(decimal.NewFromInt(int64(share))).QuoRem(basisPoints, 0)
	return q
}

// Calculator resolves royalty tables into per-account amounts. It reads the
// series' stored royalty table and never mutates state.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute splits amount across the series' royalty table with the creator
// as the catch-all remainder recipient. Used for the mint-time preview.
func (c *Calculator) Compute(info *types.SeriesInfo, amount decimal.Decimal) (*types.Payout, error) {
	return c.split(info.Royalty, info.CreatorID, amount)
}

// ComputeTransfer splits amount at transfer settlement: the outgoing
// owner's own royalty entry is skipped and the outgoing owner becomes the
// catch-all recipient. maxLenPayout caps the number of royalty recipients a
// market is willing to pay out to; zero means no cap.
func (c *Calculator) ComputeTransfer(
	info *types.SeriesInfo,
	amount decimal.Decimal,
	previousOwner types.AccountID,
	maxLenPayout uint32,
) (*types.Payout, error) {
	if maxLenPayout > 0 && uint32(len(info.Royalty)) > maxLenPayout {
		return nil, types.Errorf(types.ErrPayoutFanoutExceeded,
			"market cannot payout to that many receivers")
	}
	return c.split(info.Royalty, previousOwner, amount)
}

// split assigns each beneficiary except the catch-all their floored share,
// then hands the catch-all the exact remainder. Shares summing past 10000
// should be impossible after creation-time validation but are re-checked
// here; a table written through some future path must not mint money.
func (c *Calculator) split(
	royalty types.RoyaltyTable,
	catchAll types.AccountID,
	amount decimal.Decimal,
) (*types.Payout, error) {
	if amount.IsNegative() {
		return nil, types.Errorf(types.ErrInvalidAmount, "settlement amount cannot be negative")
	}

	result := &types.Payout{Payout: make(map[types.AccountID]decimal.Decimal, len(royalty)+1)}

	// Summed in uint64: shares near the uint32 ceiling must trip the
	// overflow check below, not wrap around it.
	var totalApplied uint64
	for account, share := range royalty {
		if account == catchAll {
			continue
		}
		result.Payout[account] = ShareAmount(uint64(share), amount)
		totalApplied += uint64(share)
	}

	if totalApplied > types.FullShareBasisPts {
		return nil, types.Errorf(types.ErrPayoutOverflow, "total payout overflow")
	}

	result.Payout[catchAll] = amount.Sub(ShareAmount(totalApplied, amount))
	return result, nil
}
