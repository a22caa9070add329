package amm

import (
	"math/big"

	"github.com/shopspring/decimal"

	"landauSwap/internal/wide"
)

const feeRatePrecision = 18

// SettlementSummary reports one settled batch.
type SettlementSummary struct {
	Direction  Direction
	AmountIn   uint64
	AmountOut  uint64
	Fee        uint64
	OrderCount uint32
	BatchID    uint64
	NewBatchID uint64
}

// FeeRate is fee / (amountOut + fee), the share of the frictionless output
// kept by the pool.
func (s SettlementSummary) FeeRate() decimal.Decimal {
	fee := decimal.NewFromBigInt(new(big.Int).SetUint64(s.Fee), 0)
	out := decimal.NewFromBigInt(new(big.Int).SetUint64(s.AmountOut), 0)
	theoretical := fee.Add(out)
	if theoretical.IsZero() {
		return decimal.Zero
	}
	return fee.DivRound(theoretical, feeRatePrecision)
}

// Settle converts the open batch into one reserve update, credits the fee to
// the paid-out asset and opens the next batch stamped with slot. On error the
// pool is left exactly as it was.
func (p *Pool) Settle(slot uint64) (SettlementSummary, error) {
	if !p.Batch.Dirty() {
		return SettlementSummary{}, ErrEmptyBatch
	}

	direction, amountIn, err := p.Batch.netFlow()
	if err != nil {
		return SettlementSummary{}, err
	}

	next := *p
	reserveIn, reserveOut, feeOut := next.legs(direction)

	trade, err := CurveFor(next.CurveType).Compute(amountIn, *reserveIn, *reserveOut)
	if err != nil {
		return SettlementSummary{}, err
	}

	newReserveIn, err := wide.AddUint64(*reserveIn, amountIn)
	if err != nil {
		return SettlementSummary{}, err
	}
	if trade.AmountOut > *reserveOut {
		return SettlementSummary{}, ErrInsufficientReserves
	}
	newReserveOut, err := wide.SubUint64(*reserveOut, trade.AmountOut)
	if err != nil {
		return SettlementSummary{}, err
	}
	newFee, err := wide.AddUint64(*feeOut, trade.Fee)
	if err != nil {
		return SettlementSummary{}, err
	}
	*reserveIn, *reserveOut, *feeOut = newReserveIn, newReserveOut, newFee

	summary := SettlementSummary{
		Direction:  direction,
		AmountIn:   amountIn,
		AmountOut:  trade.AmountOut,
		Fee:        trade.Fee,
		OrderCount: next.Batch.OrderCount,
		BatchID:    next.Batch.BatchID,
	}
	if err := next.Batch.reset(slot); err != nil {
		return SettlementSummary{}, err
	}
	summary.NewBatchID = next.Batch.BatchID

	*p = next
	return summary, nil
}
