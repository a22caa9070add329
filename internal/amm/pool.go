// Package amm implements the settlement core of a batched two-asset pool:
// order netting per batch window and pricing of the netted flow on a
// price-impact curve. All arithmetic is checked and every operation is
// all-or-nothing.
package amm

import "landauSwap/internal/wide"

// Pool is the reserve and fee state of one trading pair plus its open batch.
type Pool struct {
	ReserveA        uint64
	ReserveB        uint64
	AccumulatedFeeA uint64
	AccumulatedFeeB uint64
	CurveType       CurveType
	Batch           BatchTotals
}

// NewPool returns an empty pool priced by curve.
func NewPool(curve CurveType) Pool {
	return Pool{CurveType: curve}
}

// AddLiquidity credits both reserves. At least one amount must be non-zero.
func (p *Pool) AddLiquidity(amountA, amountB uint64) error {
	if amountA == 0 && amountB == 0 {
		return ErrInvalidDirection
	}
	reserveA, err := wide.AddUint64(p.ReserveA, amountA)
	if err != nil {
		return err
	}
	reserveB, err := wide.AddUint64(p.ReserveB, amountB)
	if err != nil {
		return err
	}
	p.ReserveA, p.ReserveB = reserveA, reserveB
	return nil
}

// RemoveLiquidity debits both reserves. Neither amount may exceed its reserve.
func (p *Pool) RemoveLiquidity(amountA, amountB uint64) error {
	if amountA == 0 && amountB == 0 {
		return ErrInvalidDirection
	}
	if amountA > p.ReserveA || amountB > p.ReserveB {
		return ErrInsufficientReserves
	}
	reserveA, err := wide.SubUint64(p.ReserveA, amountA)
	if err != nil {
		return err
	}
	reserveB, err := wide.SubUint64(p.ReserveB, amountB)
	if err != nil {
		return err
	}
	p.ReserveA, p.ReserveB = reserveA, reserveB
	return nil
}

// SubmitOrder folds an order into the open batch. Reserves are untouched.
func (p *Pool) SubmitOrder(direction Direction, amount uint64, slot uint64) error {
	return p.Batch.SubmitOrder(direction, amount, slot)
}

// Reserves returns the (in, out) reserves for a trade in direction.
func (p *Pool) Reserves(direction Direction) (uint64, uint64) {
	if direction == BForA {
		return p.ReserveB, p.ReserveA
	}
	return p.ReserveA, p.ReserveB
}

// Quote prices amount against the current reserves without mutating the pool.
func (p *Pool) Quote(direction Direction, amount uint64) (Trade, error) {
	if !direction.Valid() {
		return Trade{}, ErrInvalidDirection
	}
	reserveIn, reserveOut := p.Reserves(direction)
	return CurveFor(p.CurveType).Compute(amount, reserveIn, reserveOut)
}

// Validate checks a pool loaded from storage.
func (p *Pool) Validate() error {
	if p.CurveType != Rational && p.CurveType != Exponential {
		return ErrUnsupportedCurve
	}
	return p.Batch.Validate()
}

// legs points at the reserve paid into, the reserve paid out of and the fee
// counter of the paid-out asset.
func (p *Pool) legs(direction Direction) (reserveIn, reserveOut, feeOut *uint64) {
	if direction == BForA {
		return &p.ReserveB, &p.ReserveA, &p.AccumulatedFeeA
	}
	return &p.ReserveA, &p.ReserveB, &p.AccumulatedFeeB
}
