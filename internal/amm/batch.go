package amm

import (
	"github.com/holiman/uint256"

	"landauSwap/internal/wide"
)

// BatchTotals holds the net order flow of the open batch window. The net
// deltas are signed values in the 128-bit range; the value type copies deeply.
type BatchTotals struct {
	BatchID         uint64
	NetDeltaA       uint256.Int
	NetDeltaB       uint256.Int
	OrderCount      uint32
	LastUpdatedSlot uint64
}

// Dirty reports whether at least one order has been folded into the batch.
func (b *BatchTotals) Dirty() bool {
	return b.OrderCount > 0
}

// SubmitOrder adds amount to the inflow counter of direction, bumps the
// order count and stamps slot. The batch is unchanged on error.
func (b *BatchTotals) SubmitOrder(direction Direction, amount uint64, slot uint64) error {
	if amount == 0 || !direction.Valid() {
		return ErrInvalidDirection
	}

	next := *b
	delta := &next.NetDeltaA
	if direction == BForA {
		delta = &next.NetDeltaB
	}

	sum, err := wide.AddInt128(delta, wide.U64(amount))
	if err != nil {
		return err
	}
	delta.Set(sum)

	count, err := wide.IncUint32(next.OrderCount)
	if err != nil {
		return err
	}
	next.OrderCount = count
	next.LastUpdatedSlot = slot

	*b = next
	return nil
}

// netFlow resolves the single direction a dirty batch must carry and the
// netted amount paid into the pool.
func (b *BatchTotals) netFlow() (Direction, uint64, error) {
	aIn := b.NetDeltaA.Sign() > 0
	bIn := b.NetDeltaB.Sign() > 0

	switch {
	case aIn && b.NetDeltaB.IsZero():
		amount, err := wide.ToUint64(&b.NetDeltaA)
		return AForB, amount, err
	case bIn && b.NetDeltaA.IsZero():
		amount, err := wide.ToUint64(&b.NetDeltaB)
		return BForA, amount, err
	default:
		return 0, 0, ErrMixedBatchDirections
	}
}

// reset clears the window and opens the next batch id.
func (b *BatchTotals) reset(slot uint64) error {
	id, err := wide.AddUint64(b.BatchID, 1)
	if err != nil {
		return err
	}
	*b = BatchTotals{
		BatchID:         id,
		LastUpdatedSlot: slot,
	}
	return nil
}

// Validate checks the invariants a stored batch must satisfy: deltas inside
// the signed 128-bit range, never negative, and zero while no order is held.
func (b *BatchTotals) Validate() error {
	for _, delta := range []*uint256.Int{&b.NetDeltaA, &b.NetDeltaB} {
		if !wide.InInt128(delta) {
			return ErrMathOverflow
		}
		if delta.Sign() < 0 {
			return ErrInvalidDirection
		}
	}
	if !b.Dirty() && (!b.NetDeltaA.IsZero() || !b.NetDeltaB.IsZero()) {
		return ErrEmptyBatch
	}
	return nil
}
