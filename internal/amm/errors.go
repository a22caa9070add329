package amm

import (
	"errors"

	"landauSwap/internal/wide"
)

// Every failure aborts the operation with no partial effect.
var (
	ErrMathOverflow         = wide.ErrOverflow
	ErrEmptyReserves        = errors.New("pool reserves are empty")
	ErrEmptyBatch           = errors.New("batch has no orders to settle")
	ErrMixedBatchDirections = errors.New("batch contains mixed order directions")
	ErrUnsupportedCurve     = errors.New("unsupported curve type for this operation")
	ErrInsufficientReserves = errors.New("trade amount exceeds pool reserves")
	ErrInvalidDirection     = errors.New("invalid trade direction")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrMathOverflow, "math_overflow"},
	{ErrEmptyReserves, "empty_reserves"},
	{ErrEmptyBatch, "empty_batch"},
	{ErrMixedBatchDirections, "mixed_batch_directions"},
	{ErrUnsupportedCurve, "unsupported_curve"},
	{ErrInsufficientReserves, "insufficient_reserves"},
	{ErrInvalidDirection, "invalid_direction"},
}

// ErrorKind returns a stable label for err, "" for nil and "internal" for
// errors outside the pool taxonomy.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, entry := range errorKinds {
		if errors.Is(err, entry.err) {
			return entry.kind
		}
	}
	return "internal"
}
