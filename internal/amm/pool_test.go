package amm

import (
	"errors"
	"math"
	"testing"
)

func TestLiquidity(t *testing.T) {
	pool := NewPool(Rational)
	if err := pool.AddLiquidity(1_000, 2_000); err != nil {
		t.Fatalf("add liquidity: %v", err)
	}
	if err := pool.AddLiquidity(0, 500); err != nil {
		t.Fatalf("add one-sided liquidity: %v", err)
	}
	if pool.ReserveA != 1_000 || pool.ReserveB != 2_500 {
		t.Fatalf("unexpected reserves: %d/%d", pool.ReserveA, pool.ReserveB)
	}

	if err := pool.RemoveLiquidity(400, 500); err != nil {
		t.Fatalf("remove liquidity: %v", err)
	}
	if pool.ReserveA != 600 || pool.ReserveB != 2_000 {
		t.Fatalf("unexpected reserves: %d/%d", pool.ReserveA, pool.ReserveB)
	}
}

func TestLiquidityRejections(t *testing.T) {
	pool := NewPool(Rational)
	pool.ReserveA, pool.ReserveB = math.MaxUint64-1, 10
	before := pool

	if err := pool.AddLiquidity(0, 0); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
	if err := pool.AddLiquidity(2, 1); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected ErrMathOverflow, got %v", err)
	}
	if err := pool.RemoveLiquidity(0, 0); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
	if err := pool.RemoveLiquidity(1, 11); !errors.Is(err, ErrInsufficientReserves) {
		t.Fatalf("expected ErrInsufficientReserves, got %v", err)
	}
	if pool != before {
		t.Fatalf("pool mutated by rejected liquidity ops: %+v", pool)
	}
}

func TestQuoteDoesNotMutate(t *testing.T) {
	pool := NewPool(Rational)
	pool.ReserveA, pool.ReserveB = 1_000_000, 2_000_000
	before := pool

	trade, err := pool.Quote(BForA, 1_000)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	actual, fee, _ := ComputeRationalTrade(1_000, 2_000_000, 1_000_000)
	if trade.AmountOut != actual || trade.Fee != fee {
		t.Fatalf("quote %+v does not match curve (%d, %d)", trade, actual, fee)
	}
	if pool != before {
		t.Fatalf("quote mutated the pool")
	}
	if _, err := pool.Quote(Direction(3), 1); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
}

func TestPoolValidate(t *testing.T) {
	pool := NewPool(Exponential)
	if err := pool.Validate(); err != nil {
		t.Fatalf("exponential pools are storable: %v", err)
	}
	pool.CurveType = CurveType(7)
	if err := pool.Validate(); !errors.Is(err, ErrUnsupportedCurve) {
		t.Fatalf("expected ErrUnsupportedCurve, got %v", err)
	}
}

func TestParseHelpers(t *testing.T) {
	if d, err := ParseDirection("A2B"); err != nil || d != AForB {
		t.Fatalf("ParseDirection(A2B) = %v, %v", d, err)
	}
	if d, err := ParseDirection("b_for_a"); err != nil || d != BForA {
		t.Fatalf("ParseDirection(b_for_a) = %v, %v", d, err)
	}
	if _, err := ParseDirection("sideways"); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
	if c, err := ParseCurveType(""); err != nil || c != Rational {
		t.Fatalf("ParseCurveType(\"\") = %v, %v", c, err)
	}
	if c, err := ParseCurveType("Exponential"); err != nil || c != Exponential {
		t.Fatalf("ParseCurveType(Exponential) = %v, %v", c, err)
	}
	if _, err := ParseCurveType("cubic"); !errors.Is(err, ErrUnsupportedCurve) {
		t.Fatalf("expected ErrUnsupportedCurve, got %v", err)
	}
}

func TestErrorKind(t *testing.T) {
	if ErrorKind(nil) != "" {
		t.Fatalf("nil should map to empty kind")
	}
	if got := ErrorKind(ErrMixedBatchDirections); got != "mixed_batch_directions" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := ErrorKind(errors.New("boom")); got != "internal" {
		t.Fatalf("unexpected kind %q", got)
	}
	_, err := ParseDirection("x")
	if got := ErrorKind(err); got != "invalid_direction" {
		t.Fatalf("wrapped errors should keep their kind, got %q", got)
	}
}
