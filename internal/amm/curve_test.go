package amm

import (
	"errors"
	"math"
	"testing"

	"github.com/holiman/uint256"
)

func TestSmallTradeHasTinyFee(t *testing.T) {
	actual, fee, err := ComputeRationalTrade(1_000, 1_000_000, 1_000_000)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if fee >= 5 {
		t.Fatalf("fee should be tiny for small trades, got %d", fee)
	}
	if actual+fee != 1_000 {
		t.Fatalf("actual + fee should equal theoretical 1000, got %d + %d", actual, fee)
	}
}

func TestModerateTradeFeeRatioGrows(t *testing.T) {
	actual, fee, err := ComputeRationalTrade(500_000, 1_000_000, 1_000_000)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// r = 0.25, s(r) = 1/17
	if actual != 470_588 || fee != 29_412 {
		t.Fatalf("unexpected trade: out=%d fee=%d", actual, fee)
	}
}

func TestLargeTradeFeeDominates(t *testing.T) {
	// r = 2.5 puts s(r) above one half.
	actual, fee, err := ComputeRationalTrade(5_000_000, 1_000_000, 1_000_000)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if fee <= actual {
		t.Fatalf("fee should dominate for large trades: out=%d fee=%d", actual, fee)
	}
	if actual > 1_000_000 {
		t.Fatalf("output %d exceeds reserve", actual)
	}
}

func TestZeroInputIdentity(t *testing.T) {
	reserves := [][2]uint64{{0, 0}, {0, 10}, {10, 0}, {1, 1}, {math.MaxUint64, math.MaxUint64}}
	for _, r := range reserves {
		actual, fee, err := ComputeRationalTrade(0, r[0], r[1])
		if err != nil || actual != 0 || fee != 0 {
			t.Fatalf("zero input against %v: out=%d fee=%d err=%v", r, actual, fee, err)
		}
	}
}

func TestEmptyReserves(t *testing.T) {
	if _, _, err := ComputeRationalTrade(10, 0, 100); !errors.Is(err, ErrEmptyReserves) {
		t.Fatalf("expected ErrEmptyReserves, got %v", err)
	}
	if _, _, err := ComputeRationalTrade(10, 100, 0); !errors.Is(err, ErrEmptyReserves) {
		t.Fatalf("expected ErrEmptyReserves, got %v", err)
	}
}

func TestRationalInvariantsAcrossExtremes(t *testing.T) {
	values := []uint64{1, 2, 3, 7, 1_000, 999_983, 1 << 32, 1<<63 - 1, math.MaxUint64}
	for _, in := range values {
		for _, rIn := range values {
			for _, rOut := range values {
				terms, err := rationalTerms(in, rIn, rOut)
				if err != nil {
					t.Fatalf("terms(%d, %d, %d): %v", in, rIn, rOut, err)
				}
				sum := new(uint256.Int).Add(terms.actualOut, terms.fee)
				if !sum.Eq(terms.theoretical) {
					t.Fatalf("actual + fee != theoretical for (%d, %d, %d)", in, rIn, rOut)
				}
				if terms.actualOut.Gt(terms.theoretical) {
					t.Fatalf("actual above theoretical for (%d, %d, %d)", in, rIn, rOut)
				}
				if terms.actualOut.Gt(uint256.NewInt(rOut)) {
					t.Fatalf("actual above reserve for (%d, %d, %d)", in, rIn, rOut)
				}

				actual, fee, err := ComputeRationalTrade(in, rIn, rOut)
				if terms.theoretical.IsUint64() {
					if err != nil {
						t.Fatalf("compute(%d, %d, %d): %v", in, rIn, rOut, err)
					}
					if actual != terms.actualOut.Uint64() || fee != terms.fee.Uint64() {
						t.Fatalf("narrowed values differ for (%d, %d, %d)", in, rIn, rOut)
					}
				} else if terms.fee.IsUint64() && terms.actualOut.IsUint64() {
					if err != nil {
						t.Fatalf("compute(%d, %d, %d): %v", in, rIn, rOut, err)
					}
				} else if !errors.Is(err, ErrMathOverflow) {
					t.Fatalf("expected overflow for (%d, %d, %d), got %v", in, rIn, rOut, err)
				}
			}
		}
	}
}

func TestMonotonicDegradation(t *testing.T) {
	const reserve = 1_000_000
	amounts := []uint64{10_000, 50_000, 100_000, 250_000, 500_000, 1_000_000, 2_000_000, 5_000_000, 50_000_000}

	prevNum, prevDen := uint64(0), uint64(1)
	for _, amount := range amounts {
		actual, fee, err := ComputeRationalTrade(amount, reserve, reserve)
		if err != nil {
			t.Fatalf("compute %d: %v", amount, err)
		}
		theoretical := actual + fee
		// fee/theoretical > prevNum/prevDen
		lhs := new(uint256.Int).Mul(uint256.NewInt(fee), uint256.NewInt(prevDen))
		rhs := new(uint256.Int).Mul(uint256.NewInt(prevNum), uint256.NewInt(theoretical))
		if !lhs.Gt(rhs) {
			t.Fatalf("fee ratio did not increase at amount %d: %d/%d after %d/%d", amount, fee, theoretical, prevNum, prevDen)
		}
		prevNum, prevDen = fee, theoretical
	}
	if prevNum*100 < prevDen*99 {
		t.Fatalf("fee ratio should approach 1 for huge trades, got %d/%d", prevNum, prevDen)
	}
}

func TestCurveForExponentialIsUnsupported(t *testing.T) {
	curve := CurveFor(Exponential)
	if curve.Type() != Exponential {
		t.Fatalf("unexpected curve type %s", curve.Type())
	}
	if _, err := curve.Compute(10, 100, 100); !errors.Is(err, ErrUnsupportedCurve) {
		t.Fatalf("expected ErrUnsupportedCurve, got %v", err)
	}
	if _, err := CurveFor(CurveType(9)).Compute(10, 100, 100); !errors.Is(err, ErrUnsupportedCurve) {
		t.Fatalf("expected ErrUnsupportedCurve for unknown curve, got %v", err)
	}
}
