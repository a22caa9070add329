package wide

import (
	"errors"
	"math"
	"testing"

	"github.com/holiman/uint256"
)

func TestMulOverflow(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	if _, err := Mul(max, U64(2)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}

	got, err := Mul(U64(math.MaxUint64), U64(math.MaxUint64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsUint64() {
		t.Fatalf("product should exceed 64 bits: %s", got)
	}
}

func TestSubUnderflow(t *testing.T) {
	if _, err := Sub(U64(1), U64(2)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	got, err := Sub(U64(5), U64(2))
	if err != nil || got.Uint64() != 3 {
		t.Fatalf("unexpected result: %v %v", got, err)
	}
}

func TestDivByZero(t *testing.T) {
	if _, err := Div(U64(10), U64(0)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	got, err := Div(U64(10), U64(3))
	if err != nil || got.Uint64() != 3 {
		t.Fatalf("unexpected result: %v %v", got, err)
	}
}

func TestToUint64(t *testing.T) {
	if _, err := ToUint64(new(uint256.Int).Lsh(U64(1), 64)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := ToUint64(new(uint256.Int).Neg(U64(1))); !errors.Is(err, ErrOverflow) {
		t.Fatalf("negative value should not narrow, got %v", err)
	}
	got, err := ToUint64(U64(math.MaxUint64))
	if err != nil || got != math.MaxUint64 {
		t.Fatalf("unexpected result: %d %v", got, err)
	}
}

func TestUint64Helpers(t *testing.T) {
	if _, err := AddUint64(math.MaxUint64, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected add overflow, got %v", err)
	}
	if _, err := SubUint64(0, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected sub overflow, got %v", err)
	}
	if _, err := IncUint32(math.MaxUint32); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected inc overflow, got %v", err)
	}
	if v, err := IncUint32(41); err != nil || v != 42 {
		t.Fatalf("unexpected inc result: %d %v", v, err)
	}
}

func TestAddInt128Bounds(t *testing.T) {
	if _, err := AddInt128(MaxInt128(), U64(1)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow above max, got %v", err)
	}
	if _, err := AddInt128(MinInt128(), new(uint256.Int).Neg(U64(1))); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow below min, got %v", err)
	}

	nearMax := new(uint256.Int).Sub(MaxInt128(), U64(math.MaxUint64))
	got, err := AddInt128(nearMax, U64(math.MaxUint64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Eq(MaxInt128()) {
		t.Fatalf("expected max int128, got %s", FormatInt128(got))
	}

	sum, err := AddInt128(new(uint256.Int).Neg(U64(7)), U64(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FormatInt128(sum) != "-4" {
		t.Fatalf("expected -4, got %s", FormatInt128(sum))
	}
}

func TestParseInt128(t *testing.T) {
	for _, input := range []string{"0", "42", "-42", "170141183460469231731687303715884105727", "-170141183460469231731687303715884105728"} {
		v, err := ParseInt128(input)
		if err != nil {
			t.Fatalf("parse %s: %v", input, err)
		}
		if FormatInt128(v) != input {
			t.Fatalf("format mismatch: %s != %s", FormatInt128(v), input)
		}
	}

	if _, err := ParseInt128("170141183460469231731687303715884105728"); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := ParseInt128("12abc"); err == nil {
		t.Fatalf("expected parse error")
	}
	if v, err := ParseInt128(""); err != nil || !v.IsZero() {
		t.Fatalf("empty string should parse as zero")
	}
}
