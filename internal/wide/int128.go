package wide

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Signed values are stored as 256-bit two's complement and kept inside the
// signed 128-bit range.
var (
	maxInt128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 127), uint256.NewInt(1))
	minInt128 = new(uint256.Int).Neg(new(uint256.Int).Lsh(uint256.NewInt(1), 127))

	maxInt128Big = maxInt128.ToBig()
	minInt128Big = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// MaxInt128 returns a copy of the largest signed 128-bit value.
func MaxInt128() *uint256.Int {
	return maxInt128.Clone()
}

// MinInt128 returns a copy of the smallest signed 128-bit value.
func MinInt128() *uint256.Int {
	return minInt128.Clone()
}

// InInt128 reports whether x, read as a signed value, fits in 128 bits.
func InInt128(x *uint256.Int) bool {
	return !x.Sgt(maxInt128) && !x.Slt(minInt128)
}

// AddInt128 returns x + y as signed 128-bit values.
func AddInt128(x, y *uint256.Int) (*uint256.Int, error) {
	if !InInt128(x) || !InInt128(y) {
		return nil, ErrOverflow
	}
	// Both operands are far from the 256-bit boundary, so the wrapped sum is exact.
	z := new(uint256.Int).Add(x, y)
	if !InInt128(z) {
		return nil, ErrOverflow
	}
	return z, nil
}

// FormatInt128 renders x as a signed base-10 string.
func FormatInt128(x *uint256.Int) string {
	if x.Sign() < 0 {
		return "-" + new(uint256.Int).Neg(x).ToBig().String()
	}
	return x.ToBig().String()
}

// ParseInt128 parses a signed base-10 string into the 128-bit range.
// An empty string is zero.
func ParseInt128(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	parsed, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", s)
	}
	if parsed.Cmp(maxInt128Big) > 0 || parsed.Cmp(minInt128Big) < 0 {
		return nil, ErrOverflow
	}

	abs, overflow := uint256.FromBig(new(big.Int).Abs(parsed))
	if overflow {
		return nil, ErrOverflow
	}
	if parsed.Sign() < 0 {
		abs.Neg(abs)
	}
	return abs, nil
}
