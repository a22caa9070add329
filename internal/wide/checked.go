// Package wide provides checked arithmetic over 256-bit unsigned and 128-bit
// signed integers. Every helper reports range exhaustion as ErrOverflow
// instead of wrapping.
package wide

import (
	"errors"
	"math/bits"

	"github.com/holiman/uint256"
)

// ErrOverflow is returned when a checked operation leaves its target range.
var ErrOverflow = errors.New("math overflow during computation")

// U64 widens v into a new 256-bit value.
func U64(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// Add returns x + y.
func Add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Sub returns x - y.
func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Mul returns x * y.
func Mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Div returns x / y truncated. A zero divisor is reported as ErrOverflow.
func Div(x, y *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		return nil, ErrOverflow
	}
	return new(uint256.Int).Div(x, y), nil
}

// ToUint64 narrows x. Values above math.MaxUint64, including negative
// two's-complement values, fail.
func ToUint64(x *uint256.Int) (uint64, error) {
	if !x.IsUint64() {
		return 0, ErrOverflow
	}
	return x.Uint64(), nil
}

// AddUint64 returns a + b.
func AddUint64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// SubUint64 returns a - b.
func SubUint64(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrOverflow
	}
	return diff, nil
}

// IncUint32 returns v + 1.
func IncUint32(v uint32) (uint32, error) {
	if v == ^uint32(0) {
		return 0, ErrOverflow
	}
	return v + 1, nil
}
