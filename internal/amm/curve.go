package amm

import (
	"github.com/holiman/uint256"

	"landauSwap/internal/wide"
)

// Trade is the priced outcome of one netted inflow.
type Trade struct {
	AmountOut uint64
	Fee       uint64
}

// Curve prices an inflow against a (reserveIn, reserveOut) pair.
type Curve interface {
	Type() CurveType
	Compute(amountIn, reserveIn, reserveOut uint64) (Trade, error)
}

// CurveFor returns the curve implementation for t. Curves without an
// algorithm fail every Compute call with ErrUnsupportedCurve.
func CurveFor(t CurveType) Curve {
	if t == Rational {
		return RationalCurve{}
	}
	return unsupportedCurve{curveType: t}
}

// RationalCurve scales the frictionless output by 1 - s(r) with
// r = amountIn / (2 * reserveIn) and s(r) = r^2 / (1 + r^2).
type RationalCurve struct{}

func (RationalCurve) Type() CurveType { return Rational }

func (RationalCurve) Compute(amountIn, reserveIn, reserveOut uint64) (Trade, error) {
	out, fee, err := ComputeRationalTrade(amountIn, reserveIn, reserveOut)
	if err != nil {
		return Trade{}, err
	}
	return Trade{AmountOut: out, Fee: fee}, nil
}

type unsupportedCurve struct {
	curveType CurveType
}

func (c unsupportedCurve) Type() CurveType { return c.curveType }

func (unsupportedCurve) Compute(uint64, uint64, uint64) (Trade, error) {
	return Trade{}, ErrUnsupportedCurve
}

// ComputeRationalTrade returns the executed output and the fee for amountIn.
// A zero input yields (0, 0) whatever the reserves.
func ComputeRationalTrade(amountIn, reserveIn, reserveOut uint64) (uint64, uint64, error) {
	terms, err := rationalTerms(amountIn, reserveIn, reserveOut)
	if err != nil {
		return 0, 0, err
	}
	actualOut, err := wide.ToUint64(terms.actualOut)
	if err != nil {
		return 0, 0, err
	}
	fee, err := wide.ToUint64(terms.fee)
	if err != nil {
		return 0, 0, err
	}
	return actualOut, fee, nil
}

// rationalResult keeps the wide values before narrowing;
// actualOut + fee == theoretical exactly.
type rationalResult struct {
	actualOut   *uint256.Int
	theoretical *uint256.Int
	fee         *uint256.Int
}

// rationalTerms evaluates
//
//	actual      = amountIn * reserveOut * 4 * reserveIn / (amountIn^2 + 4 * reserveIn^2)
//	theoretical = amountIn * reserveOut / reserveIn
//	fee         = theoretical - actual
//
// with truncating division.
func rationalTerms(amountIn, reserveIn, reserveOut uint64) (rationalResult, error) {
	if amountIn == 0 {
		return rationalResult{
			actualOut:   new(uint256.Int),
			theoretical: new(uint256.Int),
			fee:         new(uint256.Int),
		}, nil
	}
	if reserveIn == 0 || reserveOut == 0 {
		return rationalResult{}, ErrEmptyReserves
	}

	in := wide.U64(amountIn)
	rIn := wide.U64(reserveIn)
	rOut := wide.U64(reserveOut)
	four := wide.U64(4)

	reserveInSq, err := wide.Mul(rIn, rIn)
	if err != nil {
		return rationalResult{}, err
	}
	fourReserveInSq, err := wide.Mul(reserveInSq, four)
	if err != nil {
		return rationalResult{}, err
	}
	amountInSq, err := wide.Mul(in, in)
	if err != nil {
		return rationalResult{}, err
	}
	denom, err := wide.Add(amountInSq, fourReserveInSq)
	if err != nil {
		return rationalResult{}, err
	}

	fourReserveIn, err := wide.Mul(rIn, four)
	if err != nil {
		return rationalResult{}, err
	}
	grossOut, err := wide.Mul(in, rOut)
	if err != nil {
		return rationalResult{}, err
	}
	numeratorActual, err := wide.Mul(grossOut, fourReserveIn)
	if err != nil {
		return rationalResult{}, err
	}

	actualOut, err := wide.Div(numeratorActual, denom)
	if err != nil {
		return rationalResult{}, err
	}
	theoretical, err := wide.Div(grossOut, rIn)
	if err != nil {
		return rationalResult{}, err
	}

	if actualOut.Gt(theoretical) || actualOut.Gt(rOut) {
		return rationalResult{}, ErrInsufficientReserves
	}

	fee, err := wide.Sub(theoretical, actualOut)
	if err != nil {
		return rationalResult{}, err
	}

	return rationalResult{
		actualOut:   actualOut,
		theoretical: theoretical,
		fee:         fee,
	}, nil
}
