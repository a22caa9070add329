package amm

import (
	"fmt"
	"strings"
)

// Direction is the side of a submitted order.
type Direction uint8

const (
	// AForB pays asset A into the pool and receives asset B.
	AForB Direction = iota
	// BForA pays asset B into the pool and receives asset A.
	BForA
)

func (d Direction) String() string {
	switch d {
	case AForB:
		return "a_for_b"
	case BForA:
		return "b_for_a"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Valid reports whether d is one of the declared directions.
func (d Direction) Valid() bool {
	return d == AForB || d == BForA
}

// ParseDirection accepts "a_for_b"/"b_for_a" and the short forms "a2b"/"b2a".
func ParseDirection(input string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "a_for_b", "aforb", "a2b", "a-for-b":
		return AForB, nil
	case "b_for_a", "bfora", "b2a", "b-for-a":
		return BForA, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, input)
	}
}

// CurveType selects the price-impact curve of a pool.
type CurveType uint8

const (
	// Rational is the saturation curve s(r) = r^2 / (1 + r^2).
	Rational CurveType = iota
	// Exponential is declared for s(r) = 1 - exp(-r^2) but has no settlement algorithm.
	Exponential
)

func (c CurveType) String() string {
	switch c {
	case Rational:
		return "rational"
	case Exponential:
		return "exponential"
	default:
		return fmt.Sprintf("curve(%d)", uint8(c))
	}
}

// ParseCurveType parses a curve name. Declared but unimplemented curves
// parse successfully; settling against them fails later.
func ParseCurveType(input string) (CurveType, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "rational":
		return Rational, nil
	case "exponential":
		return Exponential, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCurve, input)
	}
}
