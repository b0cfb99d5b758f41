// Package units converts currency amounts into the dimensionless point scale
// used by regret arithmetic.
package units

import (
	"fmt"
	"math"

	"github.com/moneypit/moneypit/internal/coeffs"
)

// Converter maps currency to points with a single divisor.
type Converter struct {
	divisor float64
}

// NewConverter returns a Converter for divisor. The divisor is checked on
// every conversion, not here, so that a bad store fails at the point of use.
func NewConverter(divisor float64) Converter {
	return Converter{divisor: divisor}
}

// FromStore returns a Converter using the store's configured divisor.
func FromStore(st *coeffs.Store) Converter {
	return NewConverter(st.Divisor())
}

// PointsFor divides amount by the divisor and truncates toward zero. This is
// a deliberate scale compression, not rounding: 599 at divisor 20 is 29.
//
// Results beyond the int range saturate at math.MaxInt or math.MinInt, so
// points stay monotone in amount. A non-positive divisor returns an error
// wrapping coeffs.ErrConfig.
func (c Converter) PointsFor(amount float64) (int, error) {
	if c.divisor <= 0 || math.IsNaN(c.divisor) {
		return 0, fmt.Errorf("units: %w: conversion divisor must be positive, got %v",
			coeffs.ErrConfig, c.divisor)
	}
	q := math.Trunc(amount / c.divisor)
	switch {
	case math.IsNaN(q):
		return 0, fmt.Errorf("units: amount %v is not a number", amount)
	case q >= float64(math.MaxInt):
		return math.MaxInt, nil
	case q <= float64(math.MinInt):
		return math.MinInt, nil
	}
	return int(q), nil
}
