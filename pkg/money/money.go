// Package money converts between the numeric amounts the application works
// with and the fixed-point decimal text the store persists. The storage scale
// is 2 fractional digits; every storage boundary crossing applies exactly one
// Encode or Decode.
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept in storage.
const Scale = 2

var (
	ErrNotFinite   = errors.New("amount is not a finite number")
	ErrNotPositive = errors.New("amount must be positive")
)

// Encode renders a positive amount at storage scale, rounding half away from
// zero. Monetary fields in this system are constrained positive, so zero and
// negative values are rejected.
func Encode(amount float64) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", ErrNotFinite
	}
	if amount <= 0 {
		return "", ErrNotPositive
	}
	return decimal.NewFromFloat(amount).StringFixed(Scale), nil
}

// EncodeBound renders a comparison bound at storage scale. Range bounds are
// not constrained positive, so only finiteness is checked.
func EncodeBound(amount float64) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", ErrNotFinite
	}
	return decimal.NewFromFloat(amount).StringFixed(Scale), nil
}

// Decode parses a stored decimal string back into a numeric amount.
func Decode(stored string) (float64, error) {
	d, err := decimal.NewFromString(stored)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}
