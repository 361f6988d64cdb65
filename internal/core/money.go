// Package core provides the expense domain model and its value helpers.
//
// This file contains functions for parsing monetary amounts typed by users
// and formatting them back for display.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest amount a single expense may carry.
const MaxAmount = 1e12

// ParseAmount converts a decimal string to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// surrounding whitespace. Signs, exponents, zero and anything that is not a
// plain decimal number are rejected with ErrInvalidAmount, as are values
// above MaxAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return 0, ErrInvalidAmount
		}
	}
	if s == "." {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() || d.GreaterThan(decimal.NewFromFloat(MaxAmount)) {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Float64()
	if !IsFiniteAmount(f) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// Sum adds amounts exactly in decimal space and returns the float result.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Float64()
	return f
}

// IsFiniteAmount reports whether a can be summed and encoded: not NaN and
// not infinite.
func IsFiniteAmount(a float64) bool {
	return !math.IsNaN(a) && !math.IsInf(a, 0)
}
