// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Parsing and the JSON codec go through
// shopspring/decimal so that form input and stored values round the same way.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmount keeps cents inside int64.
var maxAmount = decimal.New(1<<63-1, -2)

// ParseAmount converts a user-entered decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up to two decimal places. Signs, zero and non-numeric input are
// rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> {1234}, nil
//	ParseAmount("12,34")  -> {1234}, nil
//	ParseAmount("12.345") -> {1235}, nil
//	ParseAmount("0.001")  -> {}, ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.GreaterThan(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	m := moneyFromDecimal(d)
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// NewMoney builds Money from major units, e.g. NewMoney(12.5) is 12.50.
func NewMoney(amount float64) Money {
	return moneyFromDecimal(decimal.NewFromFloat(amount))
}

func moneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add returns the sum of both amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// String renders the amount with two decimals and no currency, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float returns the amount in major units as a float64 for display purposes.
// Use Cents for calculations.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}
