// Package core provides amount parsing and handling utilities.
//
// This file contains the decimal amount type used by contributions and the
// parser applied to free-text answers.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a positive decimal contribution amount.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal value without validating it.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromString decodes a stored amount such as "12.5". Unlike
// ParseAmount it accepts the canonical decimal form only.
func AmountFromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("decode amount %q: %w", s, err)
	}
	return Amount{Decimal: d}, nil
}

// AmountFromFloat converts a float, e.g. a spreadsheet value, to an Amount.
func AmountFromFloat(f float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(f)}
}

// ParseAmount parses a user-supplied amount.
//
// It accepts both dot (12.50) and comma (12,50) decimal separators and
// surrounding whitespace. A comma is a decimal separator only when no dot
// is present and at most two digits follow it, so grouped input such as
// "1,000" is rejected rather than read as 1. Signs, exponents, thousands
// separators, zero and negative values are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.50") -> 12.5, nil
//	ParseAmount("12,50") -> 12.5, nil
//	ParseAmount("500")   -> 500, nil
//	ParseAmount("1,000") -> error
//	ParseAmount("-1")    -> error
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		whole, frac, _ := strings.Cut(s, ",")
		if strings.ContainsAny(whole, ".,") || strings.Contains(frac, ",") || len(frac) == 0 || len(frac) > 2 {
			return Amount{}, ErrInvalidAmount
		}
		s = whole + "." + frac
	}
	if strings.Count(s, ".") > 1 {
		return Amount{}, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return Amount{}, ErrInvalidAmount
		}
	}
	if strings.Trim(s, ".") == "" {
		return Amount{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	a := Amount{Decimal: d}
	if err := a.Validate(); err != nil {
		return Amount{}, err
	}
	return a, nil
}

func (a Amount) Validate() error {
	if !a.Decimal.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Float returns the value for numeric spreadsheet cells.
func (a Amount) Float() float64 {
	return a.Decimal.InexactFloat64()
}

// String renders the amount without trailing zeros, e.g. "500" or "12.5".
func (a Amount) String() string {
	return a.Decimal.String()
}
