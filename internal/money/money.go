// Package money converts decimal amounts to the integer minor units a payment
// processor expects. Nothing else in the service converts amounts.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNegativeAmount is returned for amounts below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrSubMinorPrecision is returned when an amount carries fractions
	// smaller than the currency's minor unit.
	ErrSubMinorPrecision = errors.New("amount has precision below the minor unit")
)

// ToMinorUnits converts amount into minor units (paise, cents) for a currency
// with the given exponent. 1000.50 with exponent 2 becomes 100050.
func ToMinorUnits(amount decimal.Decimal, exponent int32) (int64, error) {
	if exponent < 0 {
		return 0, fmt.Errorf("invalid currency exponent %d", exponent)
	}
	if amount.IsNegative() {
		return 0, ErrNegativeAmount
	}

	scaled := amount.Shift(exponent)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%w: %s", ErrSubMinorPrecision, amount.String())
	}
	if scaled.GreaterThan(decimal.NewFromInt(maxMinorUnits)) {
		return 0, fmt.Errorf("amount %s out of range", amount.String())
	}

	return scaled.IntPart(), nil
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(units int64, exponent int32) decimal.Decimal {
	return decimal.NewFromInt(units).Shift(-exponent)
}

// Round rounds amount to the currency's minor unit, half away from zero.
func Round(amount decimal.Decimal, exponent int32) decimal.Decimal {
	return amount.Round(exponent)
}

const maxMinorUnits = 1<<53 - 1
