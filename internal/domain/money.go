package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToCents rounds d half away from zero to whole cents.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromCents converts an integer cent amount back to a decimal.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
