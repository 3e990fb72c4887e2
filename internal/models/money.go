package models

import "github.com/shopspring/decimal"

// AmountScale is the number of fractional digits kept for monetary values.
const AmountScale = 2

// RoundAmount rounds a monetary value half-up to AmountScale digits.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountScale)
}
