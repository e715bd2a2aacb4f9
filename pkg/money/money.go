// Package money centralizes monetary arithmetic. Every figure the engine
// persists is rounded to two fractional digits at the point it is computed,
// never deferred to a final pass.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to two fractional digits.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent applies rate (expressed as a percentage, e.g. 12.5) to base and
// rounds the result.
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	return Round2(base.Mul(rate).Div(hundred))
}

// Share returns the percentage of whole represented by part, rounded to two
// digits. Returns zero when whole is zero. Display figure only; amounts that
// are persisted must go through Prorate so the rounded percent never feeds
// arithmetic.
func Share(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return Round2(part.Mul(hundred).Div(whole))
}

// Prorate returns the part/whole slice of total, rounding once at the end so
// the sum of slices stays within one cent per slice of the total. Returns
// zero when whole is zero.
func Prorate(total, part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return Round2(total.Mul(part).Div(whole))
}

// FromFloat converts a caller-supplied float into a rounded decimal.
func FromFloat(v float64) decimal.Decimal {
	return Round2(decimal.NewFromFloat(v))
}
