// Package numeric holds decimal rounding helpers shared by the enrichment and
// scoring code. Rounding goes through shopspring/decimal so that values such as
// 12.35 round half-up as written instead of following their binary approximation.
package numeric

import "github.com/shopspring/decimal"

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return Round(v, 1)
}

// RoundHalf rounds v to the nearest multiple of 0.5.
func RoundHalf(v float64) float64 {
	two := decimal.NewFromInt(2)
	f, _ := decimal.NewFromFloat(v).Mul(two).Round(0).Div(two).Float64()
	return f
}

// Percent returns part/total*100 rounded to the given places, computed in decimal
// arithmetic. ok is false when total is zero.
func Percent(part, total int64, places int32) (value float64, ok bool) {
	if total == 0 {
		return 0, false
	}
	ratio := decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(places)
	value, _ = ratio.Float64()
	return value, true
}

// Ratio returns num/den*scale rounded to the given places. ok is false when den is zero.
func Ratio(num, den, scale float64, places int32) (value float64, ok bool) {
	if den == 0 {
		return 0, false
	}
	r := decimal.NewFromFloat(num).
		Mul(decimal.NewFromFloat(scale)).
		Div(decimal.NewFromFloat(den)).
		Round(places)
	value, _ = r.Float64()
	return value, true
}
