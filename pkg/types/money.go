package types

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Dollars renders cents as "$X.XX".
func Dollars(cents int64) string {
	return "$" + decimal.NewFromInt(cents).Div(hundred).StringFixed(2)
}

// CentsToDollars converts cents to a float dollar amount rounded to 2 places.
func CentsToDollars(cents int64) float64 {
	f, _ := decimal.NewFromInt(cents).Div(hundred).Round(2).Float64()
	return f
}

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Percent returns part/whole*100 rounded to places, or 0 when whole is zero.
func Percent(part, whole float64, places int32) float64 {
	if whole == 0 {
		return 0
	}
	return Round(part/whole*100, places)
}

// PercentChange returns (current-previous)/previous*100 rounded to places, or 0 when previous is zero.
func PercentChange(current, previous float64, places int32) float64 {
	if previous == 0 {
		return 0
	}
	return Round((current-previous)/previous*100, places)
}
