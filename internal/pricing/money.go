package pricing

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// RoundToIncrement rounds x to the nearest multiple of inc dollars, half
// away from zero.
func RoundToIncrement(x float64, inc int64) int64 {
	if inc <= 0 {
		inc = 1
	}
	return int64(math.Round(x/float64(inc))) * inc
}

// USD formats whole dollars with thousands separators: USD(10550) is
// "$10,550".
func USD(amount int64) string {
	return usd.Sprintf("$%d", amount)
}

// USDFloat formats fractional dollars: USDFloat(4747.5) is "$4,747.50".
func USDFloat(amount float64) string {
	return usd.Sprintf("$%.2f", amount)
}
