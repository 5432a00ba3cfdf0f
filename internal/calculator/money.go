package calculator

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// RoundCents rounds a currency amount half away from zero to two decimals.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// SumCents adds amounts in decimal to avoid drift over long histories.
func SumCents(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(2).InexactFloat64()
}

// FormatMoney renders an amount with thousands separators and two decimals,
// prefixed by the currency symbol.
func FormatMoney(currency string, v float64) string {
	v = RoundCents(v)
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	s := humanize.FormatFloat("#,###.##", v)
	if currency == "" {
		return sign + s
	}
	return sign + currency + " " + s
}

// FormatSigned is FormatMoney with an explicit plus sign on gains.
func FormatSigned(currency string, v float64) string {
	s := FormatMoney(currency, v)
	if RoundCents(v) > 0 {
		return "+" + s
	}
	return s
}
