// Package money converts and formats wallet amounts.
package money

import (
	"fmt"
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale matches the dashboard's en-IN formatting.
var DefaultLocale = language.MustParse("en-IN")

// ParseCurrency resolves an ISO 4217 code such as "INR".
func ParseCurrency(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("unknown currency %q: %w", code, err)
	}
	return unit, nil
}

// MinorUnits converts a major-unit amount to the currency's smallest unit,
// e.g. rupees to paise.
func MinorUnits(amount float64, unit currency.Unit) int64 {
	scale, _ := currency.Standard.Rounding(unit)
	return int64(math.Round(amount * math.Pow10(scale)))
}

// Format renders amount with the currency symbol for the given locale.
func Format(tag language.Tag, unit currency.Unit, amount float64) string {
	return message.NewPrinter(tag).Sprint(currency.Symbol(unit.Amount(amount)))
}
