package core

import (
	"fmt"

	"github.com/Rhymond/go-money"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "USD"

// IsSupportedCurrency reports whether the ISO code is known and uses two
// decimal places, matching how Money stores amounts.
func IsSupportedCurrency(code string) bool {
	cur := money.GetCurrency(code)
	return cur != nil && cur.Fraction == 2
}

// FormatMoney renders the amount in the given currency, e.g. "$1,234.56".
func FormatMoney(m Money, currency string) string {
	if !IsSupportedCurrency(currency) {
		currency = DefaultCurrency
	}
	return money.New(m.Cents, currency).Display()
}

// FormatDate renders a calendar date as "Jan 2, 2006".
func FormatDate(d Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("Jan 2, 2006")
}

// FormatPercent renders a percentage with one decimal, e.g. "42.5%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
