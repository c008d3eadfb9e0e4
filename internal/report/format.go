package report

import (
	"fintrack/internal/core"
)

// FormatAmount renders a signed, currency-prefixed amount with two decimals.
// Amounts that do not parse are shown as received.
func FormatAmount(kind core.Kind, a core.Amount, currency string) string {
	d, err := a.Decimal()
	if err != nil {
		return kind.Sign() + currency + string(a)
	}
	return kind.Sign() + currency + d.StringFixed(2)
}

func FormatDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}
