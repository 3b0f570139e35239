package output

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money formats amount in the given ISO currency, using the currency's symbol
// and separators, e.g. "$20.00" for USD or "R$100,00" for BRL. Unknown codes
// fall back to "<amount> <code>" with two decimals.
func Money(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	cur := money.GetCurrency(code)
	if cur == nil {
		if code == "" {
			return amount.StringFixed(2)
		}
		return amount.StringFixed(2) + " " + code
	}

	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}
