package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ProfitSpec is how the user expressed a transaction's profit. Both variants
// resolve to the profit percentage stored on a Transaction.
type ProfitSpec interface {
	// Percent returns the profit as a percentage of the foreign total.
	Percent(quantity int, unitPriceForeign, rate decimal.Decimal) (decimal.Decimal, error)
}

// Percentage is a profit given directly as a percentage of the foreign total.
type Percentage struct {
	Value decimal.Decimal
}

// PerUnit is a profit given as an amount in local currency earned per unit.
type PerUnit struct {
	AmountLocal decimal.Decimal
}

var (
	_ ProfitSpec = Percentage{}
	_ ProfitSpec = PerUnit{}
)

// Percent returns the percentage unchanged.
func (p Percentage) Percent(int, decimal.Decimal, decimal.Decimal) (decimal.Decimal, error) {
	return p.Value, nil
}

// Percent converts the per-unit local profit into a percentage of the foreign
// total: (amount × quantity / rate) / (unit price × quantity) × 100.
func (p PerUnit) Percent(quantity int, unitPriceForeign, rate decimal.Decimal) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, ErrNonPositiveQuantity
	}
	if !rate.IsPositive() {
		return decimal.Zero, ErrNonPositiveRate
	}
	if unitPriceForeign.IsZero() {
		return decimal.Zero, errors.New("per-unit profit needs a non-zero unit price")
	}

	qty := decimal.NewFromInt(int64(quantity))
	profitForeign := p.AmountLocal.Mul(qty).Div(rate)
	totalForeign := unitPriceForeign.Mul(qty)
	return profitForeign.Div(totalForeign).Mul(hundred), nil
}
