package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Transaction is one recorded purchase of an imported product. It is a pure
// value: every monetary figure other than the unit price and the profit
// percentage is derived on demand, and the local-currency figures take the
// conversion rate as an argument instead of reading any shared state.
type Transaction struct {
	Date             time.Time
	Client           string
	Code             string
	Store            string
	Quantity         int
	Name             string
	UnitPriceForeign decimal.Decimal
	ProfitPercent    decimal.Decimal
}

// NewTransaction builds a Transaction from all of its fields. Quantity must be
// positive and the unit price must not be negative; the profit percentage may
// be zero.
func NewTransaction(date time.Time, client, code, store string, quantity int, name string, unitPriceForeign, profitPercent decimal.Decimal) (Transaction, error) {
	t := Transaction{
		Date:             date,
		Client:           client,
		Code:             code,
		Store:            store,
		Quantity:         quantity,
		Name:             name,
		UnitPriceForeign: unitPriceForeign,
		ProfitPercent:    profitPercent,
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// Validate checks the structural invariants of a transaction.
func (t Transaction) Validate() error {
	if t.Quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrNonPositiveQuantity, t.Quantity)
	}
	if t.UnitPriceForeign.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrNegativePrice, t.UnitPriceForeign)
	}
	return nil
}

// TotalForeign returns quantity × unit price in the foreign currency.
func (t Transaction) TotalForeign() decimal.Decimal {
	return decimal.NewFromInt(int64(t.Quantity)).Mul(t.UnitPriceForeign)
}

// TotalLocal converts TotalForeign at the given rate.
func (t Transaction) TotalLocal(rate decimal.Decimal) decimal.Decimal {
	return t.TotalForeign().Mul(rate)
}

// UnitPriceLocal converts the unit price at the given rate.
func (t Transaction) UnitPriceLocal(rate decimal.Decimal) decimal.Decimal {
	return t.UnitPriceForeign.Mul(rate)
}

// ProfitForeign is the share of TotalForeign taken as profit.
func (t Transaction) ProfitForeign() decimal.Decimal {
	return t.TotalForeign().Mul(t.ProfitPercent).Div(hundred)
}

// ProfitLocal converts ProfitForeign at the given rate.
func (t Transaction) ProfitLocal(rate decimal.Decimal) decimal.Decimal {
	return t.ProfitForeign().Mul(rate)
}

// ProfitPerUnitLocal divides ProfitLocal by the quantity. A zero-value
// Transaction that bypassed NewTransaction has no units to divide by and
// yields ErrDivisionByZero.
func (t Transaction) ProfitPerUnitLocal(rate decimal.Decimal) (decimal.Decimal, error) {
	if t.Quantity == 0 {
		return decimal.Zero, ErrDivisionByZero
	}
	return t.ProfitLocal(rate).Div(decimal.NewFromInt(int64(t.Quantity))), nil
}
