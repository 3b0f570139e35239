package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is how transaction dates are written to the month file.
const DateLayout = "2006-01-02"

// Column positions of the month file.
const (
	ColDate = iota
	ColClient
	ColCode
	ColStore
	ColQuantity
	ColName
	ColUnitPriceForeign
	ColTotalForeign
	ColRate
	ColUnitPriceLocal
	ColTotalLocal
	ColProfitPercent
	ColProfitPerUnitLocal
	ColTotalProfitLocal

	columnCount
)

// Header is the first row of every month file.
var Header = []string{
	ColDate:               "Date",
	ColClient:             "Client",
	ColCode:               "Code",
	ColStore:              "Store",
	ColQuantity:           "Quantity",
	ColName:               "Product Name",
	ColUnitPriceForeign:   "Unit Price (Foreign)",
	ColTotalForeign:       "Total (Foreign)",
	ColRate:               "Conversion Rate",
	ColUnitPriceLocal:     "Unit Price (Local)",
	ColTotalLocal:         "Total (Local)",
	ColProfitPercent:      "Profit Percent",
	ColProfitPerUnitLocal: "Profit per Unit (Local)",
	ColTotalProfitLocal:   "Total Profit (Local)",
}

// encodeRow renders t as a file row at the given rate. Currency columns are
// fixed to two decimals, the rate and the profit percentage keep their exact
// value.
func encodeRow(t Transaction, rate decimal.Decimal) ([]any, error) {
	perUnit, err := t.ProfitPerUnitLocal(rate)
	if err != nil {
		return nil, err
	}

	row := make([]any, columnCount)
	row[ColDate] = t.Date.Format(DateLayout)
	row[ColClient] = t.Client
	row[ColCode] = t.Code
	row[ColStore] = t.Store
	row[ColQuantity] = t.Quantity
	row[ColName] = t.Name
	row[ColUnitPriceForeign] = t.UnitPriceForeign.StringFixed(2)
	row[ColTotalForeign] = t.TotalForeign().StringFixed(2)
	row[ColRate] = rate.String()
	row[ColUnitPriceLocal] = t.UnitPriceLocal(rate).StringFixed(2)
	row[ColTotalLocal] = t.TotalLocal(rate).StringFixed(2)
	row[ColProfitPercent] = t.ProfitPercent
	row[ColProfitPerUnitLocal] = perUnit.StringFixed(2)
	row[ColTotalProfitLocal] = t.ProfitLocal(rate).StringFixed(2)
	return row, nil
}

// decodeRow rebuilds a Transaction from the fixed columns of a file row.
// Derived columns are ignored; they are recomputed from the stored inputs.
func decodeRow(cells []string) (Transaction, error) {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	date, err := parseDate(cell(ColDate))
	if err != nil {
		return Transaction{}, err
	}

	quantity, err := parseQuantity(cell(ColQuantity))
	if err != nil {
		return Transaction{}, err
	}

	price, err := decimal.NewFromString(cell(ColUnitPriceForeign))
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid unit price %q: %w", cell(ColUnitPriceForeign), err)
	}

	percent := decimal.Zero
	if raw := cell(ColProfitPercent); raw != "" {
		percent, err = decimal.NewFromString(raw)
		if err != nil {
			return Transaction{}, fmt.Errorf("invalid profit percent %q: %w", raw, err)
		}
	}

	return NewTransaction(date, cell(ColClient), cell(ColCode), cell(ColStore), quantity, cell(ColName), price, percent)
}

// parseDate accepts a plain date or a date with a time of day, which is what
// spreadsheet editors tend to turn date cells into.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{DateLayout, "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// parseQuantity accepts integers, including ones a spreadsheet rendered with
// a zero fraction such as "10.0".
func parseQuantity(s string) (int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("invalid quantity %q: not a whole number", s)
	}
	return int(d.IntPart()), nil
}

// numericCell parses an aggregate column. ok is false for missing or
// non-numeric cells, which are skipped rather than failing the sum.
func numericCell(cells []string, i int) (decimal.Decimal, bool) {
	if i >= len(cells) {
		return decimal.Zero, false
	}
	raw := strings.TrimSpace(cells[i])
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
