package input

import (
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/importledger/ledger"
)

var now = time.Date(2026, time.October, 17, 15, 30, 0, 0, time.UTC)

func TestRequired(t *testing.T) {
	v, err := Required("client", "  Acme  ")
	assert.NoError(t, err)
	assert.Equal(t, "Acme", v)

	_, err = Required("client", "   ")
	var fe *FieldError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, "client", fe.Field)
	assert.Equal(t, "client: is required", err.Error())
}

func TestQuantity(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr string
	}{
		{value: "10", want: 10},
		{value: " 3 ", want: 3},
		{value: "2.0", want: 2},
		{value: "0", wantErr: "must be greater than zero"},
		{value: "-4", wantErr: "must be greater than zero"},
		{value: "1.5", wantErr: "must be a whole number"},
		{value: "ten", wantErr: "must be a number"},
		{value: "", wantErr: "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := Quantity("quantity", tt.value)
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		value   string
		want    string
		wantErr bool
	}{
		{value: "2.00", want: "2"},
		{value: "2,50", want: "2.5"},
		{value: "0", want: "0"},
		{value: "-1", wantErr: true},
		{value: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := Amount("unit price", tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDate(t *testing.T) {
	got, err := Date("date", "", now)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC), got)

	got, err = Date("date", "2026-10-03", now)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.October, 3, 0, 0, 0, 0, time.UTC), got)

	_, err = Date("date", "03/10/2026", now)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `"03/10/2026"`)
}

func TestParseProfitMode(t *testing.T) {
	mode, err := ParseProfitMode("")
	assert.NoError(t, err)
	assert.Equal(t, ProfitPercent, mode)

	mode, err = ParseProfitMode("Per-Unit")
	assert.NoError(t, err)
	assert.Equal(t, ProfitPerUnit, mode)

	_, err = ParseProfitMode("margin")
	assert.Error(t, err)
}

func validEntry() Entry {
	return Entry{
		Date:      "2026-10-03",
		Client:    "Acme",
		Code:      "P-100",
		Store:     "Main",
		Quantity:  "10",
		Name:      "Widget",
		UnitPrice: "2.00",
		Profit:    "20",
	}
}

func TestEntryParse(t *testing.T) {
	p, err := validEntry().Parse(now)
	assert.NoError(t, err)
	assert.Equal(t, "Acme", p.Client)
	assert.Equal(t, "P-100", p.Code)
	assert.Equal(t, 10, p.Quantity)
	assert.Equal(t, "Widget", p.Name)
	assert.True(t, p.UnitPrice.Equal(decimal.NewFromInt(2)))

	pct, ok := p.Profit.(ledger.Percentage)
	assert.True(t, ok, "expected Percentage, got %T", p.Profit)
	assert.True(t, pct.Value.Equal(decimal.NewFromInt(20)))
}

func TestEntryParsePerUnit(t *testing.T) {
	e := validEntry()
	e.ProfitMode = "per-unit"
	e.Profit = "2"

	p, err := e.Parse(now)
	assert.NoError(t, err)

	percent, err := p.Profit.Percent(p.Quantity, p.UnitPrice, decimal.NewFromInt(5))
	assert.NoError(t, err)
	assert.Equal(t, "20", percent.String())
}

func TestEntryParseNegativeProfit(t *testing.T) {
	e := validEntry()
	e.Profit = "-5"

	p, err := e.Parse(now)
	assert.NoError(t, err)
	pct, ok := p.Profit.(ledger.Percentage)
	assert.True(t, ok)
	assert.Equal(t, "-5", pct.Value.String())

	e.ProfitMode = "per-unit"
	_, err = e.Parse(now)
	var fe *FieldError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, "profit", fe.Field)
	assert.Equal(t, "must not be negative", fe.Reason)
}

func TestEntryParseJoinsErrors(t *testing.T) {
	e := Entry{Quantity: "0", UnitPrice: "-2", Profit: "x", ProfitMode: "margin"}

	_, err := e.Parse(now)
	assert.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	assert.True(t, ok)

	fields := map[string]bool{}
	for _, e := range joined.Unwrap() {
		var fe *FieldError
		assert.True(t, errors.As(e, &fe))
		fields[fe.Field] = true
	}
	for _, f := range []string{"client", "code", "store", "quantity", "product name", "unit price", "profit mode", "profit"} {
		assert.True(t, fields[f], "missing error for %s", f)
	}
	assert.False(t, fields["date"])
}

func TestRate(t *testing.T) {
	r, err := Rate("7.5")
	assert.NoError(t, err)
	assert.Equal(t, "7.5", r.String())

	_, err = Rate("abc")
	var ire *ledger.InvalidRateError
	assert.True(t, errors.As(err, &ire))
}
