package output

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestNewStyles(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)
	assert.True(t, styles.output != nil)
}

func TestStylesKeepText(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	tests := []struct {
		name   string
		render func(string) string
		text   string
	}{
		{"Success", styles.Success, "saved"},
		{"Error", styles.Error, "cannot save"},
		{"FilePath", styles.FilePath, "/data/ledger_10_2026.xlsx"},
		{"Code", styles.Code, "P-100"},
		{"Amount", styles.Amount, "R$100,00"},
		{"Keyword", styles.Keyword, "Totals"},
		{"Dim", styles.Dim, "3ms"},
		{"Warning", styles.Warning, "250ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.render(tt.text), tt.text)
		})
	}
}

func TestStylesPlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	// A bytes.Buffer is never a color terminal.
	assert.Equal(t, "plain", styles.Dim("plain"))
}

func TestMoney(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		code   string
		want   string
	}{
		{name: "dollars", amount: "20", code: "USD", want: "$20.00"},
		{name: "rounds to cents", amount: "1.005", code: "USD", want: "$1.01"},
		{name: "thousands", amount: "1234.5", code: "usd", want: "$1,234.50"},
		{name: "unknown code", amount: "3.5", code: "XYZ1", want: "3.50 XYZ1"},
		{name: "no code", amount: "3.5", code: "", want: "3.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Money(decimal.RequireFromString(tt.amount), tt.code)
			assert.Equal(t, tt.want, got)
		})
	}
}
