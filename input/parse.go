// Package input validates raw text typed by a user into the typed values the
// ledger works with. Each field is checked once, at the boundary, and every
// failure is reported as a FieldError naming the field.
package input

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/importledger/ledger"
)

// FieldError reports a single field that could not be parsed.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Reason, e.Value)
}

// Required returns the trimmed value, or an error when it is empty.
func Required(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", &FieldError{Field: field, Reason: "is required"}
	}
	return v, nil
}

// Decimal parses a decimal number. A comma is accepted as the decimal
// separator.
func Decimal(field, value string) (decimal.Decimal, error) {
	v, err := Required(field, value)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", "."))
	if err != nil {
		return decimal.Zero, &FieldError{Field: field, Value: value, Reason: "must be a number"}
	}
	return d, nil
}

// Amount parses a non-negative decimal number.
func Amount(field, value string) (decimal.Decimal, error) {
	d, err := Decimal(field, value)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, &FieldError{Field: field, Value: value, Reason: "must not be negative"}
	}
	return d, nil
}

// Quantity parses a positive whole number.
func Quantity(field, value string) (int, error) {
	d, err := Decimal(field, value)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, &FieldError{Field: field, Value: value, Reason: "must be a whole number"}
	}
	if !d.IsPositive() {
		return 0, &FieldError{Field: field, Value: value, Reason: "must be greater than zero"}
	}
	return int(d.IntPart()), nil
}

// Date parses a 2006-01-02 date. An empty value means the day of now.
func Date(field, value string, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	}
	t, err := time.ParseInLocation(ledger.DateLayout, v, now.Location())
	if err != nil {
		return time.Time{}, &FieldError{Field: field, Value: value, Reason: "must be a date like 2006-01-02"}
	}
	return t, nil
}

// ProfitMode selects how the profit field of an Entry is interpreted.
type ProfitMode string

const (
	// ProfitPercent reads the profit field as a percentage of the price.
	ProfitPercent ProfitMode = "percent"

	// ProfitPerUnit reads the profit field as a local-currency amount
	// earned per unit.
	ProfitPerUnit ProfitMode = "per-unit"
)

// ParseProfitMode accepts the mode names; an empty name means ProfitPercent.
func ParseProfitMode(value string) (ProfitMode, error) {
	switch ProfitMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ProfitPercent:
		return ProfitPercent, nil
	case ProfitPerUnit:
		return ProfitPerUnit, nil
	}
	return "", &FieldError{Field: "profit mode", Value: value, Reason: "must be percent or per-unit"}
}

// Entry is a transaction as typed by a user.
type Entry struct {
	Date       string
	Client     string
	Code       string
	Store      string
	Quantity   string
	Name       string
	UnitPrice  string
	Profit     string
	ProfitMode string
}

// Parsed is an Entry converted to ledger types.
type Parsed struct {
	Date      time.Time
	Client    string
	Code      string
	Store     string
	Quantity  int
	Name      string
	UnitPrice decimal.Decimal
	Profit    ledger.ProfitSpec
}

// Parse validates every field of e. All field errors are joined into the
// returned error.
func (e Entry) Parse(now time.Time) (Parsed, error) {
	var (
		p    Parsed
		errs []error
		err  error
	)

	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	p.Date, err = Date("date", e.Date, now)
	collect(err)
	p.Client, err = Required("client", e.Client)
	collect(err)
	p.Code, err = Required("code", e.Code)
	collect(err)
	p.Store, err = Required("store", e.Store)
	collect(err)
	p.Quantity, err = Quantity("quantity", e.Quantity)
	collect(err)
	p.Name, err = Required("product name", e.Name)
	collect(err)
	p.UnitPrice, err = Amount("unit price", e.UnitPrice)
	collect(err)

	mode, err := ParseProfitMode(e.ProfitMode)
	collect(err)
	profit, err := Profit("profit", e.Profit, mode)
	collect(err)
	if err == nil && mode != "" {
		switch mode {
		case ProfitPerUnit:
			p.Profit = ledger.PerUnit{AmountLocal: profit}
		default:
			p.Profit = ledger.Percentage{Value: profit}
		}
	}

	if len(errs) > 0 {
		return Parsed{}, errors.Join(errs...)
	}
	return p, nil
}

// Profit parses the profit field for mode. A percentage may be negative to
// record a loss; a per-unit amount may not.
func Profit(field, value string, mode ProfitMode) (decimal.Decimal, error) {
	if mode == ProfitPerUnit {
		return Amount(field, value)
	}
	return Decimal(field, value)
}

// Rate parses a conversion rate typed by a user.
func Rate(value string) (decimal.Decimal, error) {
	return ledger.ParseRate(value)
}
