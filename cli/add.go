package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/importledger/input"
	"github.com/robinvdvleuten/importledger/ledger"
	"github.com/robinvdvleuten/importledger/output"
)

type AddCmd struct {
	Date     string `help:"Purchase date as YYYY-MM-DD (defaults to today)."`
	Client   string `help:"Client name."`
	Code     string `help:"Product code."`
	Store    string `help:"Store name."`
	Quantity string `help:"Number of units." short:"q"`
	Name     string `help:"Product name (reused from earlier entries for the same code when omitted)."`
	Price    string `help:"Unit price in foreign currency." short:"p"`
	Profit   string `help:"Profit, as a percentage or as a local amount per unit (see --mode)."`
	Mode     string `help:"How --profit is given." enum:"percent,per-unit" default:"percent"`
}

func (cmd *AddCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, finish := globals.startTelemetry(context.Background(), ctx.Stderr, "add")
	defer finish()

	s, err := globals.open(runCtx, ctx.Stderr)
	if err != nil {
		return fail(ctx.Stderr, globals.json(), "could not open the ledger", err)
	}

	entry := input.Entry{
		Date:       cmd.Date,
		Client:     cmd.Client,
		Code:       cmd.Code,
		Store:      cmd.Store,
		Quantity:   cmd.Quantity,
		Name:       cmd.Name,
		UnitPrice:  cmd.Price,
		Profit:     cmd.Profit,
		ProfitMode: cmd.Mode,
	}
	reuseName(&entry, s.ledger)

	if incomplete(entry) && isTerminal() && !globals.json() {
		if err := runEntryForm(&entry, s.ledger); err != nil {
			return fmt.Errorf("failed to read transaction: %w", err)
		}
	}

	ask := confirm
	if globals.json() {
		ask = declineAll
	}
	if err := keepStoredName(&entry, s.ledger, ask); err != nil {
		return fmt.Errorf("failed to read transaction: %w", err)
	}

	t, err := addEntry(runCtx, s.ledger, entry)
	if err != nil {
		return fail(ctx.Stderr, globals.json(), "transaction not saved", err)
	}

	if globals.json() {
		return writeJSON(ctx.Stdout, newTransactionJSON(t, s.ledger.Rate()))
	}
	printSaved(ctx.Stdout, s, t)
	return nil
}

// addEntry parses entry, resolves its profit at the current rate and records
// it in l.
func addEntry(ctx context.Context, l *ledger.Ledger, entry input.Entry) (ledger.Transaction, error) {
	p, err := entry.Parse(now())
	if err != nil {
		return ledger.Transaction{}, err
	}

	percent, err := p.Profit.Percent(p.Quantity, p.UnitPrice, l.Rate())
	if err != nil {
		return ledger.Transaction{}, &input.FieldError{Field: "profit", Value: entry.Profit, Reason: err.Error()}
	}

	return l.AddTransaction(ctx, p.Date, p.Client, p.Code, p.Store, p.Quantity, p.Name, p.UnitPrice, percent)
}

// reuseName fills in the product name stored for the entry's code.
func reuseName(entry *input.Entry, l *ledger.Ledger) {
	if strings.TrimSpace(entry.Name) != "" {
		return
	}
	if t, ok := l.Lookup(strings.TrimSpace(entry.Code)); ok {
		entry.Name = t.Name
	}
}

// keepStoredName replaces a typed name that differs from the one stored for
// the entry's code, unless ask confirms the rename.
func keepStoredName(entry *input.Entry, l *ledger.Ledger, ask func(question string) (bool, error)) error {
	t, ok := l.Lookup(strings.TrimSpace(entry.Code))
	if !ok {
		return nil
	}
	typed := strings.TrimSpace(entry.Name)
	if typed == "" || typed == t.Name {
		return nil
	}

	rename, err := ask(fmt.Sprintf("%s is recorded as %q. Rename it to %q?", t.Code, t.Name, typed))
	if err != nil {
		return err
	}
	if !rename {
		entry.Name = t.Name
	}
	return nil
}

func declineAll(string) (bool, error) {
	return false, nil
}

func incomplete(e input.Entry) bool {
	for _, v := range []string{e.Client, e.Code, e.Store, e.Quantity, e.Name, e.UnitPrice, e.Profit} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func validator(parse func(field, value string) error, field string) func(string) error {
	return func(value string) error {
		return parse(field, value)
	}
}

func requiredField(field, value string) error {
	_, err := input.Required(field, value)
	return err
}

func quantityField(field, value string) error {
	_, err := input.Quantity(field, value)
	return err
}

func amountField(field, value string) error {
	_, err := input.Amount(field, value)
	return err
}

// runEntryForm asks for the fields of entry with huh. The product code is
// asked first so a known product's name can be prefilled.
func runEntryForm(entry *input.Entry, l *ledger.Ledger) error {
	if strings.TrimSpace(entry.Code) == "" {
		err := huh.NewInput().
			Title("Product code").
			Value(&entry.Code).
			Validate(validator(requiredField, "code")).
			Run()
		if err != nil {
			return err
		}
		reuseName(entry, l)
	}

	if entry.ProfitMode == "" {
		entry.ProfitMode = string(input.ProfitPercent)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD, empty for today").
				Value(&entry.Date).
				Validate(func(s string) error {
					_, err := input.Date("date", s, now())
					return err
				}),
			huh.NewInput().Title("Client").Value(&entry.Client).Validate(validator(requiredField, "client")),
			huh.NewInput().Title("Store").Value(&entry.Store).Validate(validator(requiredField, "store")),
			huh.NewInput().Title("Product name").Value(&entry.Name).Validate(validator(requiredField, "product name")),
		),
		huh.NewGroup(
			huh.NewInput().Title("Quantity").Value(&entry.Quantity).Validate(validator(quantityField, "quantity")),
			huh.NewInput().Title("Unit price (foreign)").Value(&entry.UnitPrice).Validate(validator(amountField, "unit price")),
			huh.NewSelect[string]().
				Title("Profit given as").
				Options(
					huh.NewOption("Percentage of the price", string(input.ProfitPercent)),
					huh.NewOption("Local amount per unit", string(input.ProfitPerUnit)),
				).
				Value(&entry.ProfitMode),
			huh.NewInput().
				Title("Profit").
				Value(&entry.Profit).
				Validate(func(v string) error {
					_, err := input.Profit("profit", v, input.ProfitMode(entry.ProfitMode))
					return err
				}),
		),
	)

	return form.Run()
}

func printSaved(w io.Writer, s *session, t ledger.Transaction) {
	rate := s.ledger.Rate()
	styles := output.NewStyles(w)

	printSuccess(w, fmt.Sprintf("Saved %s (%s) to %s",
		styles.Code(t.Code), t.Name, pathStyle.Render(s.ledger.Path())))
	printInfof(w, "Total %s = %s at rate %s",
		styles.Amount(output.Money(t.TotalForeign(), s.cfg.ForeignCurrency)),
		styles.Amount(output.Money(t.TotalLocal(rate), s.cfg.LocalCurrency)),
		rate)
	printInfof(w, "Profit %s (%s%%)",
		styles.Amount(output.Money(t.ProfitLocal(rate), s.cfg.LocalCurrency)),
		t.ProfitPercent.StringFixed(2))
}

type transactionJSON struct {
	Date               string `json:"date"`
	Client             string `json:"client"`
	Code               string `json:"code"`
	Store              string `json:"store"`
	Quantity           int    `json:"quantity"`
	Name               string `json:"name"`
	UnitPriceForeign   string `json:"unit_price_foreign"`
	TotalForeign       string `json:"total_foreign"`
	Rate               string `json:"rate"`
	UnitPriceLocal     string `json:"unit_price_local"`
	TotalLocal         string `json:"total_local"`
	ProfitPercent      string `json:"profit_percent"`
	ProfitPerUnitLocal string `json:"profit_per_unit_local,omitempty"`
	ProfitLocal        string `json:"profit_local"`
}

func newTransactionJSON(t ledger.Transaction, rate decimal.Decimal) transactionJSON {
	tj := transactionJSON{
		Date:             t.Date.Format(ledger.DateLayout),
		Client:           t.Client,
		Code:             t.Code,
		Store:            t.Store,
		Quantity:         t.Quantity,
		Name:             t.Name,
		UnitPriceForeign: t.UnitPriceForeign.StringFixed(2),
		TotalForeign:     t.TotalForeign().StringFixed(2),
		Rate:             rate.String(),
		UnitPriceLocal:   t.UnitPriceLocal(rate).StringFixed(2),
		TotalLocal:       t.TotalLocal(rate).StringFixed(2),
		ProfitPercent:    t.ProfitPercent.String(),
		ProfitLocal:      t.ProfitLocal(rate).StringFixed(2),
	}
	if perUnit, err := t.ProfitPerUnitLocal(rate); err == nil {
		tj.ProfitPerUnitLocal = perUnit.StringFixed(2)
	}
	return tj
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
