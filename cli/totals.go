package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/importledger/config"
	"github.com/robinvdvleuten/importledger/ledger"
	"github.com/robinvdvleuten/importledger/output"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"}).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Bold(true)
)

type TotalsCmd struct {
	Month MonthFlag `help:"Month as YYYY-MM (defaults to the current month)." short:"m"`
}

type totalsJSON struct {
	Month        string `json:"month"`
	Path         string `json:"path"`
	Rate         string `json:"rate"`
	Foreign      string `json:"total_foreign"`
	Local        string `json:"total_local"`
	ProfitLocal  string `json:"total_profit_local"`
	ProfitInFx   string `json:"total_profit_foreign"`
	Rows         int    `json:"rows"`
	SkippedCells int    `json:"skipped_cells"`
}

func (cmd *TotalsCmd) Run(ctx *kong.Context, globals *Globals) error {
	month := cmd.Month.Resolve()

	runCtx, finish := globals.startTelemetry(context.Background(), ctx.Stderr, "totals "+month.String())
	defer finish()

	s, err := globals.open(runCtx, ctx.Stderr)
	if err != nil {
		return fail(ctx.Stderr, globals.json(), "could not open the ledger", err)
	}

	totals, err := s.ledger.TotalsFor(runCtx, month)
	if err != nil {
		return fail(ctx.Stderr, globals.json(), "no totals", err)
	}

	rate := s.ledger.Rate()
	if globals.json() {
		return writeJSON(ctx.Stdout, totalsJSON{
			Month:        month.String(),
			Path:         s.ledger.PathFor(month),
			Rate:         rate.String(),
			Foreign:      totals.Foreign.StringFixed(2),
			Local:        totals.Local.StringFixed(2),
			ProfitLocal:  totals.ProfitLocal.StringFixed(2),
			ProfitInFx:   profitForeign(totals, rate).StringFixed(2),
			Rows:         totals.Rows,
			SkippedCells: totals.SkippedCells,
		})
	}

	_, _ = fmt.Fprintln(ctx.Stdout, renderTotals(s.cfg, totals, rate))
	if totals.SkippedCells > 0 {
		printInfof(ctx.Stdout, "%d cell(s) were empty or not numeric and were left out", totals.SkippedCells)
	}
	return nil
}

// profitForeign converts the local profit back at rate, the way the
// summary shows it in both currencies.
func profitForeign(totals ledger.Totals, rate decimal.Decimal) decimal.Decimal {
	if !rate.IsPositive() {
		return decimal.Zero
	}
	return totals.ProfitLocal.Div(rate)
}

// renderTotals draws the month summary box.
func renderTotals(cfg *config.Config, totals ledger.Totals, rate decimal.Decimal) string {
	rows := [][2]string{
		{"Total", fmt.Sprintf("%s  %s",
			output.Money(totals.Foreign, cfg.ForeignCurrency),
			output.Money(totals.Local, cfg.LocalCurrency))},
		{"Profit", fmt.Sprintf("%s  %s",
			output.Money(profitForeign(totals, rate), cfg.ForeignCurrency),
			output.Money(totals.ProfitLocal, cfg.LocalCurrency))},
		{"Rate", rate.String()},
		{"Rows", fmt.Sprintf("%d", totals.Rows)},
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("Totals for " + totals.Month.String()))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-7s", row[0])))
		b.WriteString(row[1])
	}
	return boxStyle.Render(b.String())
}
