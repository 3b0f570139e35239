package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/importledger/ledger"
)

type ListCmd struct{}

func (cmd *ListCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, finish := globals.startTelemetry(context.Background(), ctx.Stderr, "list")
	defer finish()

	s, err := globals.open(runCtx, ctx.Stderr)
	if err != nil {
		return fail(ctx.Stderr, globals.json(), "could not open the ledger", err)
	}

	txns := s.ledger.Transactions()
	rate := s.ledger.Rate()

	if globals.json() {
		out := make([]transactionJSON, 0, len(txns))
		for _, t := range txns {
			out = append(out, newTransactionJSON(t, rate))
		}
		return writeJSON(ctx.Stdout, out)
	}

	if len(txns) == 0 {
		printInfof(ctx.Stdout, "No products recorded in %s yet", pathStyle.Render(s.ledger.Path()))
		return nil
	}

	writeTable(ctx.Stdout, txns, rate)
	return nil
}

var listHeader = []string{"Code", "Product", "Client", "Store", "Qty", "Unit", "Total", "Total (local)", "Profit %"}

// rightAligned marks the numeric columns of the list table.
var rightAligned = map[int]bool{4: true, 5: true, 6: true, 7: true, 8: true}

// writeTable prints txns as a table aligned by display width, so names with
// wide characters line up.
func writeTable(w io.Writer, txns []ledger.Transaction, rate decimal.Decimal) {
	rows := [][]string{listHeader}
	for _, t := range txns {
		rows = append(rows, []string{
			t.Code,
			t.Name,
			t.Client,
			t.Store,
			fmt.Sprintf("%d", t.Quantity),
			t.UnitPriceForeign.StringFixed(2),
			t.TotalForeign().StringFixed(2),
			t.TotalLocal(rate).StringFixed(2),
			t.ProfitPercent.StringFixed(2),
		})
	}

	widths := make([]int, len(listHeader))
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if rightAligned[i] {
				cells[i] = runewidth.FillLeft(cell, widths[i])
			} else {
				cells[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		line := strings.TrimRight(strings.Join(cells, "  "), " ")
		if r == 0 {
			line = labelStyle.Render(line)
		}
		_, _ = fmt.Fprintln(w, line)
	}
}
