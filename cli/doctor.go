package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"
)

// DoctorCmd provides doctor utilities for debugging month files.
type DoctorCmd struct {
	Rows RowsCmd `cmd:"" help:"Show how each row of a month file decodes."`
}

// RowsCmd dumps the decoded rows of a month file.
type RowsCmd struct {
	Month MonthFlag `help:"Month as YYYY-MM (defaults to the current month)." short:"m"`
}

// Run executes the rows command.
func (cmd *RowsCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx := context.Background()

	s, err := globals.open(runCtx, ctx.Stderr)
	if err != nil {
		return fail(ctx.Stderr, false, "could not open the ledger", err)
	}

	month := cmd.Month.Resolve()
	reports, err := s.ledger.Inspect(runCtx, month)
	if err != nil {
		return fail(ctx.Stderr, false, "could not read the month file", err)
	}

	var bad []error
	for _, r := range reports {
		// Format: line, then the raw cells and the decoded value
		_, _ = fmt.Fprintf(ctx.Stdout, "row %d\n", r.Line)
		_, _ = fmt.Fprintf(ctx.Stdout, "  cells: %s\n", repr.String(r.Cells))
		if r.Err != nil {
			bad = append(bad, fmt.Errorf("row %d: %w", r.Line, r.Err))
			_, _ = fmt.Fprintln(ctx.Stdout, "  decoded: -")
			continue
		}
		_, _ = fmt.Fprintf(ctx.Stdout, "  decoded: %s\n", repr.String(*r.Transaction, repr.Indent("  ")))
	}

	if len(bad) > 0 {
		_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer().RenderAll(bad))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, fmt.Sprintf("%d of %d row(s) could not be decoded", len(bad), len(reports)))
		return NewCommandError(1)
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("%d row(s) decoded from %s", len(reports), pathStyle.Render(s.ledger.PathFor(month))))
	return nil
}
