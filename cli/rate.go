package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/importledger/config"
)

type RateCmd struct {
	Value string `help:"New conversion rate. Shows the current rate when omitted." arg:"" optional:""`
}

type rateJSON struct {
	Rate  string `json:"rate"`
	Saved string `json:"saved,omitempty"`
}

func (cmd *RateCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, finish := globals.startTelemetry(context.Background(), ctx.Stderr, "rate")
	defer finish()

	s, err := globals.open(runCtx, ctx.Stderr)
	if err != nil {
		return fail(ctx.Stderr, globals.json(), "could not open the ledger", err)
	}

	if cmd.Value == "" {
		if globals.json() {
			return writeJSON(ctx.Stdout, rateJSON{Rate: s.ledger.Rate().String()})
		}
		printInfof(ctx.Stdout, "Conversion rate: %s", s.ledger.Rate())
		return nil
	}

	rate, err := s.ledger.UpdateRate(cmd.Value)
	if err != nil {
		return fail(ctx.Stderr, globals.json(), "rate not changed", err)
	}

	s.cfg.Rate = rate
	saved := s.cfg.Path()
	if saved != "" {
		if err := config.SaveRate(saved, rate); err != nil {
			return fail(ctx.Stderr, globals.json(), "rate not saved", err)
		}
	}

	if globals.json() {
		return writeJSON(ctx.Stdout, rateJSON{Rate: rate.String(), Saved: saved})
	}
	printSuccess(ctx.Stdout, "Conversion rate set to "+rate.String())
	if saved != "" {
		printInfof(ctx.Stdout, "Saved to %s", pathStyle.Render(saved))
	}
	return nil
}
