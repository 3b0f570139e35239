package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/importledger/config"
	"github.com/robinvdvleuten/importledger/input"
)

const (
	actionAdd    = "add"
	actionRate   = "rate"
	actionTotals = "totals"
	actionList   = "list"
	actionQuit   = "quit"
)

type SessionCmd struct{}

func (cmd *SessionCmd) Run(ctx *kong.Context, globals *Globals) error {
	if !isTerminal() {
		return errors.New("session needs an interactive terminal")
	}

	runCtx, finish := globals.startTelemetry(context.Background(), ctx.Stderr, "session")
	defer finish()

	s, err := globals.open(runCtx, ctx.Stderr)
	if err != nil {
		return fail(ctx.Stderr, false, "could not open the ledger", err)
	}

	cancel := s.ledger.OnRateChange(func(old, new decimal.Decimal) {
		printInfof(ctx.Stdout, "Conversion rate: %s (was %s)", new, old)
	})
	defer cancel()

	printInfof(ctx.Stdout, "Recording to %s", pathStyle.Render(s.ledger.Path()))
	printInfof(ctx.Stdout, "Conversion rate: %s", s.ledger.Rate())

	for {
		if reloaded, err := s.ledger.Refresh(runCtx); err != nil {
			printError(ctx.Stderr, err.Error())
		} else if reloaded {
			printInfof(ctx.Stdout, "New month, recording to %s", pathStyle.Render(s.ledger.Path()))
		}

		var action string
		err := huh.NewSelect[string]().
			Title("What next?").
			Options(
				huh.NewOption("Add a transaction", actionAdd),
				huh.NewOption("Update the conversion rate", actionRate),
				huh.NewOption("Monthly totals", actionTotals),
				huh.NewOption("List products", actionList),
				huh.NewOption("Quit", actionQuit),
			).
			Value(&action).
			Run()
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read choice: %w", err)
		}

		switch action {
		case actionAdd:
			var entry input.Entry
			if err := runEntryForm(&entry, s.ledger); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					continue
				}
				return fmt.Errorf("failed to read transaction: %w", err)
			}
			if err := keepStoredName(&entry, s.ledger, confirm); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					continue
				}
				return fmt.Errorf("failed to read transaction: %w", err)
			}
			t, err := addEntry(runCtx, s.ledger, entry)
			if err != nil {
				_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer().Render(err))
				continue
			}
			printSaved(ctx.Stdout, s, t)

		case actionRate:
			value := s.ledger.Rate().String()
			err := huh.NewInput().
				Title("Conversion rate").
				Value(&value).
				Validate(func(v string) error {
					_, err := input.Rate(v)
					return err
				}).
				Run()
			if errors.Is(err, huh.ErrUserAborted) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to read rate: %w", err)
			}
			rate, err := s.ledger.UpdateRate(value)
			if err != nil {
				_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer().Render(err))
				continue
			}
			s.cfg.Rate = rate
			if s.cfg.Path() != "" {
				if err := config.SaveRate(s.cfg.Path(), rate); err != nil {
					_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer().Render(err))
				}
			}

		case actionTotals:
			printTotals(runCtx, ctx.Stdout, s)

		case actionList:
			if txns := s.ledger.Transactions(); len(txns) > 0 {
				writeTable(ctx.Stdout, txns, s.ledger.Rate())
			} else {
				printInfof(ctx.Stdout, "No products recorded yet")
			}

		case actionQuit:
			return nil
		}
	}
}
