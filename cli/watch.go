package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/importledger/ledger"
)

// rolloverInterval is how often watch checks whether the month changed.
const rolloverInterval = time.Minute

type WatchCmd struct{}

func (cmd *WatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := globals.open(runCtx, ctx.Stderr)
	if err != nil {
		return fail(ctx.Stderr, globals.json(), "could not open the ledger", err)
	}

	return watchTotals(runCtx, ctx.Stdout, s, rolloverInterval)
}

// watchTotals prints the month totals now and after every change of the
// month file until ctx is done.
func watchTotals(ctx context.Context, w io.Writer, s *session, interval time.Duration) error {
	changes := make(chan error, 1)
	err := s.ledger.StartWatcher(ctx, func(err error) {
		select {
		case changes <- err:
		default:
		}
	})
	if err != nil {
		return err
	}

	printInfof(w, "Watching %s (Ctrl+C to stop)", pathStyle.Render(s.ledger.Path()))
	printTotals(ctx, w, s)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-changes:
			if err != nil {
				printError(w, err.Error())
				continue
			}
			printTotals(ctx, w, s)

		case <-ticker.C:
			reloaded, err := s.ledger.Refresh(ctx)
			if err != nil {
				s.logger.Warn("failed to switch month", "err", err)
				continue
			}
			if reloaded {
				printInfof(w, "New month, now watching %s", pathStyle.Render(s.ledger.Path()))
				printTotals(ctx, w, s)
			}
		}
	}
}

func printTotals(ctx context.Context, w io.Writer, s *session) {
	totals, err := s.ledger.MonthlyTotals(ctx)
	var noData *ledger.NoDataError
	switch {
	case errors.As(err, &noData):
		printInfof(w, "No data for %s yet", noData.Month)
	case err != nil:
		printError(w, err.Error())
	default:
		_, _ = fmt.Fprintln(w, renderTotals(s.cfg, totals, s.ledger.Rate()))
	}
}
