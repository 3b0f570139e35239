package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/robinvdvleuten/importledger/config"
	"github.com/robinvdvleuten/importledger/ledger"
	"github.com/robinvdvleuten/importledger/output"
	"github.com/robinvdvleuten/importledger/sheet"
	"github.com/robinvdvleuten/importledger/telemetry"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Config    string `help:"Config file." default:"${config_path}" env:"IMPORTLEDGER_CONFIG"`
	Dir       string `help:"Directory holding the month files (overrides the config file)." type:"path"`
	Format    string `help:"Month file format, xlsx or csv (overrides the config file)."`
	RateFlag  string `help:"Conversion rate for this run (overrides the config file)." name:"rate"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"warn"`
	Output    string `help:"Output format." enum:"text,json" default:"text"`
	Telemetry bool   `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Add     AddCmd     `cmd:"" help:"Record a purchase in the current month's file."`
	Rate    RateCmd    `cmd:"" help:"Show or update the conversion rate."`
	Totals  TotalsCmd  `cmd:"" help:"Show the totals of a month."`
	List    ListCmd    `cmd:"" help:"List the products recorded this month."`
	Watch   WatchCmd   `cmd:"" help:"Print the month totals every time the month file changes."`
	Session SessionCmd `cmd:"" help:"Start an interactive session."`
	Doctor  DoctorCmd  `cmd:"" help:"Doctor utilities for debugging month files."`
}

// session is what every command works with: the settings and a loaded
// ledger.
type session struct {
	cfg    *config.Config
	ledger *ledger.Ledger
	logger *log.Logger
}

func (g *Globals) json() bool {
	return g.Output == "json"
}

// loadConfig reads the config file and applies the command-line overrides.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}

	if g.Dir != "" {
		cfg.Dir = g.Dir
	}
	if g.Format != "" {
		cfg.Format = g.Format
	}
	if g.RateFlag != "" {
		rate, err := ledger.ParseRate(g.RateFlag)
		if err != nil {
			return nil, err
		}
		cfg.Rate = rate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (g *Globals) logger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(strings.ToLower(g.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", g.LogLevel, err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "importledger",
		ReportTimestamp: level == log.DebugLevel,
	}), nil
}

// open builds the ledger from the settings and loads the current month.
func (g *Globals) open(ctx context.Context, stderr io.Writer) (*session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := g.logger(stderr)
	if err != nil {
		return nil, err
	}

	codec, err := sheet.ForName(cfg.Format)
	if err != nil {
		return nil, err
	}

	l := ledger.New(cfg.Dir,
		ledger.WithCodec(codec),
		ledger.WithPrefix(cfg.Prefix),
		ledger.WithRate(cfg.Rate),
		ledger.WithClock(now),
		ledger.WithLogger(logger),
	)
	if err := l.Load(ctx); err != nil {
		return nil, err
	}

	return &session{cfg: cfg, ledger: l, logger: logger}, nil
}

// startTelemetry attaches a timing collector to ctx when --telemetry is set.
// The returned function ends the root timer and prints the report.
func (g *Globals) startTelemetry(ctx context.Context, stderr io.Writer, name string) (context.Context, func()) {
	if !g.Telemetry {
		return ctx, func() {}
	}

	collector := telemetry.NewTimingCollector()
	ctx = telemetry.WithCollector(ctx, collector)
	root := collector.Start(name)

	return ctx, func() {
		root.End()
		_, _ = fmt.Fprintln(stderr)
		collector.Report(stderr, output.NewStyles(stderr))
	}
}
