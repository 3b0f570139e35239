// Month File Generator
//
// This tool fills a month file with random purchases for performance testing
// and profiling of loading and totals. Rows are written through the ledger,
// so the file has exactly the layout the application produces.
//
// Usage:
//
//	go run ./tools/generate_month --dir /tmp/ledgers
//	go run ./tools/generate_month --dir /tmp/ledgers --rows 50000 --format csv --month 2026-10
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/importledger/ledger"
	"github.com/robinvdvleuten/importledger/sheet"
)

var (
	clients = []string{
		"Acme Importadora",
		"Casa do Norte",
		"Loja Central",
		"Mercado Azul",
		"Rede Sul",
		"Tech Bazar",
	}

	stores = []string{
		"AliExpress",
		"Amazon US",
		"eBay",
		"Newegg",
		"B&H",
	}

	products = []string{
		"USB-C Cable",
		"Wireless Mouse",
		"Mechanical Keyboard",
		"Phone Case",
		"Smart Watch Band",
		"Bluetooth Speaker",
		"SD Card 128GB",
		"LED Strip",
		"Power Bank",
		"Webcam 1080p",
	}

	rates = []string{"4.87", "5", "5.12", "5.25", "5.3321"}
)

type cli struct {
	Dir    string `help:"Directory to write the month file to." default:"." type:"path"`
	Rows   int    `help:"Number of transactions to generate." default:"10000"`
	Format string `help:"File format, xlsx or csv." enum:"xlsx,csv" default:"xlsx"`
	Month  string `help:"Month as YYYY-MM (defaults to the current month)."`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("generate_month"),
		kong.Description("Fill a month file with random purchases."),
	)
	kctx.FatalIfErrorf(run(c.Dir, c.Rows, c.Format, c.Month))
}

func run(dir string, rows int, format, monthFlag string) error {
	codec, err := sheet.ForName(format)
	if err != nil {
		return err
	}

	m := ledger.MonthOf(time.Now())
	if monthFlag != "" {
		if m, err = ledger.ParseMonth(monthFlag); err != nil {
			return err
		}
	}
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	l := ledger.New(dir,
		ledger.WithCodec(codec),
		ledger.WithClock(func() time.Time { return first }),
		ledger.WithLogger(log.New(os.Stderr)),
	)

	ctx := context.Background()
	if err := l.Load(ctx); err != nil {
		return err
	}

	start := time.Now()
	for i := 0; i < rows; i++ {
		if i%100 == 0 {
			if _, err := l.UpdateRate(rates[rand.Intn(len(rates))]); err != nil {
				return err
			}
		}

		date := first.AddDate(0, 0, rand.Intn(days))
		product := rand.Intn(len(products))
		code := fmt.Sprintf("P-%03d", product*10+rand.Intn(10))

		_, err := l.AddTransaction(ctx, date,
			clients[rand.Intn(len(clients))],
			code,
			stores[rand.Intn(len(stores))],
			rand.Intn(50)+1,
			products[product],
			randAmount(1, 200),
			decimal.NewFromInt(int64(rand.Intn(60))),
		)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "\nGenerated %d transactions in %s (%s)\n", rows, l.Path(), time.Since(start).Round(time.Millisecond))
	return nil
}

func randAmount(min, max int) decimal.Decimal {
	cents := rand.Intn((max-min)*100) + min*100
	return decimal.New(int64(cents), -2)
}
