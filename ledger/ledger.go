// Package ledger records purchases of imported goods priced in a foreign
// currency, converts them to local currency at an adjustable rate and keeps
// them in one tabular file per calendar month.
//
// The ledger owns three pieces of state:
//   - the conversion rate, shared by every calculation until it is changed
//   - the active month, captured when the ledger is loaded
//   - an index of the month's transactions keyed by product code
//
// The month file is the source of truth. Appends go to the file first and only
// reach the index once the file was saved, and aggregates are always computed
// by re-reading the file.
//
// Example usage:
//
//	l := ledger.New("data", ledger.WithRate(decimal.RequireFromString("5.25")))
//	if err := l.Load(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	_, err := l.AddTransaction(ctx, time.Now(), "ACME", "P-100", "Main St",
//	    10, "Widget", decimal.RequireFromString("2.00"), decimal.NewFromInt(20))
//	if err != nil {
//	    var saveErr *ledger.SaveError
//	    if errors.As(err, &saveErr) && saveErr.Permission() {
//	        // ask the user to fix permissions
//	    }
//	}
//
//	totals, err := l.MonthlyTotals(ctx)
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/importledger/sheet"
	"github.com/robinvdvleuten/importledger/telemetry"
)

// DefaultPrefix is the file name prefix of month files.
const DefaultPrefix = "ledger"

// Ledger holds the conversion rate, the active month and the index of that
// month's transactions, and reads and appends the month file on disk.
type Ledger struct {
	dir    string
	prefix string
	codec  sheet.Codec
	clock  func() time.Time
	logger *log.Logger
	rate   *Rate

	mu    sync.RWMutex
	month Month
	index map[string]Transaction
}

// Totals are the sums of the aggregate columns of a month file.
type Totals struct {
	Month        Month
	Foreign      decimal.Decimal
	Local        decimal.Decimal
	ProfitLocal  decimal.Decimal
	Rows         int
	SkippedCells int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithRate sets the initial conversion rate. Non-positive values are ignored
// and the ledger keeps DefaultRate.
func WithRate(rate decimal.Decimal) Option {
	return func(l *Ledger) {
		if rate.IsPositive() {
			l.rate = NewRate(rate)
		}
	}
}

// WithCodec sets the file format of month files.
func WithCodec(codec sheet.Codec) Option {
	return func(l *Ledger) {
		l.codec = codec
	}
}

// WithPrefix sets the file name prefix of month files.
func WithPrefix(prefix string) Option {
	return func(l *Ledger) {
		if prefix != "" {
			l.prefix = prefix
		}
	}
}

// WithClock sets the source of the current time used to resolve the month.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// New creates a ledger storing its month files in dir. The index is empty
// until Load is called.
func New(dir string, opts ...Option) *Ledger {
	l := &Ledger{
		dir:    dir,
		prefix: DefaultPrefix,
		codec:  sheet.XLSX{},
		clock:  time.Now,
		logger: log.Default(),
		rate:   NewRate(DefaultRate),
		index:  make(map[string]Transaction),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load captures the current calendar month as the active month and rebuilds
// the index from its file. A missing file is not an error.
func (l *Ledger) Load(ctx context.Context) error {
	return l.LoadMonth(ctx, MonthOf(l.clock()))
}

// LoadMonth makes m the active month and rebuilds the index from its file.
// Rows that cannot be decoded are logged and skipped.
func (l *Ledger) LoadMonth(ctx context.Context, m Month) error {
	path := l.PathFor(m)
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("ledger.load %s", filepath.Base(path)))
	defer timer.End()

	index := make(map[string]Transaction)

	rows, err := l.codec.Read(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		l.logger.Debug("no month file yet", "month", m, "path", path)

	case err != nil:
		return &ReadError{Op: "load", Path: path, Err: err}

	default:
		for i := 1; i < len(rows); i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if isBlank(rows[i]) {
				continue
			}

			t, err := decodeRow(rows[i])
			if err != nil {
				l.logger.Warn("skipping malformed row", "path", path, "row", i+1, "err", err)
				continue
			}
			index[t.Code] = t
		}
		l.logger.Debug("loaded month file", "path", path, "products", len(index))
	}

	l.mu.Lock()
	l.month = m
	l.index = index
	l.mu.Unlock()

	return nil
}

// Refresh reloads the ledger when the calendar month has moved on since the
// active month was captured. It reports whether a reload happened.
func (l *Ledger) Refresh(ctx context.Context) (bool, error) {
	current := MonthOf(l.clock())
	if current == l.Month() {
		return false, nil
	}
	if err := l.LoadMonth(ctx, current); err != nil {
		return false, err
	}
	return true, nil
}

// AddTransaction records a purchase: it builds the Transaction, appends its
// row to the active month's file at the current rate and then indexes it
// under its code, replacing any earlier entry for that code.
//
// A failed save returns a *SaveError and leaves the index unchanged.
func (l *Ledger) AddTransaction(ctx context.Context, date time.Time, client, code, store string, quantity int, name string, unitPriceForeign, profitPercent decimal.Decimal) (Transaction, error) {
	t, err := NewTransaction(date, client, code, store, quantity, name, unitPriceForeign, profitPercent)
	if err != nil {
		return Transaction{}, err
	}

	rate := l.rate.Value()
	row, err := encodeRow(t, rate)
	if err != nil {
		return Transaction{}, err
	}

	m := l.activeMonth()
	path := l.PathFor(m)

	timer := telemetry.StartTimer(ctx, fmt.Sprintf("ledger.append %s", filepath.Base(path)))
	err = l.codec.Append(path, Header, row)
	timer.End()
	if err != nil {
		l.logger.Error("failed to save transaction", "path", path, "code", code, "err", err)
		return Transaction{}, &SaveError{Path: path, Err: err}
	}

	l.mu.Lock()
	if l.month.IsZero() {
		l.month = m
	}
	if l.month == m {
		l.index[t.Code] = t
	}
	l.mu.Unlock()

	l.logger.Debug("saved transaction", "path", path, "code", code, "rate", rate)
	return t, nil
}

// UpdateRate parses text as a positive decimal and makes it the conversion
// rate for every later calculation. Rate subscribers are notified before
// UpdateRate returns. On invalid input the rate is left unchanged.
func (l *Ledger) UpdateRate(text string) (decimal.Decimal, error) {
	value, err := ParseRate(text)
	if err != nil {
		return decimal.Zero, err
	}
	if err := l.rate.Set(value); err != nil {
		return decimal.Zero, &InvalidRateError{Input: text, Err: err}
	}
	l.logger.Info("conversion rate updated", "rate", value)
	return value, nil
}

// Rate returns the current conversion rate.
func (l *Ledger) Rate() decimal.Decimal {
	return l.rate.Value()
}

// OnRateChange subscribes fn to rate changes. The returned function
// unsubscribes it.
func (l *Ledger) OnRateChange(fn RateListener) (cancel func()) {
	return l.rate.Subscribe(fn)
}

// MonthlyTotals sums the foreign total, local total and local profit columns
// of the active month's file. The file is re-read on every call; the index is
// not consulted.
func (l *Ledger) MonthlyTotals(ctx context.Context) (Totals, error) {
	return l.TotalsFor(ctx, l.activeMonth())
}

// TotalsFor sums the aggregate columns of the file of month m. Missing or
// non-numeric cells are skipped and counted in SkippedCells.
func (l *Ledger) TotalsFor(ctx context.Context, m Month) (Totals, error) {
	path := l.PathFor(m)
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("ledger.totals %s", filepath.Base(path)))
	defer timer.End()

	totals := Totals{
		Month:       m,
		Foreign:     decimal.Zero,
		Local:       decimal.Zero,
		ProfitLocal: decimal.Zero,
	}

	rows, err := l.codec.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Totals{}, &NoDataError{Month: m, Path: path}
	}
	if err != nil {
		return Totals{}, &ReadError{Op: "totals", Path: path, Err: err}
	}

	for i := 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}
		totals.Rows++

		sums := []struct {
			col int
			sum *decimal.Decimal
		}{
			{ColTotalForeign, &totals.Foreign},
			{ColTotalLocal, &totals.Local},
			{ColTotalProfitLocal, &totals.ProfitLocal},
		}
		for _, s := range sums {
			value, ok := numericCell(rows[i], s.col)
			if !ok {
				totals.SkippedCells++
				continue
			}
			*s.sum = s.sum.Add(value)
		}
	}

	return totals, nil
}

// Lookup returns the indexed transaction for code.
func (l *Ledger) Lookup(code string) (Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.index[code]
	return t, ok
}

// Transactions returns the indexed transactions sorted by code.
func (l *Ledger) Transactions() []Transaction {
	l.mu.RLock()
	txns := make([]Transaction, 0, len(l.index))
	for _, t := range l.index {
		txns = append(txns, t)
	}
	l.mu.RUnlock()

	slices.SortFunc(txns, func(a, b Transaction) int {
		return strings.Compare(a.Code, b.Code)
	})
	return txns
}

// Month returns the active month, or the zero Month before the first load.
func (l *Ledger) Month() Month {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.month
}

// Path returns the file of the active month.
func (l *Ledger) Path() string {
	return l.PathFor(l.activeMonth())
}

// PathFor returns the file of month m.
func (l *Ledger) PathFor(m Month) string {
	return filepath.Join(l.dir, m.FileName(l.prefix, l.codec.Ext()))
}

// activeMonth returns the captured month, falling back to the clock when the
// ledger was never loaded.
func (l *Ledger) activeMonth() Month {
	if m := l.Month(); !m.IsZero() {
		return m
	}
	return MonthOf(l.clock())
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
