package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var fixedNow = time.Date(2026, time.October, 17, 10, 0, 0, 0, time.UTC)

type testCLI struct {
	Commands
}

type result struct {
	stdout string
	stderr string
	err    error
}

func setClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

// run executes the command line args against a ledger in dir.
func run(t *testing.T, dir string, args ...string) result {
	t.Helper()

	var cli testCLI
	var stdout, stderr bytes.Buffer
	parser, err := kong.New(&cli,
		kong.Name("importledger"),
		kong.Vars{"config_path": ""},
		kong.Writers(&stdout, &stderr),
		kong.Bind(&cli.Globals),
		kong.Exit(func(int) {}),
	)
	assert.NoError(t, err)

	base := []string{"--dir", dir, "--config", filepath.Join(dir, "config.yaml"), "--format", "csv"}
	kctx, err := parser.Parse(append(base, args...))
	if err != nil {
		return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
	}

	err = kctx.Run()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// commandError returns the CommandError kong's Run wrapped in err.
func commandError(t *testing.T, err error) *CommandError {
	t.Helper()
	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr), "expected CommandError, got %v", err)
	return cmdErr
}

func setConfirm(t *testing.T, answer bool) {
	t.Helper()
	prev := confirm
	confirm = func(string) (bool, error) { return answer, nil }
	t.Cleanup(func() { confirm = prev })
}

func addArgs(code, name string, extra ...string) []string {
	args := []string{"add",
		"--date", "2026-10-03",
		"--client", "Acme",
		"--code", code,
		"--store", "Main",
		"--quantity", "10",
		"--price", "2.00",
		"--profit", "20",
	}
	if name != "" {
		args = append(args, "--name", name)
	}
	return append(args, extra...)
}

func TestAddAndTotals(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()

	res := run(t, dir, addArgs("P-100", "Widget")...)
	assert.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Saved P-100 (Widget)")

	data, err := os.ReadFile(filepath.Join(dir, "ledger_10_2026.csv"))
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, 2, len(lines))
	assert.Equal(t, "2026-10-03,Acme,P-100,Main,10,Widget,2.00,20.00,5,10.00,100.00,20,2.00,20.00", lines[1])

	res = run(t, dir, "--output", "json", "totals")
	assert.NoError(t, res.err, res.stderr)

	var totals totalsJSON
	assert.NoError(t, json.Unmarshal([]byte(res.stdout), &totals))
	assert.Equal(t, "2026-10", totals.Month)
	assert.Equal(t, "20.00", totals.Foreign)
	assert.Equal(t, "100.00", totals.Local)
	assert.Equal(t, "20.00", totals.ProfitLocal)
	assert.Equal(t, "4.00", totals.ProfitInFx)
	assert.Equal(t, 1, totals.Rows)
}

func TestAddJSONOutput(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()

	res := run(t, dir, append([]string{"--output", "json", "--rate", "5"}, addArgs("P-100", "Widget")...)...)
	assert.NoError(t, res.err, res.stderr)

	var tj transactionJSON
	assert.NoError(t, json.Unmarshal([]byte(res.stdout), &tj))
	assert.Equal(t, "P-100", tj.Code)
	assert.Equal(t, "10.00", tj.UnitPriceLocal)
	assert.Equal(t, "2.00", tj.ProfitPerUnitLocal)
	assert.Equal(t, "20.00", tj.ProfitLocal)
}

func TestAddReusesProductName(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()

	assert.NoError(t, run(t, dir, addArgs("P-100", "Widget")...).err)

	res := run(t, dir, addArgs("P-100", "")...)
	assert.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Saved P-100 (Widget)")
}

func TestAddKeepsStoredName(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()

	assert.NoError(t, run(t, dir, addArgs("P-100", "Widget")...).err)

	setConfirm(t, false)
	res := run(t, dir, addArgs("P-100", "Gadget")...)
	assert.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Saved P-100 (Widget)")

	setConfirm(t, true)
	res = run(t, dir, addArgs("P-100", "Gadget")...)
	assert.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Saved P-100 (Gadget)")

	res = run(t, dir, append([]string{"--output", "json"}, addArgs("P-100", "Gizmo")...)...)
	assert.NoError(t, res.err, res.stderr)
	var tj transactionJSON
	assert.NoError(t, json.Unmarshal([]byte(res.stdout), &tj))
	assert.Equal(t, "Gadget", tj.Name)
}

func TestAddNegativeProfitPercent(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()

	args := []string{"--output", "json", "add",
		"--client", "Acme", "--code", "P-7", "--store", "Main", "--name", "Gadget",
		"--quantity", "10", "--price", "2", "--profit=-5"}
	res := run(t, dir, args...)
	assert.NoError(t, res.err, res.stderr)

	var tj transactionJSON
	assert.NoError(t, json.Unmarshal([]byte(res.stdout), &tj))
	assert.Equal(t, "-5", tj.ProfitPercent)
	assert.Equal(t, "-5.00", tj.ProfitLocal)
}

func TestAddPerUnitProfit(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()

	args := []string{"--output", "json", "add",
		"--client", "Acme", "--code", "P-7", "--store", "Main", "--name", "Gadget",
		"--quantity", "10", "--price", "2", "--profit", "2", "--mode", "per-unit"}
	res := run(t, dir, args...)
	assert.NoError(t, res.err, res.stderr)

	var tj transactionJSON
	assert.NoError(t, json.Unmarshal([]byte(res.stdout), &tj))
	assert.Equal(t, "20", tj.ProfitPercent)
	assert.Equal(t, "2026-10-17", tj.Date)
}

func TestAddInvalidInput(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()

	res := run(t, dir, "add", "--client", "Acme", "--code", "P-1", "--store", "Main",
		"--name", "Widget", "--quantity", "0", "--price=-1", "--profit", "10")

	cmdErr := commandError(t, res.err)
	assert.Equal(t, 1, cmdErr.ExitCode())
	assert.Contains(t, res.stderr, "quantity: must be greater than zero")
	assert.Contains(t, res.stderr, "unit price: must not be negative")

	_, err := os.Stat(filepath.Join(dir, "ledger_10_2026.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRateShowAndUpdate(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()

	res := run(t, dir, "rate")
	assert.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Conversion rate: 5")

	res = run(t, dir, "rate", "7.5")
	assert.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Conversion rate set to 7.5")

	res = run(t, dir, "--output", "json", "rate")
	assert.NoError(t, res.err)
	var rj rateJSON
	assert.NoError(t, json.Unmarshal([]byte(res.stdout), &rj))
	assert.Equal(t, "7.5", rj.Rate)

	res = run(t, dir, "rate", "abc")
	commandError(t, res.err)
	assert.Contains(t, res.stderr, `invalid conversion rate "abc"`)

	res = run(t, dir, "rate")
	assert.Contains(t, res.stdout, "Conversion rate: 7.5")
}

func TestRateSavesOnlyTheRate(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()

	res := run(t, dir, "--rate", "6", "rate", "7")
	assert.NoError(t, res.err, res.stderr)

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)
	assert.NotContains(t, string(data), dir)
	assert.NotContains(t, string(data), "csv")

	var saved struct {
		Dir    string `yaml:"dir"`
		Format string `yaml:"format"`
		Rate   string `yaml:"rate"`
	}
	assert.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, ".", saved.Dir)
	assert.Equal(t, "xlsx", saved.Format)
	assert.Equal(t, "7", saved.Rate)
}

func TestTotalsNoData(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()

	res := run(t, dir, "--output", "json", "totals", "--month", "2026-09")
	commandError(t, res.err)

	var errs []map[string]any
	assert.NoError(t, json.Unmarshal([]byte(res.stderr), &errs))
	assert.Equal(t, 1, len(errs))
	assert.Equal(t, "no_data", errs[0]["type"])
}

func TestTotalsInvalidMonth(t *testing.T) {
	res := run(t, t.TempDir(), "totals", "--month", "2026/09")
	assert.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "expected YYYY-MM")
}

func TestTotalsWithTelemetry(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()
	assert.NoError(t, run(t, dir, addArgs("P-100", "Widget")...).err)

	res := run(t, dir, "--telemetry", "totals")
	assert.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Totals for 2026-10")
	assert.Contains(t, res.stderr, "totals 2026-10")
	assert.Contains(t, res.stderr, "ledger.totals ledger_10_2026.csv")
}

func TestList(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()

	res := run(t, dir, "list")
	assert.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No products recorded")

	assert.NoError(t, run(t, dir, addArgs("P-200", "Gadget")...).err)
	assert.NoError(t, run(t, dir, addArgs("P-100", "Widget")...).err)

	res = run(t, dir, "list")
	assert.NoError(t, res.err, res.stderr)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	assert.Equal(t, 3, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "Code"))
	assert.True(t, strings.HasPrefix(lines[1], "P-100"))
	assert.True(t, strings.HasPrefix(lines[2], "P-200"))
}

func TestDoctorRows(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()
	assert.NoError(t, run(t, dir, addArgs("P-100", "Widget")...).err)

	f, err := os.OpenFile(filepath.Join(dir, "ledger_10_2026.csv"), os.O_APPEND|os.O_WRONLY, 0)
	assert.NoError(t, err)
	_, err = f.WriteString("not-a-date,Acme,P-9,Main,x\n")
	assert.NoError(t, err)
	assert.NoError(t, f.Close())

	res := run(t, dir, "doctor", "rows")
	commandError(t, res.err)
	assert.Contains(t, res.stdout, "row 2")
	assert.Contains(t, res.stdout, `"Widget"`)
	assert.Contains(t, res.stdout, "row 3")
	assert.Contains(t, res.stderr, "row 3: ")
	assert.NotContains(t, res.stderr, "row 2: ")
	assert.Contains(t, res.stderr, "1 of 2 row(s) could not be decoded")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchTotals(t *testing.T) {
	setClock(t, fixedNow)
	dir := t.TempDir()

	g := &Globals{Dir: dir, Format: "csv", LogLevel: "error", Output: "text"}
	var logs bytes.Buffer
	s, err := g.open(context.Background(), &logs)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- watchTotals(ctx, &out, s, time.Hour)
	}()

	waitFor(t, func() bool { return strings.Contains(out.String(), "No data for 2026-10") })

	_, err = s.ledger.AddTransaction(ctx, fixedNow, "Acme", "P-100", "Main", 10, "Widget",
		decimal.RequireFromString("2"), decimal.NewFromInt(20))
	assert.NoError(t, err)

	waitFor(t, func() bool { return strings.Contains(out.String(), "Totals for 2026-10") })

	cancel()
	assert.NoError(t, <-done)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
