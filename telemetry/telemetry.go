// Package telemetry provides hierarchical timing collection for ledger
// operations. Timings are collected in a tree so nested operations, such as
// reading a month file while computing totals, show up under their caller.
//
// Collectors travel through context.Context, so instrumented code does not
// need an extra parameter and pays nothing when telemetry is disabled.
//
// Example usage:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.StartTimer(ctx, "totals")
//	// ... work ...
//	timer.End()
//
//	collector.Report(os.Stderr, nil)
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/importledger/output"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector collects timings of operations.
type Collector interface {
	// Start begins timing an operation. End must be called on the returned
	// Timer when the operation completes.
	Start(name string) Timer

	// Report writes the collected timings to w. styles may be nil for plain
	// output.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks one operation. Timers nest via Child.
type Timer interface {
	End()
	Child(name string) Timer
}

// WithCollector returns a context carrying collector.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the collector carried by ctx, or a collector that does
// nothing.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// StartTimer starts a timer on the collector carried by ctx.
func StartTimer(ctx context.Context, name string) Timer {
	return FromContext(ctx).Start(name)
}
