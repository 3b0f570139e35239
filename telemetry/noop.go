package telemetry

import (
	"io"

	"github.com/robinvdvleuten/importledger/output"
)

// noOpCollector is used when telemetry is disabled.
type noOpCollector struct{}

func (noOpCollector) Start(name string) Timer { return noOpTimer{} }

func (noOpCollector) Report(w io.Writer, styles *output.Styles) {}

type noOpTimer struct{}

func (noOpTimer) End() {}

func (noOpTimer) Child(name string) Timer { return noOpTimer{} }
