package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/robinvdvleuten/importledger/telemetry"
)

// RowReport is the decoding outcome of one data row of a month file.
type RowReport struct {
	Line        int
	Cells       []string
	Transaction *Transaction
	Err         error
}

// Inspect decodes every data row of the file of month m without touching the
// index. Blank rows are left out.
func (l *Ledger) Inspect(ctx context.Context, m Month) ([]RowReport, error) {
	path := l.PathFor(m)
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("ledger.inspect %s", filepath.Base(path)))
	defer timer.End()

	rows, err := l.codec.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NoDataError{Month: m, Path: path}
	}
	if err != nil {
		return nil, &ReadError{Op: "inspect", Path: path, Err: err}
	}

	var reports []RowReport
	for i := 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}
		report := RowReport{Line: i + 1, Cells: rows[i]}
		t, err := decodeRow(rows[i])
		if err != nil {
			report.Err = err
		} else {
			report.Transaction = &t
		}
		reports = append(reports, report)
	}
	return reports, nil
}
