package sheet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// XLSX stores rows in the first worksheet of an Excel workbook.
type XLSX struct{}

var _ Codec = XLSX{}

// Ext returns "xlsx".
func (XLSX) Ext() string { return "xlsx" }

// Read returns the rows of the first worksheet.
func (XLSX) Read(path string) ([][]string, error) {
	// excelize does not always preserve the os error, so stat first to keep
	// fs.ErrNotExist and fs.ErrPermission detectable.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

// Append writes row below the last used row of the first worksheet and saves
// the workbook.
func (XLSX) Append(path string, header []string, row []any) error {
	f, err := openOrCreateWorkbook(path, header)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}

	values := make([]any, len(row))
	for i, v := range row {
		values[i] = xlsxValue(v)
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	return f.SaveAs(path)
}

func openOrCreateWorkbook(path string, header []string) (*excelize.File, error) {
	_, err := os.Stat(path)
	if err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	f := excelize.NewFile()
	values := make([]any, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := f.SetSheetRow(f.GetSheetName(0), "A1", &values); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return f, nil
}

// xlsxValue maps decimals to numeric cells; everything else is written as is.
func xlsxValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return v
}
