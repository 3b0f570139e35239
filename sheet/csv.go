package sheet

import (
	"encoding/csv"
	"fmt"
	"os"
)

// CSV stores rows as comma-separated text.
type CSV struct{}

var _ Codec = CSV{}

// Ext returns "csv".
func (CSV) Ext() string { return "csv" }

// Read returns all records of the file. Records may have differing lengths.
func (CSV) Read(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return records, nil
}

// Append appends row to the file, writing header first when the file is new
// or empty.
func (CSV) Append(path string, header []string, row []any) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			_ = f.Close()
			return err
		}
	}

	record := make([]string, len(row))
	for i, v := range row {
		record[i] = cellString(v)
	}
	if err := w.Write(record); err != nil {
		_ = f.Close()
		return err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
