// Package sheet reads and appends rows of the tabular files a ledger is
// persisted in. A Codec hides the on-disk format; the ledger only deals in
// rows of cells.
//
// Two formats are supported:
//   - XLSX: a workbook whose first worksheet holds the rows (the default)
//   - CSV: plain comma-separated text
//
// Reading returns every row as strings, header included. Appending creates the
// file with the given header when it does not exist yet. Errors from the file
// system are returned wrapped, so callers can test them with errors.Is against
// fs.ErrNotExist and fs.ErrPermission.
//
// Example usage:
//
//	codec, err := sheet.ForName("xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = codec.Append("ledger_10_2026.xlsx", header, row)
package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Codec reads and appends rows of one file format.
type Codec interface {
	// Ext returns the file extension without the leading dot.
	Ext() string

	// Read returns all rows of the file at path, header included.
	Read(path string) ([][]string, error)

	// Append adds row at the end of the file at path, creating the file with
	// header as its first row when it does not exist.
	Append(path string, header []string, row []any) error
}

// ForName returns the codec for a format name ("xlsx" or "csv").
func ForName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "xlsx", "":
		return XLSX{}, nil
	case "csv":
		return CSV{}, nil
	default:
		return nil, fmt.Errorf("unsupported sheet format %q, expected xlsx or csv", name)
	}
}

// cellString renders a cell value as text.
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case decimal.Decimal:
		return val.String()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
