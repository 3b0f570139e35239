package ledger

import (
	"fmt"
	"time"
)

// Month identifies one calendar month, the unit a ledger file covers.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a month in YYYY-MM form.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", s, err)
	}
	return MonthOf(t), nil
}

// IsZero reports whether m was never set.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// FileName returns the file name for the month, e.g. ledger_10_2026.xlsx.
func (m Month) FileName(prefix, ext string) string {
	return fmt.Sprintf("%s_%02d_%04d.%s", prefix, int(m.Month), m.Year, ext)
}
