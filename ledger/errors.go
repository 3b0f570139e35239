package ledger

import (
	"errors"
	"fmt"
	"io/fs"
)

// Sentinel errors for transaction and rate invariants.
var (
	ErrNonPositiveQuantity = errors.New("quantity must be greater than zero")
	ErrNegativePrice       = errors.New("unit price must not be negative")
	ErrDivisionByZero      = errors.New("division by zero")
	ErrNonPositiveRate     = errors.New("conversion rate must be greater than zero")
	ErrWritePermission     = errors.New("write permission denied")
)

// SaveError is returned when a transaction row could not be persisted to the
// month file. The in-memory index is left untouched when this happens.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	if e.Permission() {
		return fmt.Sprintf("cannot save %s: check write permissions", e.Path)
	}
	return fmt.Sprintf("failed to save %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Is reports a permission failure as ErrWritePermission.
func (e *SaveError) Is(target error) bool {
	return target == ErrWritePermission && e.Permission()
}

// Permission reports whether the save failed because the file or its
// directory is not writable.
func (e *SaveError) Permission() bool {
	return errors.Is(e.Err, fs.ErrPermission)
}

// NoDataError is returned when totals are requested for a month that has no
// file yet.
type NoDataError struct {
	Month Month
	Path  string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data for %s: %s does not exist", e.Month, e.Path)
}

// ReadError wraps any other failure while reading the month file.
type ReadError struct {
	Op   string
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// InvalidRateError is returned by UpdateRate for input that is not a positive
// decimal. The current rate is never modified when this is returned.
type InvalidRateError struct {
	Input string
	Err   error
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("invalid conversion rate %q: %v", e.Input, e.Err)
}

func (e *InvalidRateError) Unwrap() error {
	return e.Err
}
