// Package errors formats ledger and input errors for the people and programs
// reading them. Domain error types stay in the ledger and input packages;
// this package only handles presentation.
//
// Two implementations of Formatter are provided:
//   - TextFormatter: readable messages for the terminal
//   - JSONFormatter: structured objects for --output json
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/robinvdvleuten/importledger/input"
	"github.com/robinvdvleuten/importledger/ledger"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// Kinds reported by Kind.
const (
	KindInput      = "input"
	KindRate       = "rate"
	KindSave       = "save"
	KindPermission = "permission"
	KindNoData     = "no_data"
	KindRead       = "read"
	KindValidation = "validation"
	KindUnknown    = "error"
)

// Kind classifies err by the ledger or input error it wraps.
func Kind(err error) string {
	var (
		fieldErr *input.FieldError
		rateErr  *ledger.InvalidRateError
		saveErr  *ledger.SaveError
		noData   *ledger.NoDataError
		readErr  *ledger.ReadError
	)

	switch {
	case stderrors.As(err, &rateErr):
		return KindRate
	case stderrors.As(err, &fieldErr):
		return KindInput
	case stderrors.As(err, &saveErr):
		if saveErr.Permission() {
			return KindPermission
		}
		return KindSave
	case stderrors.As(err, &noData):
		return KindNoData
	case stderrors.As(err, &readErr):
		return KindRead
	case stderrors.Is(err, ledger.ErrNonPositiveQuantity),
		stderrors.Is(err, ledger.ErrNegativePrice),
		stderrors.Is(err, ledger.ErrNonPositiveRate),
		stderrors.Is(err, ledger.ErrDivisionByZero):
		return KindValidation
	}
	return KindUnknown
}

// Unjoin splits an error created by errors.Join into its parts. Other
// errors are returned as a single element slice.
func Unjoin(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// TextFormatter formats errors for the terminal.
type TextFormatter struct {
	hints bool
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithHints appends a suggestion on how to fix the error, when one is known.
func WithHints(enabled bool) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.hints = enabled
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{hints: true}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error. Joined errors are listed one per line.
func (tf *TextFormatter) Format(err error) string {
	if err == nil {
		return ""
	}

	parts := Unjoin(err)
	if len(parts) > 1 {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "%d problems:\n", len(parts))
		for _, part := range parts {
			buf.WriteString("  - ")
			buf.WriteString(part.Error())
			buf.WriteByte('\n')
		}
		return buf.String()
	}

	msg := err.Error()
	if !tf.hints {
		return msg
	}
	if hint := hintFor(err); hint != "" {
		return msg + "\n\n   " + hint
	}
	return msg
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf bytes.Buffer
	for i, err := range errs {
		buf.WriteString(tf.Format(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

func hintFor(err error) string {
	switch Kind(err) {
	case KindPermission:
		return "Close the file if it is open in another program, or choose another --dir."
	case KindNoData:
		return "Add a transaction first, or pick another month with --month."
	case KindRate:
		return "Use a positive number such as 5.25."
	}
	return ""
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Path    string            `json:"path,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.toJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array. Joined errors are
// flattened.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		for _, part := range Unjoin(err) {
			result = append(result, jf.toJSON(part))
		}
	}
	return result
}

func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    Kind(err),
		Message: err.Error(),
	}

	var (
		fieldErr *input.FieldError
		rateErr  *ledger.InvalidRateError
		saveErr  *ledger.SaveError
		noData   *ledger.NoDataError
		readErr  *ledger.ReadError
	)

	switch {
	case stderrors.As(err, &rateErr):
		errJSON.Details = map[string]string{"input": rateErr.Input}
	case stderrors.As(err, &fieldErr):
		errJSON.Details = map[string]string{"field": fieldErr.Field}
		if fieldErr.Value != "" {
			errJSON.Details["value"] = fieldErr.Value
		}
	case stderrors.As(err, &saveErr):
		errJSON.Path = saveErr.Path
	case stderrors.As(err, &noData):
		errJSON.Path = noData.Path
		errJSON.Details = map[string]string{"month": noData.Month.String()}
	case stderrors.As(err, &readErr):
		errJSON.Path = readErr.Path
		errJSON.Details = map[string]string{"op": readErr.Op}
	}

	return errJSON
}
