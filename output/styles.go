// Package output provides styling and formatting helpers for terminal output.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// Styles renders text for the terminal behind a writer. Styling degrades to
// plain text when the writer is not a color-capable terminal.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates Styles for w.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

// Success renders text green and bold.
func (s *Styles) Success(text string) string {
	return s.output.String(text).Foreground(s.output.Color("2")).Bold().String()
}

// Error renders text red and bold.
func (s *Styles) Error(text string) string {
	return s.output.String(text).Foreground(s.output.Color("1")).Bold().String()
}

// FilePath renders a path in cyan.
func (s *Styles) FilePath(text string) string {
	return s.output.String(text).Foreground(s.output.Color("6")).String()
}

// Code renders a product code in yellow.
func (s *Styles) Code(text string) string {
	return s.output.String(text).Foreground(s.output.Color("3")).String()
}

// Amount renders a monetary amount in magenta.
func (s *Styles) Amount(text string) string {
	return s.output.String(text).Foreground(s.output.Color("5")).String()
}

// Keyword renders text bold.
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim renders secondary information faint.
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Warning renders text yellow and bold.
func (s *Styles) Warning(text string) string {
	return s.output.String(text).Foreground(s.output.Color("3")).Bold().String()
}
