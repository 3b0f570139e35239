package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	lerrors "github.com/robinvdvleuten/importledger/errors"
)

var errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})

// ErrorRenderer renders errors with terminal styling.
type ErrorRenderer struct {
	formatter *lerrors.TextFormatter
}

// NewErrorRenderer creates a renderer.
func NewErrorRenderer() *ErrorRenderer {
	return &ErrorRenderer{formatter: lerrors.NewTextFormatter(lerrors.WithHints(false))}
}

// Render formats a single error. Joined errors are listed one per line and
// hints are dimmed below the message.
func (r *ErrorRenderer) Render(err error) string {
	parts := lerrors.Unjoin(err)
	if len(parts) > 1 {
		var buf strings.Builder
		buf.WriteString(errorStyle.Render(fmt.Sprintf("%d problems:", len(parts))))
		buf.WriteByte('\n')
		for _, part := range parts {
			buf.WriteString("   ")
			buf.WriteString(errContextStyle.Render("- " + part.Error()))
			buf.WriteByte('\n')
		}
		return buf.String()
	}

	message := r.formatter.Format(err)
	full := lerrors.NewTextFormatter().Format(err)
	if hint := strings.TrimSpace(strings.TrimPrefix(full, message)); hint != "" {
		return errorStyle.Render(message) + "\n\n   " + errContextStyle.Render(hint) + "\n"
	}
	return errorStyle.Render(message)
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(r.Render(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

// fail writes err to w, as JSON when asJSON is set, and returns the
// CommandError main exits with.
func fail(w io.Writer, asJSON bool, summary string, err error) error {
	if asJSON {
		_, _ = fmt.Fprintln(w, lerrors.NewJSONFormatter().FormatAll([]error{err}))
		return NewCommandError(1)
	}

	_, _ = fmt.Fprintln(w, NewErrorRenderer().Render(err))
	if summary != "" {
		_, _ = fmt.Fprintln(w)
		printError(w, summary)
	}
	return NewCommandError(1)
}
