package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/importledger/output"
)

// slowOperation is the duration from which an operation is highlighted.
const slowOperation = 100 * time.Millisecond

// formatTimingTree writes the tree rooted at root, e.g.:
//
//	totals 2026-10: 12ms
//	├─ ledger.load ledger_10_2026.xlsx: 7ms
//	└─ ledger.totals ledger_10_2026.xlsx: 5ms
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	name := root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, formatDuration(root.end.Sub(root.start)))

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	duration := node.end.Sub(node.start)

	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	if styles != nil {
		timing := formatDuration(duration)
		if duration >= slowOperation {
			timing = styles.Warning(timing)
		} else {
			timing = styles.Dim(timing)
		}
		_, _ = fmt.Fprintf(w, "%s%s: %s\n", styles.Dim(prefix+branch), node.name, timing)
	} else {
		_, _ = fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, node.name, formatDuration(duration))
	}

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

// formatDuration shows milliseconds below one second and seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
