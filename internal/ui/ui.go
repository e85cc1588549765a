package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

var (
	isTerminal   = isatty.IsTerminal(os.Stdout.Fd())
	colorEnabled = true
)

// DisableColors forces plain output regardless of terminal detection. Styles
// already built are rebuilt plain.
func DisableColors() {
	colorEnabled = false
	isTerminal = false
	initStyles()
}

// IsTerminal reports whether styled output goes to an interactive terminal.
func IsTerminal() bool {
	return isTerminal && colorEnabled
}

// FormatBytes renders a byte count for scan summaries.
func FormatBytes(bytes int64) string {
	return humanize.Bytes(uint64(bytes))
}

// FormatDuration renders a duration at the precision worth showing for a
// rename batch: milliseconds under a second, one decimal above.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	default:
		return fmt.Sprintf("%.1fh", d.Hours())
	}
}
