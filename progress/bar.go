package progress

import (
	"fmt"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// DefaultTerminalWidth is the fallback width when detection fails.
const DefaultTerminalWidth = 80

// WidthFn probes the current terminal width in display cells.
type WidthFn func() int

// TerminalWidth returns a WidthFn reading the size of out when it is
// a terminal, falling back to DefaultTerminalWidth otherwise. The
// probe runs on every repaint so resizes take effect mid-run.
func TerminalWidth(out interface{ Fd() uintptr }) WidthFn {
	return func() int {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			return w
		}
		return DefaultTerminalWidth
	}
}

// FixedWidth returns a WidthFn reporting a constant width.
func FixedWidth(w int) WidthFn {
	return func() int { return w }
}

// renderBar builds the single-line bar content for the given counters.
// The line is sized to width: truncated by display cells when too
// long, padded with spaces when short, so a repaint fully overwrites
// the previous line and never wraps.
func renderBar(stats barStats, width int) string {
	ratio := stats.ratio()
	percent := int(ratio * 100)

	counts := fmt.Sprintf("%d/%d", stats.completed, stats.total)
	trouble := formatTrouble(stats)

	// Reserve one trailing cell so the cursor never touches the last
	// column; some terminals wrap eagerly when it does.
	avail := width - 1
	if avail < 1 {
		avail = 1
	}

	meterWidth := avail - runewidth.StringWidth(counts) - runewidth.StringWidth(trouble) - len(" 100% [] ")
	line := fmt.Sprintf("%s %3d%% %s%s", counts, percent, meter(ratio, meterWidth), trouble)

	visible := stripansi.Strip(line)
	if runewidth.StringWidth(visible) > avail {
		line = runewidth.Truncate(line, avail, "")
	}
	return runewidth.FillRight(line, avail)
}

// meter draws the [=====>    ] portion, or nothing when there is no
// room for a meaningful meter.
func meter(ratio float64, width int) string {
	if width < 4 {
		return ""
	}
	inner := width - 2
	filled := int(ratio * float64(inner))
	if filled > inner {
		filled = inner
	}
	var b strings.Builder
	b.WriteByte('[')
	if filled > 0 {
		b.WriteString(strings.Repeat("=", filled-1))
		b.WriteByte('>')
	}
	b.WriteString(strings.Repeat(" ", inner-filled))
	b.WriteByte(']')
	return b.String()
}

// formatTrouble summarizes non-pass counters, omitting zero counts so
// a clean run shows a bare meter.
func formatTrouble(stats barStats) string {
	var parts []string
	if stats.failed > 0 {
		parts = append(parts, fmt.Sprintf("%d fail", stats.failed))
	}
	if stats.errored > 0 {
		parts = append(parts, fmt.Sprintf("%d err", stats.errored))
	}
	if stats.skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skip", stats.skipped))
	}
	if stats.deprecated > 0 {
		parts = append(parts, fmt.Sprintf("%d depr", stats.deprecated))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, ", ")
}

// barStats is the snapshot the renderer works from.
type barStats struct {
	total      int
	completed  int
	failed     int
	errored    int
	skipped    int
	deprecated int
}

// ratio returns completion clamped to [0, 1]. The total may be stale
// or undercounted; display accuracy degrades instead of erroring.
func (s barStats) ratio() float64 {
	if s.total <= 0 {
		if s.completed > 0 {
			return 1
		}
		return 0
	}
	r := float64(s.completed) / float64(s.total)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
