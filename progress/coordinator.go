// Package progress owns the run-wide outcome counters and the live
// single-line progress bar painted beneath test output.
package progress

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"github.com/testinfra/progressive/types"
)

// State is the coordinator's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSuspended
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Config contains coordinator configuration
type Config struct {
	Out          io.Writer  // bar target, defaults to os.Stderr
	Log          log.Logger // defaults to log.Root()
	Width        WidthFn    // terminal width probe, defaults to probing Out
	ForceEnabled bool       // paint even when Out is not a terminal
}

// Coordinator owns one run's ProgressState: the total, the
// per-outcome counters and the painted bar line. It is the single
// writer of that state. The run is single-threaded and cooperative,
// so no locking is involved; the only suspension point is a debugger
// session, handled via Suspend/Resume depth counting.
type Coordinator struct {
	out     io.Writer
	logger  log.Logger
	width   WidthFn
	enabled bool

	state        State
	suspendDepth int
	total        int
	stats        types.ResultStats
	lastLine     string
}

// NewCoordinator creates an idle coordinator. The bar only paints
// when Out is a terminal, unless ForceEnabled is set; counters are
// maintained either way.
func NewCoordinator(cfg Config) *Coordinator {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	logger := cfg.Log
	if logger == nil {
		logger = log.Root()
	}
	enabled := cfg.ForceEnabled
	width := cfg.Width
	if f, ok := out.(*os.File); ok {
		if !enabled {
			enabled = isatty.IsTerminal(f.Fd())
		}
		if width == nil {
			width = TerminalWidth(f)
		}
	}
	if width == nil {
		width = FixedWidth(DefaultTerminalWidth)
	}
	return &Coordinator{
		out:     out,
		logger:  logger,
		width:   width,
		enabled: enabled,
		state:   StateIdle,
	}
}

// Start initializes the counters for a run of total tests and paints
// the initial bar.
func (c *Coordinator) Start(total int) {
	c.total = total
	c.stats = types.ResultStats{Total: total, StartTime: time.Now()}
	c.state = StateRunning
	c.suspendDepth = 0
	c.lastLine = ""
	c.paint()
}

// Record counts one outcome and repaints the bar. Outcomes beyond the
// announced total still count; the displayed ratio clamps at 100%
// rather than erroring on a stale total.
func (c *Coordinator) Record(status types.TestStatus) {
	if c.state == StateIdle {
		c.logger.Warn("Outcome recorded before start", "status", status)
		return
	}
	c.stats.Record(status)
	if c.total > 0 && c.stats.Completed() >= c.total && c.state == StateRunning {
		c.state = StateFinished
	}
	if c.suspendDepth == 0 {
		c.paint()
	}
}

// Suspend hides the bar for an interactive session. Suspends nest: a
// debugger entered from within an already-suspended debugger session
// increments the depth, and only the outermost Resume repaints.
func (c *Coordinator) Suspend() {
	c.suspendDepth++
	if c.suspendDepth == 1 {
		c.eraseLine()
		if c.state == StateRunning {
			c.state = StateSuspended
		}
	}
}

// Resume undoes one Suspend. At depth zero the bar is repainted from
// the current counters, reproducing the exact prior line when nothing
// was recorded in between. An unbalanced Resume is logged and
// ignored.
func (c *Coordinator) Resume() {
	if c.suspendDepth == 0 {
		c.logger.Warn("Resume without matching suspend")
		return
	}
	c.suspendDepth--
	if c.suspendDepth == 0 {
		if c.state == StateSuspended {
			c.state = StateRunning
		}
		c.paint()
	}
}

// Finish ends the run: the bar is erased, leaving the cursor at
// column zero for the summary that follows.
func (c *Coordinator) Finish() {
	c.eraseLine()
	c.stats.EndTime = time.Now()
	c.state = StateFinished
}

// EraseLine clears the painted bar so a diagnostic line can be
// written cleanly in its place. Intended for output interceptors;
// state and counters are untouched.
func (c *Coordinator) EraseLine() {
	if c.suspendDepth == 0 {
		c.eraseLine()
	}
}

// RedrawLine repaints the bar after an intercepted write.
func (c *Coordinator) RedrawLine() {
	if c.suspendDepth == 0 && (c.state == StateRunning || c.state == StateFinished) {
		c.paint()
	}
}

// Ratio returns completion clamped to [0, 1].
func (c *Coordinator) Ratio() float64 {
	return c.snapshot().ratio()
}

// Stats returns a copy of the run counters.
func (c *Coordinator) Stats() types.ResultStats {
	return c.stats
}

// Total returns the announced test total.
func (c *Coordinator) Total() int {
	return c.total
}

// State returns the coordinator's lifecycle state.
func (c *Coordinator) State() State {
	return c.state
}

// SuspendDepth returns the current suspension nesting depth.
func (c *Coordinator) SuspendDepth() int {
	return c.suspendDepth
}

func (c *Coordinator) snapshot() barStats {
	return barStats{
		total:      c.total,
		completed:  c.stats.Completed(),
		failed:     c.stats.Failed,
		errored:    c.stats.Errored,
		skipped:    c.stats.Skipped,
		deprecated: c.stats.Deprecated,
	}
}

func (c *Coordinator) paint() {
	if !c.enabled {
		return
	}
	line := renderBar(c.snapshot(), c.width())
	// Carriage return, no newline: the next paint overwrites in place.
	_, _ = io.WriteString(c.out, "\r"+line)
	c.lastLine = line
}

func (c *Coordinator) eraseLine() {
	if !c.enabled || c.lastLine == "" {
		return
	}
	cells := runewidth.StringWidth(stripansi.Strip(c.lastLine))
	_, _ = io.WriteString(c.out, "\r"+strings.Repeat(" ", cells)+"\r")
	c.lastLine = ""
}
