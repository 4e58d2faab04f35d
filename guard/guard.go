// Package guard intercepts the process-wide output targets and the
// debugger's entry points for the duration of a run, so that test
// output and debugger sessions never smear the progress bar, and
// restores the displaced targets exactly on deactivation.
package guard

import (
	"io"

	"github.com/ethereum/go-ethereum/log"

	"github.com/testinfra/progressive/debugger"
)

// Bar is the progress surface the guard coordinates with. Satisfied
// by *progress.Coordinator.
type Bar interface {
	EraseLine()
	RedrawLine()
	Suspend()
	Resume()
}

// Config contains guard configuration
type Config struct {
	Log     log.Logger
	Streams Streams        // output slots to intercept, required
	Hooks   debugger.Hooks // debugger entry points, optional
	Bar     Bar            // required
}

// frame records what one activation displaced and what it installed
// in its place. Installed writers are kept so a later deactivation
// can tell whether someone else swapped the target in the meantime.
type frame struct {
	stdout, stderr                   io.Writer
	installedStdout, installedStderr io.Writer
	breakFn                          debugger.BreakFunc
	loopFn                           debugger.LoopFunc
}

// Guard owns the stack of displaced output targets and debugger
// hooks. Activations nest: a run-level activation and per-test
// activations may overlap, and each deactivation pops exactly the
// frame its activation pushed (LIFO only).
type Guard struct {
	logger  log.Logger
	streams Streams
	hooks   debugger.Hooks
	bar     Bar
	stack   []frame
}

// New creates an inactive Guard.
func New(cfg Config) (*Guard, error) {
	if cfg.Streams == nil {
		return nil, errStreamsRequired
	}
	if cfg.Bar == nil {
		return nil, errBarRequired
	}
	logger := cfg.Log
	if logger == nil {
		logger = log.Root()
	}
	return &Guard{
		logger:  logger,
		streams: cfg.Streams,
		hooks:   cfg.Hooks,
		bar:     cfg.Bar,
	}, nil
}

// Activate pushes the currently installed output targets and debugger
// hooks, then installs interceptors: writes erase the bar, forward
// unmodified to the displaced target, and repaint; debugger entries
// suspend the bar for the session and resume on any exit path.
func (g *Guard) Activate() {
	f := frame{
		stdout: g.streams.Stdout(),
		stderr: g.streams.Stderr(),
	}
	wout := &barWriter{dst: f.stdout, bar: g.bar}
	werr := &barWriter{dst: f.stderr, bar: g.bar}
	g.streams.SetStdout(wout)
	g.streams.SetStderr(werr)
	f.installedStdout = wout
	f.installedStderr = werr

	if g.hooks != nil {
		f.breakFn = g.hooks.BreakHook()
		f.loopFn = g.hooks.LoopHook()
		g.hooks.SetBreakHook(g.wrapEntry(f.breakFn))
		g.hooks.SetLoopHook(g.wrapEntry(f.loopFn))
	}

	g.stack = append(g.stack, f)
}

// Deactivate pops the most recent activation and restores precisely
// the targets it displaced. Finding a target that is not the one this
// guard installed means another party swapped it since activation;
// that is logged and the saved target restored anyway, best effort. A
// reporting-layer conflict must never abort a test run.
func (g *Guard) Deactivate() {
	if len(g.stack) == 0 {
		g.logger.Warn("Guard deactivated without matching activation")
		return
	}
	f := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]

	if g.streams.Stdout() != f.installedStdout {
		g.logger.Warn("Stdout target was replaced since activation, restoring saved target")
	}
	if g.streams.Stderr() != f.installedStderr {
		g.logger.Warn("Stderr target was replaced since activation, restoring saved target")
	}
	g.streams.SetStdout(f.stdout)
	g.streams.SetStderr(f.stderr)

	if g.hooks != nil {
		g.hooks.SetBreakHook(f.breakFn)
		g.hooks.SetLoopHook(f.loopFn)
	}
}

// Depth returns the number of activations currently outstanding.
func (g *Guard) Depth() int {
	return len(g.stack)
}

// wrapEntry suspends the bar around a debugger entry point. Resume is
// deferred so abnormal exits from the session still repaint the bar.
func (g *Guard) wrapEntry(next func()) func() {
	return func() {
		g.bar.Suspend()
		defer g.bar.Resume()
		if next != nil {
			next()
		}
	}
}
