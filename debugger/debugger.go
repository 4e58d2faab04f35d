// Package debugger provides the in-process interactive debugger whose
// entry points the output guard wraps: a break entry and a readline
// command loop. Both are swappable hooks so a guard can interpose
// suspend/resume handling and later restore exactly what it displaced.
package debugger

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/peterh/liner"
)

// BreakFunc is the debugger's break-entry point.
type BreakFunc func()

// LoopFunc runs one interactive command-loop session.
type LoopFunc func()

// Hooks exposes the debugger's swappable entry points.
type Hooks interface {
	BreakHook() BreakFunc
	SetBreakHook(BreakFunc)
	LoopHook() LoopFunc
	SetLoopHook(LoopFunc)
}

// Debugger is a minimal interactive debugger: Break drops into a
// command loop that reads commands until the session continues. The
// loop may re-enter Break (a breakpoint hit while debugging), which
// callers wrapping the hooks must tolerate at arbitrary depth.
type Debugger struct {
	logger  log.Logger
	prompt  string
	breakFn BreakFunc
	loopFn  LoopFunc
}

// New creates a Debugger with the default break and loop behavior
// installed as its hooks.
func New(logger log.Logger) *Debugger {
	if logger == nil {
		logger = log.Root()
	}
	d := &Debugger{
		logger: logger,
		prompt: "(debug) ",
	}
	d.breakFn = d.enterLoop
	d.loopFn = d.commandLoop
	return d
}

// Break enters the debugger through the currently installed break
// hook.
func (d *Debugger) Break() {
	d.breakFn()
}

// BreakHook returns the installed break-entry hook.
func (d *Debugger) BreakHook() BreakFunc { return d.breakFn }

// SetBreakHook installs fn as the break-entry hook.
func (d *Debugger) SetBreakHook(fn BreakFunc) { d.breakFn = fn }

// LoopHook returns the installed command-loop hook.
func (d *Debugger) LoopHook() LoopFunc { return d.loopFn }

// SetLoopHook installs fn as the command-loop hook.
func (d *Debugger) SetLoopHook(fn LoopFunc) { d.loopFn = fn }

// enterLoop dispatches through the loop hook so a wrapped loop is
// honored even when Break is called directly.
func (d *Debugger) enterLoop() {
	d.loopFn()
}

// commandLoop reads and dispatches commands until the user continues
// or closes the input.
func (d *Debugger) commandLoop() {
	rl := liner.NewLiner()
	defer rl.Close()
	rl.SetCtrlCAborts(true)

	for {
		input, err := rl.Prompt(d.prompt)
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return
			}
			d.logger.Error("Failed to read debugger input", "err", err)
			return
		}
		if done := d.dispatch(strings.TrimSpace(input)); done {
			return
		}
	}
}

func (d *Debugger) dispatch(cmd string) bool {
	switch cmd {
	case "", "c", "continue", "q", "quit":
		return true
	case "h", "help":
		fmt.Println("commands: continue (c), quit (q), help (h)")
		return false
	default:
		fmt.Printf("unknown command %q; try 'help'\n", cmd)
		return false
	}
}
