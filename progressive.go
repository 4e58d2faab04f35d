// Package progressive is a test-execution orchestration layer: it
// reorders suite trees so that scopes sharing identical fixture sets
// run contiguously, and drives a single-line progress bar that
// survives concurrent test output and interactive debugger sessions.
package progressive

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"

	"github.com/testinfra/progressive/debugger"
	"github.com/testinfra/progressive/exitcodes"
	"github.com/testinfra/progressive/guard"
	"github.com/testinfra/progressive/progress"
	"github.com/testinfra/progressive/registry"
	"github.com/testinfra/progressive/reorder"
	"github.com/testinfra/progressive/reporting"
	"github.com/testinfra/progressive/runner"
	"github.com/testinfra/progressive/types"
	"github.com/testinfra/progressive/ui"
)

// progressive implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &progressive{}

// TestRunner is the seam between the service and the run loop.
// Satisfied by *runner.Runner.
type TestRunner interface {
	Run(ctx context.Context) (*runner.Result, error)
}

// progressive is the run-level service tying discovery, reordering,
// progress display and execution together.
type progressive struct {
	ctx         context.Context
	config      *Config
	version     string
	registry    *registry.Registry
	coordinator *progress.Coordinator
	debugger    *debugger.Debugger
	guard       *guard.Guard
	runner      TestRunner
	scheduler   TestScheduler
	reporter    MetricsReporter
	result      *runner.Result

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, executor runner.TestExecutor, fixtures runner.FixtureManager, shutdownCallback func(error)) (*progressive, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if executor == nil {
		return nil, errors.New("test executor is required")
	}

	config.Log.Debug("Creating progressive with config",
		"manifest", config.ManifestFile,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce,
		"showAdvisories", config.ShowAdvisories)

	reg, err := registry.NewRegistry(registry.Config{
		Log:          config.Log,
		ManifestFile: config.ManifestFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	coordinator := progress.NewCoordinator(progress.Config{
		Log:          config.Log,
		ForceEnabled: config.ForceProgress,
	})
	dbg := debugger.New(config.Log)

	outputGuard, err := guard.New(guard.Config{
		Log:     config.Log,
		Streams: guard.NewStdStreams(),
		Hooks:   dbg,
		Bar:     coordinator,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create output guard: %w", err)
	}

	testRunner, err := runner.NewRunner(runner.Config{
		Log:         config.Log,
		Producer:    reg.Suite,
		Executor:    executor,
		Fixtures:    fixtures,
		Coordinator: coordinator,
		Guard:       outputGuard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create test runner: %w", err)
	}
	config.Log.Info("progressive.New: created registry, guard and test runner")

	p := &progressive{
		ctx:              ctx,
		config:           config,
		version:          version,
		registry:         reg,
		coordinator:      coordinator,
		debugger:         dbg,
		guard:            outputGuard,
		runner:           testRunner,
		scheduler:        NewIntervalScheduler(config.RunInterval, config.RunOnce, config.Log),
		reporter:         NewDefaultMetricsReporter(),
		shutdownCallback: shutdownCallback,
	}
	p.scheduler.RegisterCallback(p.runTests)
	return p, nil
}

// Start runs the tests once immediately and, in continuous mode,
// keeps running them at the configured interval.
// Start implements the cliapp.Lifecycle interface.
func (p *progressive) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if r := recover(); r != nil {
			p.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	p.ctx = ctx

	if p.config.ListOnly {
		p.printReorderedTree()
		go func() {
			p.shutdownCallback(nil)
		}()
		return nil
	}

	if p.config.RunOnce {
		p.config.Log.Info("Starting progressive in run-once mode")
	} else {
		p.config.Log.Info("Starting progressive in continuous mode", "interval", p.config.RunInterval)
	}

	if err := p.scheduler.Start(ctx); err != nil {
		p.config.Log.Error("Runtime error running tests", "error", err)
		return cli.Exit(err.Error(), exitcodes.RuntimeErr)
	}

	if p.config.RunOnce {
		p.config.Log.Info("Tests completed, exiting (run-once mode)")

		if p.result != nil && (p.result.Status == types.TestStatusFail || p.result.Status == types.TestStatusError) {
			p.config.Log.Warn("Run-once test run completed with failures, returning exit code 1")
			return NewTestFailureError(p.result.String())
		}

		// Only need to call this when we're in run-once mode and all tests passed
		go func() {
			p.shutdownCallback(nil)
		}()
	}
	return nil
}

// runTests runs all tests once and processes the results.
func (p *progressive) runTests() error {
	p.config.Log.Info("Running all tests...")
	result, err := p.runner.Run(p.ctx)
	if err != nil {
		// This is a runtime error (not a test failure)
		p.config.Log.Error("Runtime error running tests", "error", err)
		return NewRuntimeError(err)
	}
	p.result = result

	p.reporter.ReportResults(result)
	reporting.WriteSummary(os.Stdout, result, reporting.SummaryOptions{
		ShowAdvisories: p.config.ShowAdvisories,
	})
	fmt.Println(result.String())

	p.config.Log.Info("Test run completed", "run_id", result.RunID, "status", result.Status)
	return nil
}

// printReorderedTree shows what the run would execute, in order, with
// fixture annotations, without running anything.
func (p *progressive) printReorderedTree() {
	rebuilt := reorder.Rebuild(p.registry.Suite())
	fmt.Print(ui.RenderSuite(rebuilt))
}

// Stop stops the progressive service.
// Stop implements the cliapp.Lifecycle interface.
func (p *progressive) Stop(ctx context.Context) error {
	p.config.Log.Info("Stopping progressive")
	return p.scheduler.Stop()
}

// Stopped returns true if the progressive service is stopped.
// Stopped implements the cliapp.Lifecycle interface.
func (p *progressive) Stopped() bool {
	return p.scheduler.Stopped()
}

// WaitForShutdown blocks until all goroutines have terminated.
// This is useful in tests to ensure complete cleanup before moving to the next test.
func (p *progressive) WaitForShutdown(ctx context.Context) error {
	return p.scheduler.WaitForShutdown(ctx)
}
