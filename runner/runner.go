// Package runner drives one sequential test run: it counts the suite,
// rebuilds it for fixture locality, guards the output streams, and
// feeds every outcome to the progress coordinator. The actual test
// execution engine and fixture implementations belong to the host
// framework and are consumed through interfaces.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/testinfra/progressive/counter"
	"github.com/testinfra/progressive/guard"
	"github.com/testinfra/progressive/metrics"
	"github.com/testinfra/progressive/progress"
	"github.com/testinfra/progressive/reorder"
	"github.com/testinfra/progressive/types"
)

// TestExecutor is the host framework's execution engine: it runs one
// unit and reports the outcome. A returned error describes a problem
// running the test, not a test assertion failure; it is recorded as
// an error outcome and never aborts the run.
type TestExecutor interface {
	RunTest(ctx context.Context, unit *types.TestUnit) (types.TestStatus, error)
}

// FixtureManager is the host framework's shared-fixture lifecycle.
// Setup and Teardown are invoked according to the advisory flags the
// reorderer wrote on each scope.
type FixtureManager interface {
	Setup(ctx context.Context, scope *types.Context) error
	Teardown(ctx context.Context, scope *types.Context) error
}

// Outcome captures one completed test.
type Outcome struct {
	Unit     *types.TestUnit
	Suite    string
	Status   types.TestStatus
	Err      error
	Duration time.Duration
}

// Result captures the complete test run.
type Result struct {
	RunID    string
	Status   types.TestStatus
	Stats    types.ResultStats
	Duration time.Duration
	Outcomes []Outcome
}

func (r *Result) String() string {
	return fmt.Sprintf("run %s: %s (%d tests, %d passed, %d failed, %d errored, %d skipped, %d deprecated)",
		r.RunID, r.Status, r.Stats.Total, r.Stats.Passed, r.Stats.Failed,
		r.Stats.Errored, r.Stats.Skipped, r.Stats.Deprecated)
}

// Config contains runner configuration
type Config struct {
	Log         log.Logger
	Producer    counter.SuiteProducer // required
	Executor    TestExecutor          // required
	Fixtures    FixtureManager        // optional; scopes run without fixture calls when nil
	Coordinator *progress.Coordinator // required
	Guard       *guard.Guard          // optional
}

// Runner implements the sequential run loop.
type Runner struct {
	log         log.Logger
	producer    counter.SuiteProducer
	executor    TestExecutor
	fixtures    FixtureManager
	coordinator *progress.Coordinator
	guard       *guard.Guard
	tracer      trace.Tracer
	runID       string
}

// NewRunner creates a runner from config.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Producer == nil {
		return nil, fmt.Errorf("suite producer is required")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("test executor is required")
	}
	if cfg.Coordinator == nil {
		return nil, fmt.Errorf("progress coordinator is required")
	}
	logger := cfg.Log
	if logger == nil {
		logger = log.Root()
	}
	return &Runner{
		log:         logger,
		producer:    cfg.Producer,
		executor:    cfg.Executor,
		fixtures:    cfg.Fixtures,
		coordinator: cfg.Coordinator,
		guard:       cfg.Guard,
		tracer:      otel.Tracer("progressive/runner"),
	}, nil
}

// Run executes the whole suite once. The producer is invoked twice
// (count, then execute); the suite actually executed is rebuilt so
// that scopes sharing identical fixture sets run contiguously.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.runID = uuid.New().String()
	r.log.Info("Starting test run", "runID", r.runID)

	total, suite := counter.Count(r.producer, r.log)
	if suite == nil {
		return nil, fmt.Errorf("suite producer returned no suite")
	}
	rebuilt := reorder.Rebuild(suite)
	r.log.Debug("Rebuilt suite for fixture locality",
		"scopes", len(rebuilt.Children), "totalTests", total)

	if r.guard != nil {
		r.guard.Activate()
		defer r.guard.Deactivate()
	}

	start := time.Now()
	r.coordinator.Start(total)

	var outcomes []Outcome
	for _, scope := range rebuilt.Children {
		outcomes = append(outcomes, r.runScope(ctx, scope)...)
	}

	r.coordinator.Finish()
	stats := r.coordinator.Stats()

	result := &Result{
		RunID:    r.runID,
		Status:   stats.Status(),
		Stats:    stats,
		Duration: time.Since(start),
		Outcomes: outcomes,
	}
	r.log.Info("Test run complete",
		"runID", r.runID,
		"status", result.Status,
		"completed", stats.Completed(),
		"total", stats.Total,
		"duration", result.Duration)
	return result, nil
}

// runScope runs every unit of one rebuilt node, honoring the advisory
// setup/teardown flags on its fixture scope.
func (r *Runner) runScope(ctx context.Context, scope *types.Suite) []Outcome {
	sc := scope.Context
	if scope.HasFixtureScope() && r.fixtures != nil {
		if sc.ShouldSetupFixtures {
			if err := r.fixtures.Setup(ctx, sc); err != nil {
				r.log.Error("Fixture setup failed, erroring scope", "scope", sc.Name, "err", err)
				metrics.RecordErrorDetails("fixture setup failed", err)
				return r.errorScope(scope, fmt.Errorf("fixture setup: %w", err))
			}
		}
		if sc.ShouldTeardownFixtures {
			defer func() {
				if err := r.fixtures.Teardown(ctx, sc); err != nil {
					r.log.Error("Fixture teardown failed", "scope", sc.Name, "err", err)
					metrics.RecordErrorDetails("fixture teardown failed", err)
				}
			}()
		}
	}

	var outcomes []Outcome
	for _, leaf := range scope.TestUnits() {
		outcomes = append(outcomes, r.runUnit(ctx, scope.Name, leaf))
	}
	return outcomes
}

// errorScope records an error outcome for every unit of a scope whose
// fixtures could not be set up, without executing any of them.
func (r *Runner) errorScope(scope *types.Suite, err error) []Outcome {
	var outcomes []Outcome
	for _, leaf := range scope.TestUnits() {
		r.coordinator.Record(types.TestStatusError)
		metrics.RecordOutcome(r.runID, types.TestStatusError)
		outcomes = append(outcomes, Outcome{
			Unit:   unitOf(leaf),
			Suite:  scope.Name,
			Status: types.TestStatusError,
			Err:    err,
		})
	}
	return outcomes
}

func (r *Runner) runUnit(ctx context.Context, suiteName string, leaf *types.Suite) Outcome {
	unit := unitOf(leaf)
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("test %s", unit.Name))
	defer span.End()

	start := time.Now()
	status, err := r.executor.RunTest(ctx, unit)
	duration := time.Since(start)

	if err != nil && !status.IsValid() {
		status = types.TestStatusError
	}
	if !status.IsValid() {
		r.log.Warn("Executor returned unknown status, counting as error",
			"test", unit.Name, "status", status)
		status = types.TestStatusError
	}

	r.coordinator.Record(status)
	metrics.RecordOutcome(r.runID, status)
	r.log.Debug("Test completed",
		"test", unit.Name, "status", status, "duration", duration)

	return Outcome{
		Unit:     unit,
		Suite:    suiteName,
		Status:   status,
		Err:      err,
		Duration: duration,
	}
}

// unitOf returns the test unit of a leaf, synthesizing one for a
// childless container so the executor always gets an identity.
func unitOf(leaf *types.Suite) *types.TestUnit {
	if leaf.Unit != nil {
		return leaf.Unit
	}
	return &types.TestUnit{ID: leaf.Name, Name: leaf.Name}
}
