package runner

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testinfra/progressive/progress"
	"github.com/testinfra/progressive/types"
)

// fakeExecutor returns per-test statuses and records execution order.
type fakeExecutor struct {
	statuses map[string]types.TestStatus
	errs     map[string]error
	ran      []string
}

func (e *fakeExecutor) RunTest(_ context.Context, unit *types.TestUnit) (types.TestStatus, error) {
	e.ran = append(e.ran, unit.Name)
	if err, ok := e.errs[unit.Name]; ok {
		return "", err
	}
	if s, ok := e.statuses[unit.Name]; ok {
		return s, nil
	}
	return types.TestStatusPass, nil
}

// fakeFixtures records setup and teardown calls by scope name.
type fakeFixtures struct {
	setups    []string
	teardowns []string
	failSetup map[string]error
}

func (f *fakeFixtures) Setup(_ context.Context, scope *types.Context) error {
	f.setups = append(f.setups, scope.Name)
	if err, ok := f.failSetup[scope.Name]; ok {
		return err
	}
	return nil
}

func (f *fakeFixtures) Teardown(_ context.Context, scope *types.Context) error {
	f.teardowns = append(f.teardowns, scope.Name)
	return nil
}

func fixtureScope(name string, fixtures []string, tests ...string) *types.Suite {
	children := make([]*types.Suite, 0, len(tests))
	for _, tn := range tests {
		children = append(children, types.NewTest(name+"/"+tn, tn))
	}
	s := types.NewContainer(name, children...)
	ctx := types.NewContext(name, fixtures...)
	ctx.HasSetup = true
	ctx.HasTeardown = true
	s.Context = ctx
	return s
}

func newTestRunner(t *testing.T, producer func() *types.Suite, exec TestExecutor, fixtures FixtureManager) *Runner {
	t.Helper()
	var buf bytes.Buffer
	coordinator := progress.NewCoordinator(progress.Config{
		Out:   &buf,
		Log:   log.New(),
		Width: progress.FixedWidth(60),
	})
	r, err := NewRunner(Config{
		Log:         log.New(),
		Producer:    producer,
		Executor:    exec,
		Fixtures:    fixtures,
		Coordinator: coordinator,
	})
	require.NoError(t, err)
	return r
}

func TestNewRunnerValidation(t *testing.T) {
	coordinator := progress.NewCoordinator(progress.Config{Out: &bytes.Buffer{}, Log: log.New()})
	producer := func() *types.Suite { return types.NewContainer("root") }
	exec := &fakeExecutor{}

	_, err := NewRunner(Config{Executor: exec, Coordinator: coordinator})
	assert.ErrorContains(t, err, "producer is required")

	_, err = NewRunner(Config{Producer: producer, Coordinator: coordinator})
	assert.ErrorContains(t, err, "executor is required")

	_, err = NewRunner(Config{Producer: producer, Executor: exec})
	assert.ErrorContains(t, err, "coordinator is required")
}

func TestRunAllPass(t *testing.T) {
	producer := func() *types.Suite {
		return types.NewContainer("root",
			types.NewTest("a", "a"),
			types.NewTest("b", "b"),
		)
	}
	exec := &fakeExecutor{}
	r := newTestRunner(t, producer, exec, nil)

	result, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, types.TestStatusPass, result.Status)
	assert.Equal(t, 2, result.Stats.Total)
	assert.Equal(t, 2, result.Stats.Passed)
	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.Outcomes, 2)
	assert.Equal(t, []string{"a", "b"}, exec.ran)
}

func TestRunMixedOutcomes(t *testing.T) {
	producer := func() *types.Suite {
		return types.NewContainer("root",
			types.NewTest("a", "a"),
			types.NewTest("b", "b"),
			types.NewTest("c", "c"),
			types.NewTest("d", "d"),
		)
	}
	exec := &fakeExecutor{statuses: map[string]types.TestStatus{
		"b": types.TestStatusFail,
		"c": types.TestStatusSkip,
		"d": types.TestStatusError,
	}}
	r := newTestRunner(t, producer, exec, nil)

	result, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, types.TestStatusError, result.Status)
	assert.Equal(t, 1, result.Stats.Passed)
	assert.Equal(t, 1, result.Stats.Failed)
	assert.Equal(t, 1, result.Stats.Skipped)
	assert.Equal(t, 1, result.Stats.Errored)
}

// TestRunGroupsFixtureScopes verifies the execution order follows the
// rebuilt suite: scopes sharing fixtures run contiguously, with setup
// once at the front of the group and teardown once at the back.
func TestRunGroupsFixtureScopes(t *testing.T) {
	producer := func() *types.Suite {
		return types.NewContainer("root",
			fixtureScope("u1", []string{"users.json"}, "t1"),
			fixtureScope("o1", []string{"orders.json"}, "t2"),
			fixtureScope("u2", []string{"users.json"}, "t3"),
		)
	}
	exec := &fakeExecutor{}
	fixtures := &fakeFixtures{}
	r := newTestRunner(t, producer, exec, fixtures)

	result, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.Stats.Total)
	assert.Equal(t, []string{"t1", "t3", "t2"}, exec.ran)
	assert.Equal(t, []string{"u1", "o1"}, fixtures.setups)
	assert.Equal(t, []string{"u2", "o1"}, fixtures.teardowns)
}

// TestRunSetupFailureErrorsScope verifies a failed setup errors every
// unit of its scope without executing any, and later scopes still run.
func TestRunSetupFailureErrorsScope(t *testing.T) {
	producer := func() *types.Suite {
		return types.NewContainer("root",
			fixtureScope("broken", []string{"bad.json"}, "t1", "t2"),
			fixtureScope("ok", []string{"good.json"}, "t3"),
		)
	}
	exec := &fakeExecutor{}
	fixtures := &fakeFixtures{failSetup: map[string]error{
		"broken": fmt.Errorf("fixture file missing"),
	}}
	r := newTestRunner(t, producer, exec, fixtures)

	result, err := r.Run(context.Background())

	require.NoError(t, err, "a test-level problem never aborts the run")
	assert.Equal(t, types.TestStatusError, result.Status)
	assert.Equal(t, 2, result.Stats.Errored)
	assert.Equal(t, 1, result.Stats.Passed)
	assert.Equal(t, []string{"t3"}, exec.ran, "units of the failed scope must not execute")

	for _, o := range result.Outcomes[:2] {
		assert.Equal(t, types.TestStatusError, o.Status)
		assert.ErrorContains(t, o.Err, "fixture setup")
	}
}

func TestRunExecutorErrorCountsAsError(t *testing.T) {
	producer := func() *types.Suite {
		return types.NewContainer("root", types.NewTest("a", "a"))
	}
	exec := &fakeExecutor{errs: map[string]error{
		"a": fmt.Errorf("harness crashed"),
	}}
	r := newTestRunner(t, producer, exec, nil)

	result, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Errored)
	assert.ErrorContains(t, result.Outcomes[0].Err, "harness crashed")
}

func TestRunUnknownStatusCountsAsError(t *testing.T) {
	producer := func() *types.Suite {
		return types.NewContainer("root", types.NewTest("a", "a"))
	}
	exec := &fakeExecutor{statuses: map[string]types.TestStatus{
		"a": types.TestStatus("mystery"),
	}}
	r := newTestRunner(t, producer, exec, nil)

	result, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Errored)
	assert.Equal(t, types.TestStatusError, result.Outcomes[0].Status)
}

func TestRunNilProducerResult(t *testing.T) {
	producer := func() *types.Suite { return nil }
	r := newTestRunner(t, producer, &fakeExecutor{}, nil)

	_, err := r.Run(context.Background())
	assert.ErrorContains(t, err, "no suite")
}

// TestRunWithoutFixtureManager verifies fixture scopes run fine with
// no manager wired: the advisory flags are simply not acted on.
func TestRunWithoutFixtureManager(t *testing.T) {
	producer := func() *types.Suite {
		return types.NewContainer("root",
			fixtureScope("s", []string{"f.json"}, "t1"),
		)
	}
	exec := &fakeExecutor{}
	r := newTestRunner(t, producer, exec, nil)

	result, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Passed)
}

func TestRunChildlessContainerRunsAsUnit(t *testing.T) {
	producer := func() *types.Suite {
		return types.NewContainer("root", types.NewContainer("lonely"))
	}
	exec := &fakeExecutor{}
	r := newTestRunner(t, producer, exec, nil)

	result, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"lonely"}, exec.ran)
	assert.Equal(t, 1, result.Stats.Total)
}

func TestResultString(t *testing.T) {
	result := &Result{
		RunID:  "abc",
		Status: types.TestStatusFail,
		Stats:  types.ResultStats{Total: 3, Passed: 2, Failed: 1},
	}
	s := result.String()
	assert.Contains(t, s, "run abc")
	assert.Contains(t, s, "3 tests")
	assert.Contains(t, s, "1 failed")
}
