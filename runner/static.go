package runner

import (
	"context"

	"github.com/testinfra/progressive/types"
)

// StaticExecutor reports a fixed status for every unit without
// executing anything. The CLI uses it to dry-run a manifest: the
// discovery, reordering and display pipeline runs end to end while
// the actual execution engine stays with the host framework.
type StaticExecutor struct {
	Status types.TestStatus
}

var _ TestExecutor = StaticExecutor{}

func (e StaticExecutor) RunTest(ctx context.Context, unit *types.TestUnit) (types.TestStatus, error) {
	return e.Status, nil
}
