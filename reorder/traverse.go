// Package reorder rearranges a suite tree so that suites sharing an
// identical set of fixtures run contiguously, and advises each group
// which member sets the fixtures up and which tears them down.
package reorder

import (
	"github.com/testinfra/progressive/types"
)

// Traverse walks a nested suite tree and invokes visit exactly once
// per node at the coarsest granularity that owns fixture
// responsibility: a test unit, or a container whose context has setup
// or teardown routines. It does not descend below such a node.
//
// Granularity is capped at the first fixture-bearing level on
// purpose. Reordering beneath it would require re-deriving the nested
// setup/teardown ordering that belongs to the host framework, and a
// module-level setup the host saw fit to write is not assumed cheaper
// to repeat than the fixtures being optimized for.
//
// The tree is assumed acyclic; cyclic structures are undefined
// behavior.
func Traverse(root *types.Suite, visit func(*types.Suite)) {
	if root == nil {
		return
	}
	if root.IsLeaf() || root.HasFixtureScope() {
		visit(root)
		return
	}
	for _, child := range root.Children {
		Traverse(child, visit)
	}
}
