package reorder

import (
	"github.com/testinfra/progressive/types"
)

// RebuiltSuiteName names the container wrapping a reordered sequence.
const RebuiltSuiteName = "fixture-ordered"

// Annotate advises a bucket's members about fixture responsibility:
// the first member sets up, the last tears down, everyone else does
// neither. A single-member bucket both sets up and tears down.
// Empty-key buckets are left untouched, so nodes without fixtures
// keep their incoming flags.
func Annotate(key FixtureKey, bucket []*types.Suite) {
	if key.IsEmpty() || len(bucket) == 0 {
		return
	}
	for i, node := range bucket {
		node.SetSetupFlag(i == 0)
		node.SetTeardownFlag(i == len(bucket)-1)
	}
}

// Flatten annotates every bucket and concatenates their members into
// one linear sequence, buckets in key-first-seen order, members in
// encounter order.
func Flatten(b *Bucketer) []*types.Suite {
	var flattened []*types.Suite
	for _, key := range b.Keys() {
		bucket := b.Bucket(key)
		Annotate(key, bucket)
		flattened = append(flattened, bucket...)
	}
	return flattened
}

// Build wraps a linear sequence in a single new container suite,
// ready for sequential execution. The sequence nodes are referenced,
// not copied.
func Build(sequence []*types.Suite) *types.Suite {
	return types.NewContainer(RebuiltSuiteName, sequence...)
}

// Rebuild runs the whole pipeline: traverse the tree to the fixture
// granularity, bucket by fixture-set identity, annotate setup and
// teardown responsibility, and wrap the flattened sequence in a new
// container. The result is a permutation of the traversal's visited
// nodes; no node is dropped, duplicated or invented.
func Rebuild(root *types.Suite) *types.Suite {
	bucketer := NewBucketer()
	Traverse(root, bucketer.Add)
	return Build(Flatten(bucketer))
}
