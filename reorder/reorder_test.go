package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testinfra/progressive/types"
)

func fixtureSuite(name string, fixtures ...string) *types.Suite {
	s := types.NewContainer(name,
		types.NewTest(name+"/t1", "t1"),
		types.NewTest(name+"/t2", "t2"),
	)
	ctx := types.NewContext(name, fixtures...)
	ctx.HasSetup = true
	ctx.HasTeardown = true
	s.Context = ctx
	return s
}

func visitedNames(root *types.Suite) []string {
	var names []string
	Traverse(root, func(n *types.Suite) {
		names = append(names, n.Name)
	})
	return names
}

// TestTraverseStopsAtFixtureScope verifies that traversal does not
// descend below the first level that owns setup or teardown.
func TestTraverseStopsAtFixtureScope(t *testing.T) {
	scoped := fixtureSuite("scoped", "db")
	root := types.NewContainer("root",
		types.NewContainer("plain",
			types.NewTest("a", "a"),
			scoped,
		),
		types.NewTest("b", "b"),
	)

	assert.Equal(t, []string{"a", "scoped", "b"}, visitedNames(root))
}

// TestTraverseVisitsChildlessNodeAsLeaf verifies that a node with
// neither children nor fixtures is visited as a leaf.
func TestTraverseVisitsChildlessNodeAsLeaf(t *testing.T) {
	empty := types.NewContainer("empty")
	root := types.NewContainer("root", empty)

	assert.Equal(t, []string{"empty"}, visitedNames(root))
}

// TestTraverseIgnoresInertContext verifies that a container whose
// context has no setup or teardown capability is descended into.
func TestTraverseIgnoresInertContext(t *testing.T) {
	inert := types.NewContainer("inert", types.NewTest("a", "a"))
	inert.Context = types.NewContext("inert") // no HasSetup/HasTeardown

	assert.Equal(t, []string{"a"}, visitedNames(types.NewContainer("root", inert)))
}

func TestKeyForTreatsFixtureSetsAsUnordered(t *testing.T) {
	s1 := fixtureSuite("s1", "users.json", "products.json")
	s2 := fixtureSuite("s2", "products.json", "users.json")
	s3 := fixtureSuite("s3", "users.json")

	assert.Equal(t, KeyFor(s1), KeyFor(s2))
	assert.NotEqual(t, KeyFor(s1), KeyFor(s3))
}

func TestKeyForDedupesIdentifiers(t *testing.T) {
	s1 := fixtureSuite("s1", "a", "a", "b")
	s2 := fixtureSuite("s2", "a", "b")

	assert.Equal(t, KeyFor(s1), KeyFor(s2))
}

func TestKeyForEmpty(t *testing.T) {
	plain := types.NewTest("a", "a")
	assert.True(t, KeyFor(plain).IsEmpty())

	withCtx := types.NewContainer("c", types.NewTest("a", "a"))
	withCtx.Context = types.NewContext("c")
	assert.True(t, KeyFor(withCtx).IsEmpty())
}

// TestBucketerPreservesFirstEncounterOrder verifies both key order
// and member order within a bucket.
func TestBucketerPreservesFirstEncounterOrder(t *testing.T) {
	s1 := fixtureSuite("s1", "a")
	s2 := fixtureSuite("s2", "b")
	s3 := fixtureSuite("s3", "a")

	b := NewBucketer()
	b.Add(s1)
	b.Add(s2)
	b.Add(s3)

	require.Equal(t, 2, b.Len())
	keys := b.Keys()
	assert.Equal(t, []*types.Suite{s1, s3}, b.Bucket(keys[0]))
	assert.Equal(t, []*types.Suite{s2}, b.Bucket(keys[1]))
}

// TestAnnotateBucket verifies the setup/teardown invariant: exactly
// one member sets up (the first) and exactly one tears down (the
// last).
func TestAnnotateBucket(t *testing.T) {
	s1 := fixtureSuite("s1", "a")
	s2 := fixtureSuite("s2", "a")
	s3 := fixtureSuite("s3", "a")
	bucket := []*types.Suite{s1, s2, s3}

	Annotate(KeyFor(s1), bucket)

	assert.True(t, s1.Context.ShouldSetupFixtures)
	assert.False(t, s1.Context.ShouldTeardownFixtures)
	assert.False(t, s2.Context.ShouldSetupFixtures)
	assert.False(t, s2.Context.ShouldTeardownFixtures)
	assert.False(t, s3.Context.ShouldSetupFixtures)
	assert.True(t, s3.Context.ShouldTeardownFixtures)
}

func TestAnnotateSingleMemberBucket(t *testing.T) {
	s := fixtureSuite("s", "a")
	Annotate(KeyFor(s), []*types.Suite{s})

	assert.True(t, s.Context.ShouldSetupFixtures)
	assert.True(t, s.Context.ShouldTeardownFixtures)
}

// TestAnnotateLeavesEmptyKeyBucketAlone verifies that nodes without
// fixtures keep their incoming flags.
func TestAnnotateLeavesEmptyKeyBucketAlone(t *testing.T) {
	inert := types.NewContainer("inert", types.NewTest("a", "a"))
	inert.Context = types.NewContext("inert")
	inert.Context.HasSetup = true

	Annotate(EmptyKey, []*types.Suite{inert})

	assert.True(t, inert.Context.ShouldSetupFixtures)
	assert.True(t, inert.Context.ShouldTeardownFixtures)
}

// TestRebuildCanonicalExample: C1{A,B}, C2{}, C3{A,B} encountered in
// that order rebuild as [C1, C2, C3] with C1 setting up, C3 tearing
// down, and C2 untouched.
func TestRebuildCanonicalExample(t *testing.T) {
	c1 := fixtureSuite("C1", "A", "B")
	c2 := fixtureSuite("C2")
	c3 := fixtureSuite("C3", "A", "B")
	root := types.NewContainer("root", c1, c2, c3)

	rebuilt := Rebuild(root)

	require.Len(t, rebuilt.Children, 3)
	assert.Equal(t, []*types.Suite{c1, c2, c3}, rebuilt.Children)

	assert.True(t, c1.Context.ShouldSetupFixtures)
	assert.False(t, c1.Context.ShouldTeardownFixtures)
	assert.False(t, c3.Context.ShouldSetupFixtures)
	assert.True(t, c3.Context.ShouldTeardownFixtures)

	// C2 has the empty key; its flags stay at their defaults.
	assert.True(t, c2.Context.ShouldSetupFixtures)
	assert.True(t, c2.Context.ShouldTeardownFixtures)
}

// TestRebuildGroupsSharedFixtures verifies that scopes sharing a
// fixture set become contiguous even when interleaved on input.
func TestRebuildGroupsSharedFixtures(t *testing.T) {
	a1 := fixtureSuite("a1", "users.json")
	b1 := fixtureSuite("b1", "orders.json")
	a2 := fixtureSuite("a2", "users.json")
	b2 := fixtureSuite("b2", "orders.json")
	root := types.NewContainer("root", a1, b1, a2, b2)

	rebuilt := Rebuild(root)

	assert.Equal(t, []*types.Suite{a1, a2, b1, b2}, rebuilt.Children)
	assert.True(t, a1.Context.ShouldSetupFixtures)
	assert.True(t, a2.Context.ShouldTeardownFixtures)
	assert.True(t, b1.Context.ShouldSetupFixtures)
	assert.True(t, b2.Context.ShouldTeardownFixtures)
}

// TestRebuildIsPermutation verifies no node is dropped, duplicated or
// invented.
func TestRebuildIsPermutation(t *testing.T) {
	root := types.NewContainer("root",
		fixtureSuite("s1", "a"),
		types.NewTest("t1", "t1"),
		fixtureSuite("s2", "b"),
		types.NewTest("t2", "t2"),
		fixtureSuite("s3", "a"),
	)

	var visited []*types.Suite
	Traverse(root, func(n *types.Suite) { visited = append(visited, n) })

	rebuilt := Rebuild(root)
	require.Len(t, rebuilt.Children, len(visited))

	counts := make(map[*types.Suite]int)
	for _, n := range visited {
		counts[n]++
	}
	for _, n := range rebuilt.Children {
		counts[n]--
	}
	for n, c := range counts {
		assert.Zerof(t, c, "node %s dropped or duplicated", n.Name)
	}
}

// TestRebuildIsDeterministic verifies stable output across repeated
// runs on equivalent trees.
func TestRebuildIsDeterministic(t *testing.T) {
	build := func() *types.Suite {
		return types.NewContainer("root",
			fixtureSuite("s1", "a"),
			fixtureSuite("s2", "b"),
			fixtureSuite("s3", "a"),
			fixtureSuite("s4", "c"),
		)
	}

	names := func(s *types.Suite) []string {
		var out []string
		for _, c := range s.Children {
			out = append(out, c.Name)
		}
		return out
	}

	first := names(Rebuild(build()))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, names(Rebuild(build())))
	}
}
