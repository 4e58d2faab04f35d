package reorder

import (
	"sort"
	"strings"

	"github.com/testinfra/progressive/types"
)

// FixtureKey identifies the unordered set of fixture identifiers of a
// suite's context. Equality is by set contents, never by identity:
// two contexts listing the same fixtures in different orders share a
// key. The empty key is valid and means "no shared fixtures".
type FixtureKey string

// EmptyKey is the key of nodes without fixtures.
const EmptyKey FixtureKey = ""

// IsEmpty reports whether the key holds no fixture identifiers.
func (k FixtureKey) IsEmpty() bool {
	return k == EmptyKey
}

// KeyFor computes the fixture-set key of a node. Nodes without a
// context, or with a context listing no fixtures, get the empty key.
func KeyFor(node *types.Suite) FixtureKey {
	fixtures := node.Fixtures()
	if len(fixtures) == 0 {
		return EmptyKey
	}
	ids := make([]string, len(fixtures))
	copy(ids, fixtures)
	sort.Strings(ids)
	// Dedupe after sorting so {A, A, B} and {A, B} compare equal.
	uniq := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			uniq = append(uniq, id)
		}
	}
	return FixtureKey(strings.Join(uniq, "\x00"))
}

// Bucketer groups traversed suite nodes by fixture-set identity,
// preserving first-encounter order of both keys and members.
type Bucketer struct {
	order   []FixtureKey
	buckets map[FixtureKey][]*types.Suite
}

// NewBucketer creates an empty Bucketer.
func NewBucketer() *Bucketer {
	return &Bucketer{
		buckets: make(map[FixtureKey][]*types.Suite),
	}
}

// Add appends node to the bucket matching its fixture-set key,
// creating the bucket at its position of first occurrence.
func (b *Bucketer) Add(node *types.Suite) {
	key := KeyFor(node)
	if _, ok := b.buckets[key]; !ok {
		b.order = append(b.order, key)
	}
	b.buckets[key] = append(b.buckets[key], node)
}

// Keys returns the bucket keys in first-encounter order.
func (b *Bucketer) Keys() []FixtureKey {
	return b.order
}

// Bucket returns the members collected under key, in encounter order.
func (b *Bucketer) Bucket(key FixtureKey) []*types.Suite {
	return b.buckets[key]
}

// Len returns the number of distinct keys seen.
func (b *Bucketer) Len() int {
	return len(b.order)
}
