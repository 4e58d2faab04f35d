package counter

import (
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testinfra/progressive/types"
)

func TestCountInvokesProducerTwice(t *testing.T) {
	calls := 0
	produce := func() *types.Suite {
		calls++
		return types.NewContainer("root",
			types.NewTest("a", "a"),
			types.NewTest("b", "b"),
			types.NewTest("c", "c"),
		)
	}

	total, suite := Count(produce, log.New())

	assert.Equal(t, 2, calls, "producer must run once to count and once to execute")
	assert.Equal(t, 3, total)
	require.NotNil(t, suite)
	assert.Equal(t, 3, suite.CountTestUnits())
}

// TestCountReturnsSecondInvocation verifies the suite handed to
// execution is the second one produced: the first may have been
// destroyed by counting.
func TestCountReturnsSecondInvocation(t *testing.T) {
	var produced []*types.Suite
	produce := func() *types.Suite {
		s := types.NewContainer("root", types.NewTest("a", "a"))
		produced = append(produced, s)
		return s
	}

	_, suite := Count(produce, log.New())

	require.Len(t, produced, 2)
	assert.Same(t, produced[1], suite)
}

// TestCountToleratesSideEffectingProducer documents the approximation:
// a producer that yields different trees on each call gives a total
// that disagrees with the executed suite, and Count does not error.
func TestCountToleratesSideEffectingProducer(t *testing.T) {
	calls := 0
	produce := func() *types.Suite {
		calls++
		children := make([]*types.Suite, calls)
		for i := range children {
			children[i] = types.NewTest("t", "t")
		}
		return types.NewContainer("root", children...)
	}

	total, suite := Count(produce, log.New())

	assert.Equal(t, 1, total)
	assert.Equal(t, 2, suite.CountTestUnits())
}

func TestCountNilProducer(t *testing.T) {
	total, suite := Count(nil, log.New())
	assert.Zero(t, total)
	assert.Nil(t, suite)
}
