// Package counter derives a total test count from the host
// framework's suite-producing operation.
package counter

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/testinfra/progressive/types"
)

// SuiteProducer is the host framework's suite-producing operation.
// The structure it yields may be lazily evaluated and destroyed by
// iteration, so it must be invokable more than once.
type SuiteProducer func() *types.Suite

// Count invokes produce once purely to count terminal units, then a
// second time to obtain the suite actually handed to execution. The
// authoritative suite may not survive being iterated for counting,
// which is why the producer runs twice.
//
// This is a documented limitation, not a guarantee: if the producer
// has side effects, the two invocations may disagree and the returned
// total is approximate. Consumers must treat it as a display hint,
// not ground truth.
func Count(produce SuiteProducer, logger log.Logger) (int, *types.Suite) {
	if produce == nil {
		return 0, nil
	}
	total := produce().CountTestUnits()
	suite := produce()
	if logger != nil {
		logger.Debug("Counted tests from producer", "total", total)
	}
	return total, suite
}
