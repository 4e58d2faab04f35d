package types

import (
	"time"
)

// TestStatus represents the possible outcomes of a test execution
type TestStatus string

const (
	TestStatusPass       TestStatus = "pass"
	TestStatusFail       TestStatus = "fail"
	TestStatusError      TestStatus = "error"
	TestStatusSkip       TestStatus = "skip"
	TestStatusDeprecated TestStatus = "deprecated"
)

// AllStatuses lists every outcome kind in reporting order.
var AllStatuses = []TestStatus{
	TestStatusPass,
	TestStatusFail,
	TestStatusError,
	TestStatusSkip,
	TestStatusDeprecated,
}

// IsValid reports whether s is one of the known outcome kinds.
func (s TestStatus) IsValid() bool {
	switch s {
	case TestStatusPass, TestStatusFail, TestStatusError, TestStatusSkip, TestStatusDeprecated:
		return true
	}
	return false
}

// IsAdvisory reports whether s is a non-fatal outcome such as a skip
// or a deprecation notice, as opposed to pass/fail/error.
func (s TestStatus) IsAdvisory() bool {
	return s == TestStatusSkip || s == TestStatusDeprecated
}

// ResultStats tracks per-outcome counts for one run
type ResultStats struct {
	Total      int
	Passed     int
	Failed     int
	Errored    int
	Skipped    int
	Deprecated int
	StartTime  time.Time
	EndTime    time.Time
}

// Record increments the counter matching status. Unknown statuses are
// counted as errors so they remain visible in the summary.
func (s *ResultStats) Record(status TestStatus) {
	switch status {
	case TestStatusPass:
		s.Passed++
	case TestStatusFail:
		s.Failed++
	case TestStatusSkip:
		s.Skipped++
	case TestStatusDeprecated:
		s.Deprecated++
	default:
		s.Errored++
	}
}

// Completed returns the number of outcomes recorded so far.
func (s ResultStats) Completed() int {
	return s.Passed + s.Failed + s.Errored + s.Skipped + s.Deprecated
}

// Status derives the overall run status from the counters.
func (s ResultStats) Status() TestStatus {
	switch {
	case s.Errored > 0:
		return TestStatusError
	case s.Failed > 0:
		return TestStatusFail
	case s.Passed > 0:
		return TestStatusPass
	case s.Skipped > 0 || s.Deprecated > 0:
		return TestStatusSkip
	default:
		return TestStatusPass
	}
}
