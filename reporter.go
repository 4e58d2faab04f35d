package progressive

import (
	"github.com/testinfra/progressive/metrics"
	"github.com/testinfra/progressive/runner"
)

// MetricsReporter is responsible for reporting metrics from test results.
type MetricsReporter interface {
	ReportResults(result *runner.Result)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults reports the test results to metrics systems.
func (r *DefaultMetricsReporter) ReportResults(result *runner.Result) {
	metrics.RecordRun(
		result.RunID,
		string(result.Status),
		result.Stats,
		result.Duration,
	)
}
