// Package reporting renders the end-of-run summary printed after the
// progress bar is erased.
package reporting

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/testinfra/progressive/runner"
	"github.com/testinfra/progressive/types"
)

// SummaryOptions controls what the summary shows.
type SummaryOptions struct {
	// ShowAdvisories includes skipped and deprecated tests in the
	// per-test rows, not just failures and errors.
	ShowAdvisories bool
}

// WriteSummary prints the run results as a table: one row per
// noteworthy test, with aggregate counts in the footer. Passing tests
// are summarized by count only; the point is to surface the
// information that needs acting on.
func WriteSummary(w io.Writer, result *runner.Result, opts SummaryOptions) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Test Results (%s)", formatDuration(result.Duration)))

	t.AppendHeader(table.Row{"Suite", "Test", "Status", "Duration", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Suite", AutoMerge: true},
		{Name: "Test", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, outcome := range result.Outcomes {
		if !noteworthy(outcome.Status, opts) {
			continue
		}
		errMsg := ""
		if outcome.Err != nil {
			errMsg = outcome.Err.Error()
		}
		t.AppendRow(table.Row{
			outcome.Suite,
			outcome.Unit.Name,
			string(outcome.Status),
			formatDuration(outcome.Duration),
			errMsg,
		})
	}

	stats := result.Stats
	t.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%d/%d completed", stats.Completed(), stats.Total),
		fmt.Sprintf("%d pass, %d fail, %d err, %d skip, %d depr",
			stats.Passed, stats.Failed, stats.Errored, stats.Skipped, stats.Deprecated),
		"",
		"",
	})

	switch result.Status {
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.TestStatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.Render()
}

// noteworthy reports whether an outcome earns its own row.
func noteworthy(status types.TestStatus, opts SummaryOptions) bool {
	switch status {
	case types.TestStatusFail, types.TestStatusError:
		return true
	case types.TestStatusSkip, types.TestStatusDeprecated:
		return opts.ShowAdvisories
	default:
		return false
	}
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
