// Package report aggregates batch outcomes into a summary.
package report

import (
	"fmt"
	"io"

	"github.com/gipsh/dex-approver-go/internal/types"
)

// Summary holds the aggregate counts for one batch run.
// Total always equals Succeeded + Skipped + Failed.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Failures  []types.Outcome
}

// Summarize counts outcomes by status and collects the failed ones.
func Summarize(outcomes []types.Outcome) Summary {
	s := Summary{Total: len(outcomes)}

	for _, o := range outcomes {
		switch o.Status {
		case types.StatusSucceeded:
			s.Succeeded++
		case types.StatusSkipped:
			s.Skipped++
		case types.StatusFailed:
			s.Failed++
			s.Failures = append(s.Failures, o)
		}
	}

	return s
}

// Print writes a human-readable summary block.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "\napprovals: %d total | %d succeeded | %d skipped | %d failed\n",
		s.Total, s.Succeeded, s.Skipped, s.Failed)

	for _, f := range s.Failures {
		fmt.Fprintf(w, "  FAILED %s\n", f.String())
	}
}
