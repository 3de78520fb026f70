package reporter

import (
	"fmt"
	"io"
	"time"

	"github.com/simaogato/payrun/internal/domain"
)

// Summarize folds per-transfer outcomes into the aggregate counts of a run.
// It is a pure function: calling it twice over the same outcomes yields the
// same summary.
func Summarize(submissions []domain.SubmissionResult, confirmations []domain.ConfirmationResult, elapsed time.Duration) domain.BatchSummary {
	summary := domain.BatchSummary{Elapsed: elapsed}

	for _, sub := range submissions {
		switch sub.Status() {
		case domain.StatusSubmitted:
			summary.Submitted++
		case domain.StatusSubmissionFailed:
			summary.SubmissionFailed++
		}
	}

	for _, conf := range confirmations {
		switch conf.Status() {
		case domain.StatusConfirmed:
			summary.Confirmed++
		case domain.StatusFailed:
			summary.Failed++
		case domain.StatusTimedOut:
			summary.TimedOut++
		}
	}

	return summary
}

// Render writes the human readable end-of-run report
func Render(w io.Writer, summary domain.BatchSummary) {
	fmt.Fprintf(w, "Payment run finished in %s\n", summary.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  requests:          %d\n", summary.Requests())
	fmt.Fprintf(w, "  submitted:         %d\n", summary.Submitted)
	fmt.Fprintf(w, "  submission failed: %d\n", summary.SubmissionFailed)
	fmt.Fprintf(w, "  confirmed:         %d\n", summary.Confirmed)
	fmt.Fprintf(w, "  failed on ledger:  %d\n", summary.Failed)
	fmt.Fprintf(w, "  timed out:         %d\n", summary.TimedOut)
	fmt.Fprintf(w, "  unconfirmed:       %d\n", summary.Unconfirmed())
}
