package batch

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

// WriteSummary renders the human-readable run report: one line per video,
// corpus totals, and an evaluation block when ground truth was available.
func WriteSummary(w io.Writer, result *Result) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "VIDEO\tSTATUS\tEVENTS\tCLIPS\tDETAIL")

	var done, skipped, failed int
	for _, job := range result.Jobs {
		switch job.Status {
		case entity.JobStatusDone:
			done++
		case entity.JobStatusSkipped:
			skipped++
		case entity.JobStatusFailed:
			failed++
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			job.Stem, job.Status, len(job.Events), len(job.Clips), jobDetail(job))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d done, %d skipped, %d failed\n", done, skipped, failed)

	if result.Report == nil {
		return nil
	}
	return writeEvaluation(w, result.Report)
}

func jobDetail(job *entity.DetectionJob) string {
	if job.Status == entity.JobStatusFailed {
		return job.ErrorMessage
	}
	if len(job.Events) == 0 {
		return ""
	}
	times := make([]string, 0, len(job.Events))
	for _, ev := range job.Events {
		times = append(times, strconv.FormatFloat(ev.Time, 'f', 1, 64)+"s")
	}
	return strings.Join(times, " ")
}

func writeEvaluation(w io.Writer, report *entity.BatchReport) error {
	fmt.Fprintln(w, "\nEVALUATION vs manual windows")
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "VIDEO\tCORRECT\tSPURIOUS\tMISSED")
	for _, v := range report.Videos {
		c := v.Classification
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", v.Stem, len(c.Correct), len(c.Spurious), len(c.Missed))
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\n", report.TotalCorrect, report.TotalSpurious, report.TotalMissed)
	return tw.Flush()
}
