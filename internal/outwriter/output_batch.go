package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

// jsonOutcome is the serialized form of a job outcome.
type jsonOutcome struct {
	Repository string        `json:"repository"`
	Status     string        `json:"status"`
	Totals     schema.Totals `json:"totals"`
	Reason     string        `json:"reason,omitempty"`
	Message    string        `json:"message,omitempty"`
	DurationMs int64         `json:"duration_ms"`
}

// jsonBatchSummary is the serialized form of a batch run.
type jsonBatchSummary struct {
	Total      int               `json:"total"`
	Success    int               `json:"success"`
	Skipped    int               `json:"skipped"`
	Errors     int               `json:"errors"`
	Failures   map[string]string `json:"failures,omitempty"`
	Totals     schema.Totals     `json:"totals"`
	DurationMs int64             `json:"duration_ms"`
	Outcomes   []jsonOutcome     `json:"outcomes"`
}

// WriteBatchSummary outputs the outcomes of an init run, dispatching on the output format.
func WriteBatchSummary(summary schema.RunSummary, outcomes []schema.JobOutcome, cfg *contract.Config) error {
	sorted := sortedOutcomes(outcomes)
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchJSON(w, summary, sorted)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchCSV(w, sorted)
		}, "Wrote CSV")
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return renderMarkdown(w, batchHeaders, batchRows(sorted, cfg, false))
		}, "Wrote markdown")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchTable(w, summary, sorted, cfg)
		}, "Wrote table")
	}
}

var batchHeaders = []string{"Repository", "Status", "Stars", "Forks", "Issues", "PRs", "Time", "Note"}

// sortedOutcomes orders outcomes by repository name without touching the input.
func sortedOutcomes(outcomes []schema.JobOutcome) []schema.JobOutcome {
	sorted := make([]schema.JobOutcome, len(outcomes))
	copy(sorted, outcomes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Repository.FullName() < sorted[j].Repository.FullName()
	})
	return sorted
}

func batchRows(outcomes []schema.JobOutcome, cfg *contract.Config, truncate bool) [][]string {
	_, fmtInt := createFormatters(cfg.Precision)
	nameWidth := 0
	if truncate {
		nameWidth = GetMaxTableNameWidth(cfg, 6)
	}

	data := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		name := o.Repository.FullName()
		if truncate {
			name = contract.TruncateName(name, nameWidth)
		}
		note := o.Message
		if o.Status == schema.SkippedOutcome {
			note = skipMessage(o.Reason, o.Message)
		}
		data = append(data, []string{
			name,
			statusLabel(o.Status, truncate && cfg.UseColors),
			fmtInt(o.Totals.Stars),
			fmtInt(o.Totals.Forks),
			fmtInt(o.Totals.Issues),
			fmtInt(o.Totals.PullRequests),
			o.Duration.Round(time.Millisecond).String(),
			note,
		})
	}
	return data
}

// writeBatchTable generates and writes the human-readable table.
func writeBatchTable(w io.Writer, summary schema.RunSummary, outcomes []schema.JobOutcome, cfg *contract.Config) error {
	if err := renderTable(w, batchHeaders, batchRows(outcomes, cfg, true)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Processed %d repositories: %d succeeded, %d skipped, %d failed\n",
		summary.Total, summary.Success, summary.Skipped, summary.Errors); err != nil {
		return err
	}
	t := summary.Totals
	if _, err := fmt.Fprintf(w, "Harvested %d stars, %d forks, %d issues and %d PRs in %v with %d workers\n",
		t.Stars, t.Forks, t.Issues, t.PullRequests, summary.Duration.Round(time.Millisecond), cfg.Workers); err != nil {
		return err
	}
	return nil
}

func writeBatchCSV(w io.Writer, outcomes []schema.JobOutcome) error {
	header := []string{"repository", "status", "reason", "message", "stars", "forks", "issues", "pull_requests", "duration_ms"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, o := range outcomes {
			rec := []string{
				o.Repository.FullName(),
				string(o.Status),
				o.Reason,
				o.Message,
				fmt.Sprint(o.Totals.Stars),
				fmt.Sprint(o.Totals.Forks),
				fmt.Sprint(o.Totals.Issues),
				fmt.Sprint(o.Totals.PullRequests),
				fmt.Sprint(o.Duration.Milliseconds()),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeBatchJSON(w io.Writer, summary schema.RunSummary, outcomes []schema.JobOutcome) error {
	out := jsonBatchSummary{
		Total:      summary.Total,
		Success:    summary.Success,
		Skipped:    summary.Skipped,
		Errors:     summary.Errors,
		Failures:   summary.Failures,
		Totals:     summary.Totals,
		DurationMs: summary.Duration.Milliseconds(),
		Outcomes:   make([]jsonOutcome, len(outcomes)),
	}
	for i, o := range outcomes {
		out.Outcomes[i] = jsonOutcome{
			Repository: o.Repository.FullName(),
			Status:     string(o.Status),
			Totals:     o.Totals,
			Reason:     o.Reason,
			Message:    o.Message,
			DurationMs: o.Duration.Milliseconds(),
		}
	}
	return writeJSON(w, out)
}
