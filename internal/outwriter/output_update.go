package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

// Update states shown in reports.
const (
	updateChanged   = "updated"
	updateUnchanged = "unchanged"
	updateSkipped   = "skipped"
	updateError     = "error"
)

// updateState classifies an update result for display.
func updateState(r schema.UpdateResult) string {
	switch {
	case r.Error != "":
		return updateError
	case r.Skipped:
		return updateSkipped
	case r.Changed:
		return updateChanged
	default:
		return updateUnchanged
	}
}

// updateLabel returns the display label of a result, colored when requested.
func updateLabel(r schema.UpdateResult, useColors bool) string {
	state := updateState(r)
	if !useColors {
		return state
	}
	switch state {
	case updateError:
		return contract.ErrorColor.Sprint(state)
	case updateSkipped:
		return contract.SkippedColor.Sprint(state)
	case updateChanged:
		return contract.SuccessColor.Sprint(state)
	default:
		return state
	}
}

// jsonUpdate is the serialized form of one update result.
type jsonUpdate struct {
	Repository string        `json:"repository"`
	Status     string        `json:"status"`
	Previous   schema.Totals `json:"previous"`
	Current    schema.Totals `json:"current"`
	Deltas     schema.Totals `json:"deltas"`
	Reason     string        `json:"reason,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// WriteUpdates outputs the results of an update run. Markdown renders the
// README ranking so the run can regenerate the project README directly.
func WriteUpdates(results []schema.UpdateResult, ranked []schema.RankedRepository, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeUpdateJSON(w, results, ranked)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeUpdateCSV(w, results)
		}, "Wrote CSV")
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReadmeTable(w, ranked, time.Now())
		}, "Wrote README table")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeUpdateTable(w, results, cfg, duration)
		}, "Wrote table")
	}
}

// writeUpdateTable generates and writes the human-readable table.
func writeUpdateTable(w io.Writer, results []schema.UpdateResult, cfg *contract.Config, duration time.Duration) error {
	_, fmtInt := createFormatters(cfg.Precision)
	nameWidth := GetMaxTableNameWidth(cfg, 9)

	headers := []string{"Repository", "Status", "Stars", "Δ Stars", "Forks", "Δ Forks", "Issues", "Δ Issues", "PRs", "Δ PRs"}
	data := make([][]string, 0, len(results))
	changed := 0
	for _, r := range results {
		if updateState(r) == updateChanged {
			changed++
		}
		data = append(data, []string{
			contract.TruncateName(r.Repository.FullName(), nameWidth),
			updateLabel(r, cfg.UseColors),
			fmtInt(r.Current.Stars),
			contract.FormatDelta(r.Deltas.Stars, cfg.UseColors),
			fmtInt(r.Current.Forks),
			contract.FormatDelta(r.Deltas.Forks, cfg.UseColors),
			fmtInt(r.Current.Issues),
			contract.FormatDelta(r.Deltas.Issues, cfg.UseColors),
			fmtInt(r.Current.PullRequests),
			contract.FormatDelta(r.Deltas.PullRequests, cfg.UseColors),
		})
	}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Updated %d of %d repositories in %v with %d workers\n",
		changed, len(results), duration.Round(time.Millisecond), cfg.Workers); err != nil {
		return err
	}
	return nil
}

func writeUpdateCSV(w io.Writer, results []schema.UpdateResult) error {
	header := []string{
		"repository", "status",
		"stars", "stars_delta", "forks", "forks_delta",
		"issues", "issues_delta", "pull_requests", "pull_requests_delta",
		"reason", "error",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			rec := []string{
				r.Repository.FullName(), updateState(r),
				fmt.Sprint(r.Current.Stars), fmt.Sprint(r.Deltas.Stars),
				fmt.Sprint(r.Current.Forks), fmt.Sprint(r.Deltas.Forks),
				fmt.Sprint(r.Current.Issues), fmt.Sprint(r.Deltas.Issues),
				fmt.Sprint(r.Current.PullRequests), fmt.Sprint(r.Deltas.PullRequests),
				r.Reason, r.Error,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeUpdateJSON(w io.Writer, results []schema.UpdateResult, ranked []schema.RankedRepository) error {
	out := struct {
		Updates  []jsonUpdate              `json:"updates"`
		Rankings []schema.RankedRepository `json:"rankings"`
	}{
		Updates:  make([]jsonUpdate, len(results)),
		Rankings: ranked,
	}
	for i, r := range results {
		out.Updates[i] = jsonUpdate{
			Repository: r.Repository.FullName(),
			Status:     updateState(r),
			Previous:   r.Previous,
			Current:    r.Current,
			Deltas:     r.Deltas,
			Reason:     r.Reason,
			Error:      r.Error,
		}
	}
	return writeJSON(w, out)
}
