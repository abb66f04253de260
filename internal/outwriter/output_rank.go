package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

// readmeHeaders are the columns of the README ranking table.
var readmeHeaders = []string{"Project Name", "Stars", "Forks", "Total Issues", "Total PRs", "Open Issues", "Last Commit"}

// ReadmeTimeFormat is the layout of the README footer timestamp.
const ReadmeTimeFormat = "2006-01-02T15:04:05"

// WriteRankings outputs the ranking, dispatching on the output format.
func WriteRankings(ranked []schema.RankedRepository, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, ranked)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankCSV(w, ranked, cfg)
		}, "Wrote CSV")
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReadmeTable(w, ranked, time.Now())
		}, "Wrote README table")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankTable(w, ranked, cfg, duration)
		}, "Wrote table")
	}
}

// starGrowth returns recent star growth as a percentage of the count before the window.
func starGrowth(r schema.RankedRepository) float64 {
	base := r.Totals.Stars - r.Recent.Stars
	if base <= 0 {
		if r.Recent.Stars > 0 {
			return 100
		}
		return 0
	}
	return float64(r.Recent.Stars) / float64(base) * 100
}

// writeRankTable generates and writes the human-readable table.
func writeRankTable(w io.Writer, ranked []schema.RankedRepository, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtInt := createFormatters(cfg.Precision)
	nameWidth := GetMaxTableNameWidth(cfg, 8)

	headers := []string{"Rank", "Repository", "Stars", "+30d", "Growth %", "Forks", "Issues", "PRs", "Last Commit"}
	data := make([][]string, 0, len(ranked))
	totalStars := 0
	for _, r := range ranked {
		lastCommit := r.LastCommit
		if lastCommit == "" {
			lastCommit = "N/A"
		}
		data = append(data, []string{
			fmtInt(r.Rank),
			contract.TruncateName(r.Repository.FullName(), nameWidth),
			fmtInt(r.Totals.Stars),
			contract.FormatDelta(r.Recent.Stars, cfg.UseColors),
			fmtFloat(starGrowth(r)),
			fmtInt(r.Totals.Forks),
			fmtInt(r.Totals.Issues),
			fmtInt(r.Totals.PullRequests),
			lastCommit,
		})
		totalStars += r.Totals.Stars
	}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing top %d repositories (total stars: %d)\n", len(ranked), totalStars); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Ranking completed in %v. Cache backend: %s\n", duration.Round(time.Millisecond), cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

func writeRankCSV(w io.Writer, ranked []schema.RankedRepository, cfg *contract.Config) error {
	fmtFloat, fmtInt := createFormatters(cfg.Precision)
	header := []string{
		"rank", "repository", "html_url",
		"stars", "forks", "issues", "pull_requests",
		"recent_stars", "recent_forks", "recent_issues", "recent_pull_requests",
		"star_growth_pct", "open_issues", "last_commit", "fetched_at",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range ranked {
			rec := []string{
				fmtInt(r.Rank), r.Repository.FullName(), r.HTMLURL,
				fmtInt(r.Totals.Stars), fmtInt(r.Totals.Forks), fmtInt(r.Totals.Issues), fmtInt(r.Totals.PullRequests),
				fmtInt(r.Recent.Stars), fmtInt(r.Recent.Forks), fmtInt(r.Recent.Issues), fmtInt(r.Recent.PullRequests),
				fmtFloat(starGrowth(r)), fmtInt(r.OpenIssues), r.LastCommit, r.FetchedAt,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// readmeRows builds the README ranking rows with linked project names.
func readmeRows(ranked []schema.RankedRepository) [][]string {
	data := make([][]string, 0, len(ranked))
	for _, r := range ranked {
		url := r.HTMLURL
		if url == "" {
			url = r.Repository.HTMLURL()
		}
		lastCommit := r.LastCommit
		if lastCommit == "" {
			lastCommit = "N/A"
		}
		data = append(data, []string{
			fmt.Sprintf("[%s](%s)", r.Repository.Name, url),
			strconv.Itoa(r.Totals.Stars),
			strconv.Itoa(r.Totals.Forks),
			strconv.Itoa(r.Totals.Issues),
			strconv.Itoa(r.Totals.PullRequests),
			strconv.Itoa(r.OpenIssues),
			lastCommit,
		})
	}
	return data
}

// writeReadmeTable writes the README ranking table followed by the update footer.
func writeReadmeTable(w io.Writer, ranked []schema.RankedRepository, now time.Time) error {
	if err := renderMarkdown(w, readmeHeaders, readmeRows(ranked)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n*Last Automatic Update: %s*\n", now.Format(ReadmeTimeFormat))
	return err
}
