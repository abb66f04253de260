package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/internal/parquet"
	"github.com/huangsam/repotrend/schema"
)

// DefaultHistoryParquetFile is used when parquet history has no --output-file.
const DefaultHistoryParquetFile = "repository_histories.parquet"

// WriteHistories outputs cumulative histories. JSON goes to the history file
// unless --output-file says otherwise, since charts load it from disk.
func WriteHistories(h schema.RepositoryHistories, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut, schema.MarkdownOut:
		outputFile := cfg.OutputFile
		if outputFile == "" {
			outputFile = contract.DefaultHistoryFile
		}
		return writeWithFile(outputFile, func(w io.Writer) error {
			return writeCompactJSON(w, h)
		}, fmt.Sprintf("Wrote history for %d projects", len(h.Projects)))
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryCSV(w, h)
		}, "Wrote CSV")
	case schema.ParquetOut:
		outputFile := cfg.OutputFile
		if outputFile == "" {
			outputFile = DefaultHistoryParquetFile
		}
		return writeWithFile(outputFile, func(w io.Writer) error {
			return parquet.WriteHistory(parquet.ConvertHistories(h), w)
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryTable(w, h, cfg)
		}, "Wrote table")
	}
}

// sortedProjectKeys returns project keys in name order.
func sortedProjectKeys(h schema.RepositoryHistories) []string {
	keys := make([]string, 0, len(h.Projects))
	for key := range h.Projects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// writeHistoryTable summarizes each project history on one row.
func writeHistoryTable(w io.Writer, h schema.RepositoryHistories, cfg *contract.Config) error {
	_, fmtInt := createFormatters(cfg.Precision)
	nameWidth := GetMaxTableNameWidth(cfg, 7)

	headers := []string{"Project", "First", "Last", "Points", "Stars", "Forks", "Issues", "PRs"}
	var data [][]string
	for _, key := range sortedProjectKeys(h) {
		history := h.Projects[key].History
		if len(history) == 0 {
			continue
		}
		first, last := history[0], history[len(history)-1]
		data = append(data, []string{
			contract.TruncateName(key, nameWidth),
			first.Timestamp,
			last.Timestamp,
			fmtInt(len(history)),
			fmtInt(last.Stars),
			fmtInt(last.Forks),
			fmtInt(last.Issues),
			fmtInt(last.PullRequests),
		})
	}
	if err := renderTable(w, headers, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d projects, %d history points since %s\n",
		len(h.Projects), h.Metadata.TotalSnapshots, orNA(h.Metadata.FirstRecorded)); err != nil {
		return err
	}
	return nil
}

func writeHistoryCSV(w io.Writer, h schema.RepositoryHistories) error {
	header := []string{"project", "html_url", "date", "stars", "forks", "issues", "pull_requests"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, key := range sortedProjectKeys(h) {
			project := h.Projects[key]
			for _, entry := range project.History {
				rec := []string{
					key, project.HTMLURL, entry.Timestamp,
					fmt.Sprint(entry.Stars), fmt.Sprint(entry.Forks),
					fmt.Sprint(entry.Issues), fmt.Sprint(entry.PullRequests),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
