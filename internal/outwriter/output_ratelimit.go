package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

type rateLimitRow struct {
	API   string
	Limit schema.RateLimit
}

func rateLimitRows(status schema.RateLimitStatus) []rateLimitRow {
	return []rateLimitRow{
		{API: "core", Limit: status.Core},
		{API: "graphql", Limit: status.GraphQL},
	}
}

// levelLabel colors a rate limit level for the terminal.
func levelLabel(level string, useColors bool) string {
	if !useColors {
		return level
	}
	switch level {
	case schema.RateLimitExhausted:
		return contract.ErrorColor.Sprint(level)
	case schema.RateLimitLow:
		return contract.SkippedColor.Sprint(level)
	default:
		return contract.SuccessColor.Sprint(level)
	}
}

// resetsIn renders the time until reset, never negative.
func resetsIn(reset, now time.Time) string {
	d := reset.Sub(now)
	if d < 0 {
		d = 0
	}
	return d.Round(time.Second).String()
}

// WriteRateLimits outputs the REST and GraphQL rate limits.
func WriteRateLimits(status schema.RateLimitStatus, cfg *contract.Config, now time.Time) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRateLimitCSV(w, status, now)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRateLimitTable(w, status, cfg, now)
		}, "Wrote table")
	}
}

func writeRateLimitTable(w io.Writer, status schema.RateLimitStatus, cfg *contract.Config, now time.Time) error {
	headers := []string{"API", "Limit", "Remaining", "Used", "Resets At", "Resets In", "Level"}
	var data [][]string
	for _, row := range rateLimitRows(status) {
		l := row.Limit
		data = append(data, []string{
			row.API,
			fmt.Sprint(l.Limit),
			fmt.Sprint(l.Remaining),
			fmt.Sprint(l.Used),
			l.Reset.UTC().Format(contract.DateTimeFormat),
			resetsIn(l.Reset, now),
			levelLabel(l.Level(), cfg.UseColors),
		})
	}
	return renderTable(w, headers, data)
}

func writeRateLimitCSV(w io.Writer, status schema.RateLimitStatus, now time.Time) error {
	header := []string{"api", "limit", "remaining", "used", "reset", "reset_in_seconds", "level"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range rateLimitRows(status) {
			l := row.Limit
			secs := int64(l.Reset.Sub(now).Seconds())
			if secs < 0 {
				secs = 0
			}
			rec := []string{
				row.API,
				fmt.Sprint(l.Limit),
				fmt.Sprint(l.Remaining),
				fmt.Sprint(l.Used),
				l.Reset.UTC().Format(contract.DateTimeFormat),
				fmt.Sprint(secs),
				l.Level(),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
