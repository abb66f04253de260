package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

// progressWriter returns where progress lines go. Machine-readable reports on
// stdout keep it clean, so progress moves to stderr for them.
func progressWriter(cfg *contract.Config) io.Writer {
	if cfg.Output == schema.TextOut || cfg.Output == "" || cfg.OutputFile != "" {
		return os.Stdout
	}
	return os.Stderr
}

// statusLabel returns the outcome label, colored when requested.
func statusLabel(status schema.OutcomeStatus, useColors bool) string {
	if useColors {
		return contract.GetColorLabel(status)
	}
	return contract.GetPlainLabel(status)
}

// LogBatchHeader prints a concise, 2-line header for an init run.
func LogBatchHeader(cfg *contract.Config, total, pending int) {
	w := progressWriter(cfg)
	fmt.Fprintf(w, "🔎 Repos: %d (%d to harvest, %d already complete)\n", total, pending, total-pending)
	fmt.Fprintf(w, "⚙️  Workers: %d, stagger %v, data dir %s\n", min(cfg.Workers, max(pending, 1)), cfg.Stagger, cfg.DataDir)
}

// LogJobOutcome prints one line per finished harvest.
func LogJobOutcome(cfg *contract.Config, o schema.JobOutcome) {
	w := progressWriter(cfg)
	label := statusLabel(o.Status, cfg.UseColors)
	switch o.Status {
	case schema.SuccessOutcome:
		fmt.Fprintf(w, "%s %s: %d stars, %d forks, %d issues, %d PRs (%v)\n",
			label, o.Repository, o.Totals.Stars, o.Totals.Forks, o.Totals.Issues, o.Totals.PullRequests,
			o.Duration.Round(time.Millisecond))
	case schema.SkippedOutcome:
		fmt.Fprintf(w, "%s %s: %s\n", label, o.Repository, skipMessage(o.Reason, o.Message))
	default:
		fmt.Fprintf(w, "%s %s: %s\n", label, o.Repository, o.Message)
	}
}

// LogUpdateHeader prints a concise, 2-line header for an update run.
func LogUpdateHeader(cfg *contract.Config, total int) {
	w := progressWriter(cfg)
	fmt.Fprintf(w, "🔄 Updating %d repositories (workers: %d)\n", total, min(cfg.Workers, max(total, 1)))
	fmt.Fprintf(w, "📅 Date: %s\n", time.Now().UTC().Format(schema.DateKeyFormat))
}

// LogUpdateResult prints the outcome of one incremental update.
func LogUpdateResult(cfg *contract.Config, r schema.UpdateResult) {
	w := progressWriter(cfg)
	name := r.Repository.FullName()
	switch {
	case r.Error != "":
		fmt.Fprintf(w, "%s %s: %s\n", statusLabel(schema.ErrorOutcome, cfg.UseColors), name, r.Error)
	case r.Skipped:
		fmt.Fprintf(w, "Skipping %s: %s\n", name, skipMessage(r.Reason, ""))
	case r.Changed:
		fmt.Fprintf(w, "Updated %s: stars: %s, forks: %s, issues: %s, PRs: %s\n", name,
			formatChange(r.Previous.Stars, r.Current.Stars, cfg.UseColors),
			formatChange(r.Previous.Forks, r.Current.Forks, cfg.UseColors),
			formatChange(r.Previous.Issues, r.Current.Issues, cfg.UseColors),
			formatChange(r.Previous.PullRequests, r.Current.PullRequests, cfg.UseColors))
	default:
		fmt.Fprintf(w, "No changes for %s: %d stars, %d forks, %d issues, %d PRs\n", name,
			r.Current.Stars, r.Current.Forks, r.Current.Issues, r.Current.PullRequests)
	}
}

// formatChange renders "a -> b (+d)".
func formatChange(before, after int, useColors bool) string {
	return fmt.Sprintf("%d -> %d (%s)", before, after, contract.FormatDelta(after-before, useColors))
}

// skipMessage turns a skip reason into a sentence.
func skipMessage(reason, fallback string) string {
	switch reason {
	case schema.ReasonFileExists:
		return "Data file already exists"
	case schema.ReasonNoSnapshot:
		return "No existing data file"
	case schema.ReasonIncomplete:
		return "Existing data file is incomplete, run init first"
	case schema.ReasonUnchanged:
		return "No changes"
	}
	if fallback != "" {
		return fallback
	}
	return reason
}
