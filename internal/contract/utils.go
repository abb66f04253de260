package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/repotrend/schema"
)

// Outcome label constants.
const (
	SuccessValue = "Success"
	SkippedValue = "Skipped"
	ErrorValue   = "Error"
)

// Color variables for console output.
var (
	SuccessColor = color.New(color.FgGreen, color.Bold) // SuccessColor marks finished jobs.
	SkippedColor = color.New(color.FgYellow)            // SkippedColor marks short-circuited jobs.
	ErrorColor   = color.New(color.FgRed, color.Bold)   // ErrorColor marks failed jobs.
	GainColor    = color.New(color.FgGreen)             // GainColor marks positive deltas.
	LossColor    = color.New(color.FgRed)               // LossColor marks negative deltas.
)

// GetPlainLabel returns the plain text label for a job outcome.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(status schema.OutcomeStatus) string {
	switch status {
	case schema.SuccessOutcome:
		return SuccessValue
	case schema.SkippedOutcome:
		return SkippedValue
	default:
		return ErrorValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(status schema.OutcomeStatus) string {
	text := GetPlainLabel(status)

	switch text {
	case SuccessValue:
		return SuccessColor.Sprint(text)
	case SkippedValue:
		return SkippedColor.Sprint(text)
	default:
		return ErrorColor.Sprint(text)
	}
}

// FormatDelta renders a signed delta, colored when requested.
func FormatDelta(delta int, useColors bool) string {
	text := fmt.Sprintf("%+d", delta)
	if !useColors || delta == 0 {
		return text
	}
	if delta > 0 {
		return GainColor.Sprint(text)
	}
	return LossColor.Sprint(text)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for metadata caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repotrend_cache.db"
	}
	return filepath.Join(homeDir, ".repotrend_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repotrend_runs.db"
	}
	return filepath.Join(homeDir, ".repotrend_runs.db")
}

// TruncateName truncates a repository name to a maximum width with ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
