package cmd

import (
	"github.com/huangsam/repotrend/core"
	"github.com/huangsam/repotrend/internal/contract"
	"github.com/spf13/cobra"
)

// rankCmd ranks stored snapshots by stars.
var rankCmd = &cobra.Command{
	Use:   "rank [owner/name | URL]...",
	Short: "Rank tracked repositories by stars",
	Long: `Rank the repositories in the data directory by total stars.

Each row shows totals, stars gained in the last 30 days and the growth they
represent. The URL, open issues and last commit come from the metadata
cache when a fresh entry exists. Rank never calls GitHub.

Examples:
  # Show the top 20 repositories
  repotrend rank --limit 20

  # Render the README table
  repotrend rank --output markdown`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRank(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot rank repositories", err)
		}
	},
}

// historyCmd derives cumulative histories from stored snapshots.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Build cumulative daily histories for charts",
	Long: `Prefix-sum the daily counts of every complete snapshot into a cumulative
history of stars, forks, issues and pull requests.

JSON output goes to repository_histories.json unless --output-file is set.
Parquet output suits DuckDB or pandas.

Examples:
  # Write repository_histories.json
  repotrend history --output json

  # Export long-format rows for a spreadsheet
  repotrend history --output csv --output-file histories.csv

  # Export for analytics
  repotrend history --output parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistory(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build histories", err)
		}
	},
}

// rateLimitCmd shows the remaining API budget of the configured token.
var rateLimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Show the GitHub rate limits of the configured token",
	Long: `Print the REST core and GraphQL rate limits of the configured token,
with the time left until each resets.

Run this before a large init to check the remaining GraphQL points.

Examples:
  repotrend ratelimit
  repotrend ratelimit --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRateLimit(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot fetch rate limits", err)
		}
	},
}
