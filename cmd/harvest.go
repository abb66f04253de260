package cmd

import (
	"github.com/huangsam/repotrend/core"
	"github.com/huangsam/repotrend/internal/contract"
	"github.com/spf13/cobra"
)

// initCmd harvests the full history of repositories without a complete snapshot.
var initCmd = &cobra.Command{
	Use:   "init [owner/name | URL]...",
	Short: "Harvest the full star, fork, issue and PR history of repositories",
	Long: `Walk every stargazer, fork, issue and pull request of each repository and
save the daily counts as a snapshot in the data directory.

Repositories come from positional arguments, or from the repos file when none
are given. The repos file holds either a flat list of URLs or a mapping of
category names to URL lists.

Repositories that already have a complete snapshot are skipped without calling
GitHub, so rerunning init only retries what failed or was interrupted.

Examples:
  # Harvest every repository in repositories.json
  repotrend init

  # Harvest two repositories with more workers
  repotrend init golang/go https://github.com/spf13/cobra --workers 5

  # Write the run summary as JSON
  repotrend init --output json --output-file init.json`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBatch(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot harvest repositories", err)
		}
	},
}

// updateCmd records today's deltas against the stored snapshots.
var updateCmd = &cobra.Command{
	Use:   "update [owner/name | URL]...",
	Short: "Record today's changes in stars, forks, issues and PRs",
	Long: `Fetch the current totals of each tracked repository and record the
difference against its snapshot as today's count.

Only totals are fetched, so update costs one request per repository no matter
how large the history is. Rerunning update on the same day overwrites today's
entry instead of adding to it. Snapshots with no changes are left untouched.

Without arguments, every repository in the repos file is updated, falling back
to every snapshot in the data directory.

Examples:
  # Update all tracked repositories and print the ranking
  repotrend update

  # Regenerate the README table
  repotrend update --output markdown --output-file README.md`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteUpdate(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot update repositories", err)
		}
	},
}
