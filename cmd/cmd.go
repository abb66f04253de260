// Package cmd defines the command-line interface for repotrend.
package cmd

import (
	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(rateLimitCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.String("github-token", "", "GitHub token (prefer GITHUB_TOKEN or the token file)")
	flags.String("token-file", contract.DefaultTokenFile, "File holding the GitHub token")
	flags.String("graphql-url", contract.DefaultGraphQLURL, "GitHub GraphQL endpoint")
	flags.String("api-url", contract.DefaultAPIURL, "GitHub REST endpoint")
	flags.String("data-dir", contract.DefaultDataDir, "Directory holding one snapshot file per repository")
	flags.String("repos-file", contract.DefaultReposFile, "JSON file listing the repositories to track")
	flags.Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	flags.String("stagger", contract.DefaultStagger.String(), "Delay between the starts of consecutive jobs")
	flags.String("kind-delay", contract.DefaultKindDelay.String(), "Pause between stars, forks, issues and PRs of one repository")
	flags.String("timeout", contract.DefaultTimeout.String(), "Per-request HTTP timeout")
	flags.Float64("requests-per-second", contract.DefaultRequestsPerSecond, "Client-side request rate limit (0 = unlimited)")
	flags.IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	flags.Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	flags.String("output", string(schema.TextOut), "Output format: text or csv or json or markdown or parquet")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("cache-backend", string(schema.SQLiteBackend), "Metadata cache backend: sqlite or mysql or postgresql or none")
	flags.String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("metadata-ttl", contract.DefaultMetadataTTL.String(), "How long cached repository metadata stays fresh")
	flags.String("run-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	flags.String("run-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.Bool("debug", false, "Trace GitHub requests to stderr")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
