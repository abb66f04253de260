package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/repotrend/schema"
)

// Default values for configuration.
const (
	DefaultWorkers           = 3
	MaxWorkers               = 32
	DefaultStagger           = time.Second
	DefaultKindDelay         = 200 * time.Millisecond
	DefaultTimeout           = 30 * time.Second
	DefaultResultLimit       = 50
	MaxResultLimit           = 1000
	DefaultPrecision         = 0
	DefaultDataDir           = "repo_data"
	DefaultReposFile         = "repositories.json"
	DefaultTokenFile         = "access_token.txt"
	DefaultHistoryFile       = "repository_histories.json"
	DefaultGraphQLURL        = "https://api.github.com/graphql"
	DefaultAPIURL            = "https://api.github.com/"
	DefaultMetadataTTL       = 24 * time.Hour
	DefaultRequestsPerSecond = 0
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	Token      string // Please use env var or token file as this is plaintext
	GraphQLURL string
	APIURL     string

	DataDir   string
	ReposFile string
	Repos     []schema.RepositoryRef

	Workers           int
	Stagger           time.Duration
	KindDelay         time.Duration
	Timeout           time.Duration
	RequestsPerSecond float64

	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	MetadataTTL    time.Duration

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	UseColors bool
	Debug     bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoArgs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	GithubToken       string  `mapstructure:"github-token"`
	TokenFile         string  `mapstructure:"token-file"`
	GraphQLURL        string  `mapstructure:"graphql-url"`
	APIURL            string  `mapstructure:"api-url"`
	DataDir           string  `mapstructure:"data-dir"`
	ReposFile         string  `mapstructure:"repos-file"`
	Workers           int     `mapstructure:"workers"`
	Stagger           string  `mapstructure:"stagger"`
	KindDelay         string  `mapstructure:"kind-delay"`
	Timeout           string  `mapstructure:"timeout"`
	RequestsPerSecond float64 `mapstructure:"requests-per-second"`
	Limit             int     `mapstructure:"limit"`
	Precision         int     `mapstructure:"precision"`
	Output            string  `mapstructure:"output"`
	OutputFile        string  `mapstructure:"output-file"`
	Width             int     `mapstructure:"width"`
	CacheBackend      string  `mapstructure:"cache-backend"`
	CacheDBConnect    string  `mapstructure:"cache-db-connect"`
	MetadataTTL       string  `mapstructure:"metadata-ttl"`
	RunBackend        string  `mapstructure:"run-backend"`
	RunDBConnect      string  `mapstructure:"run-db-connect"`
	Color             string  `mapstructure:"color"`
	Debug             bool    `mapstructure:"debug"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Repos != nil {
		clone.Repos = make([]schema.RepositoryRef, len(c.Repos))
		copy(clone.Repos, c.Repos)
	}
	return &clone
}

// RequireToken returns an error when no GitHub token was configured.
// The GraphQL API rejects anonymous requests.
func (c *Config) RequireToken() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("a GitHub token is required: set GITHUB_TOKEN or create %s", DefaultTokenFile)
	}
	return nil
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDurations(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := resolveToken(cfg, input); err != nil {
		return err
	}
	if err := resolveRepositories(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Debug = input.Debug
	cfg.RequestsPerSecond = input.RequestsPerSecond

	cfg.GraphQLURL = input.GraphQLURL
	if cfg.GraphQLURL == "" {
		cfg.GraphQLURL = DefaultGraphQLURL
	}
	cfg.APIURL = input.APIURL
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.DataDir = input.DataDir
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	cfg.ReposFile = input.ReposFile
	if cfg.ReposFile == "" {
		cfg.ReposFile = DefaultReposFile
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 || input.Workers > MaxWorkers {
		return fmt.Errorf("workers must be greater than 0 and cannot exceed %d (received %d)", MaxWorkers, input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 0 || input.Precision > 2 {
		return fmt.Errorf("precision must be between 0 and 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	if input.RequestsPerSecond < 0 {
		return fmt.Errorf("requests-per-second cannot be negative (received %g)", input.RequestsPerSecond)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, markdown, parquet", input.Output)
	}

	return nil
}

// processDurations parses every duration setting.
func processDurations(cfg *Config, input *ConfigRawInput) error {
	parse := func(name, raw string, fallback time.Duration) (time.Duration, error) {
		if strings.TrimSpace(raw) == "" {
			return fallback, nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid %s '%s': %w", name, raw, err)
		}
		if d < 0 {
			return 0, fmt.Errorf("%s cannot be negative (received %s)", name, raw)
		}
		return d, nil
	}

	var err error
	if cfg.Stagger, err = parse("stagger", input.Stagger, DefaultStagger); err != nil {
		return err
	}
	if cfg.KindDelay, err = parse("kind-delay", input.KindDelay, DefaultKindDelay); err != nil {
		return err
	}
	if cfg.Timeout, err = parse("timeout", input.Timeout, DefaultTimeout); err != nil {
		return err
	}
	if cfg.MetadataTTL, err = parse("metadata-ttl", input.MetadataTTL, DefaultMetadataTTL); err != nil {
		return err
	}
	return nil
}

// validateBackendConfigs validates cache and run backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Run Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return err
	}

	// Both stores create their own tables, so a shared SQLite file is refused.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runPath := cfg.RunDBConnect
		if runPath == "" {
			runPath = GetRunDBFilePath()
		}
		if cachePath == runPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}
