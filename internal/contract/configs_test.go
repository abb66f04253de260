package contract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repotrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns the raw input the CLI produces with all defaults applied.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Workers:      DefaultWorkers,
		Stagger:      "1s",
		KindDelay:    "200ms",
		Limit:        DefaultResultLimit,
		Precision:    DefaultPrecision,
		Output:       "text",
		CacheBackend: "none",
		Color:        "yes",
		GithubToken:  "ghp_test",
		RepoArgs:     []string{"https://github.com/acme/widgets"},
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "zero workers", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: "workers must be greater than 0"},
		{name: "too many workers", mutate: func(in *ConfigRawInput) { in.Workers = MaxWorkers + 1 }, expectError: "workers must be greater than 0"},
		{name: "invalid limit", mutate: func(in *ConfigRawInput) { in.Limit = 0 }, expectError: "limit must be greater than 0"},
		{name: "invalid precision", mutate: func(in *ConfigRawInput) { in.Precision = 3 }, expectError: "precision must be between 0 and 2"},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "yaml" }, expectError: "invalid output format"},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: "invalid --color value"},
		{name: "invalid stagger", mutate: func(in *ConfigRawInput) { in.Stagger = "soon" }, expectError: "invalid stagger"},
		{name: "negative kind delay", mutate: func(in *ConfigRawInput) { in.KindDelay = "-1s" }, expectError: "kind-delay cannot be negative"},
		{name: "negative rate", mutate: func(in *ConfigRawInput) { in.RequestsPerSecond = -1 }, expectError: "requests-per-second cannot be negative"},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: "invalid cache backend"},
		{name: "mysql without dsn", mutate: func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, expectError: "connection string is required"},
		{name: "invalid run backend", mutate: func(in *ConfigRawInput) { in.RunBackend = "mongo" }, expectError: "invalid run backend"},
		{name: "invalid repository url", mutate: func(in *ConfigRawInput) { in.RepoArgs = []string{"https://github.com/acme"} }, expectError: "expected owner/name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	input := validInput()
	input.Stagger = ""
	input.KindDelay = ""
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, DefaultStagger, cfg.Stagger)
	assert.Equal(t, DefaultKindDelay, cfg.KindDelay)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMetadataTTL, cfg.MetadataTTL)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultGraphQLURL, cfg.GraphQLURL)
	assert.Equal(t, schema.NoneBackend, cfg.CacheBackend)
	assert.Equal(t, schema.DatabaseBackend(""), cfg.RunBackend)
	assert.Equal(t, "ghp_test", cfg.Token)
	assert.Equal(t, []schema.RepositoryRef{{Owner: "acme", Name: "widgets"}}, cfg.Repos)
	assert.True(t, cfg.UseColors)
}

func TestProcessAndValidate_SharedSQLiteFile(t *testing.T) {
	input := validInput()
	dbPath := filepath.Join(t.TempDir(), "shared.db")
	input.CacheBackend = "sqlite"
	input.CacheDBConnect = dbPath
	input.RunBackend = "sqlite"
	input.RunDBConnect = dbPath

	err := ProcessAndValidate(&Config{}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different SQLite database files")
}

func TestResolveToken_FromFile(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.txt")
	require.NoError(t, os.WriteFile(tokenFile, []byte("  ghp_from_file\n"), 0o600))

	input := validInput()
	input.GithubToken = ""
	input.TokenFile = tokenFile
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, "ghp_from_file", cfg.Token)
	assert.NoError(t, cfg.RequireToken())
}

func TestResolveToken_Missing(t *testing.T) {
	input := validInput()
	input.GithubToken = ""
	input.TokenFile = filepath.Join(t.TempDir(), "absent.txt")
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Empty(t, cfg.Token)
	assert.Error(t, cfg.RequireToken())
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Workers: 3, Repos: []schema.RepositoryRef{{Owner: "a", Name: "b"}}, Stagger: time.Second}
	clone := cfg.Clone()
	clone.Repos[0].Name = "changed"
	clone.Workers = 9
	assert.Equal(t, "b", cfg.Repos[0].Name)
	assert.Equal(t, 3, cfg.Workers)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@tcp(localhost:3306)/repotrend"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=repotrend"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
}
