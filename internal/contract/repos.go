package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/huangsam/repotrend/schema"
)

// resolveToken loads the GitHub token once, from config/env first and then the token file.
func resolveToken(cfg *Config, input *ConfigRawInput) error {
	if token := strings.TrimSpace(input.GithubToken); token != "" {
		cfg.Token = token
		return nil
	}

	tokenFile := input.TokenFile
	if tokenFile == "" {
		tokenFile = DefaultTokenFile
	}
	data, err := os.ReadFile(tokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // Anonymous access; commands that need GraphQL check RequireToken
		}
		return fmt.Errorf("failed to read token file %s: %w", tokenFile, err)
	}
	cfg.Token = strings.TrimSpace(string(data))
	return nil
}

// resolveRepositories fills cfg.Repos from positional args, or from the repos file.
// A missing repos file is not an error since some commands work from the data dir alone.
func resolveRepositories(cfg *Config, input *ConfigRawInput) error {
	if len(input.RepoArgs) > 0 {
		refs, err := ParseRepositoryList(input.RepoArgs)
		if err != nil {
			return err
		}
		cfg.Repos = refs
		return nil
	}

	refs, err := LoadRepositoryFile(cfg.ReposFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.Repos = nil
			return nil
		}
		return err
	}
	cfg.Repos = refs
	return nil
}

// LoadRepositoryFile reads a repository list. Two shapes are accepted:
// a category to URL list mapping, or a flat list of URLs.
func LoadRepositoryFile(path string) ([]schema.RepositoryRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var urls []string
	var categories map[string][]string
	if err := json.Unmarshal(data, &categories); err == nil {
		names := make([]string, 0, len(categories))
		for name := range categories {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			urls = append(urls, categories[name]...)
		}
	} else if err := json.Unmarshal(data, &urls); err != nil {
		return nil, fmt.Errorf("invalid JSON format in '%s': %w", path, err)
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("no repository URLs found in '%s'", path)
	}
	return ParseRepositoryList(urls)
}

// ParseRepositoryList parses URLs into refs, dropping duplicates while keeping order.
// GitHub names are case-insensitive, so the first spelling of a repository wins.
func ParseRepositoryList(urls []string) ([]schema.RepositoryRef, error) {
	seen := make(map[string]struct{}, len(urls))
	refs := make([]schema.RepositoryRef, 0, len(urls))
	for _, u := range urls {
		ref, err := schema.ParseRepositoryRef(u)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(ref.FullName())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		refs = append(refs, ref)
	}
	return refs, nil
}
