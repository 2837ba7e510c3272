// Package config provides repository configuration management for laddr,
// stored as a JSON file under .git.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const configFileName = ".laddr_config"

// RepoConfig represents the per-repository configuration.
type RepoConfig struct {
	Trunk                      *string `json:"trunk,omitempty"`
	MaxDriftCommits            *int    `json:"maxDriftCommits,omitempty"`
	IsGithubIntegrationEnabled *bool   `json:"isGithubIntegrationEnabled,omitempty"`
}

func configPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", configFileName)
}

// GetRepoConfig reads the repository configuration. A missing file yields
// the default config.
func GetRepoConfig(repoRoot string) (*RepoConfig, error) {
	data, err := os.ReadFile(configPath(repoRoot))
	if err != nil {
		return &RepoConfig{}, nil
	}

	var cfg RepoConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}
	return &cfg, nil
}

// WriteRepoConfig persists the repository configuration.
func WriteRepoConfig(repoRoot string, cfg *RepoConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal repo config: %w", err)
	}
	if err := os.WriteFile(configPath(repoRoot), data, 0o644); err != nil {
		return fmt.Errorf("failed to write repo config: %w", err)
	}
	return nil
}

// IsInitialized reports whether laddr has been initialized in the repo.
func IsInitialized(repoRoot string) bool {
	_, err := os.Stat(configPath(repoRoot))
	return err == nil
}

// GetTrunk returns the configured trunk branch name, defaulting to "main".
func GetTrunk(repoRoot string) (string, error) {
	cfg, err := GetRepoConfig(repoRoot)
	if err != nil {
		return "", err
	}
	if cfg.Trunk != nil && *cfg.Trunk != "" {
		return *cfg.Trunk, nil
	}
	return "main", nil
}

// GetMaxDriftCommits returns the drift threshold used by parent detection,
// or 0 to select the engine default.
func GetMaxDriftCommits(repoRoot string) int {
	cfg, err := GetRepoConfig(repoRoot)
	if err != nil || cfg.MaxDriftCommits == nil {
		return 0
	}
	return *cfg.MaxDriftCommits
}

// IsGithubEnabled reports whether PR submission is enabled for the repo.
func IsGithubEnabled(repoRoot string) bool {
	cfg, err := GetRepoConfig(repoRoot)
	if err != nil || cfg.IsGithubIntegrationEnabled == nil {
		return false
	}
	return *cfg.IsGithubIntegrationEnabled
}
