// Package config loads the process configuration from an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration is returned when required configuration is missing.
var ErrConfiguration = errors.New("configuration error")

// Config holds the runtime parameters of the stats collaborator.
// Environment variables override values read from the config file.
type Config struct {
	AccessToken        string   `yaml:"access_token" env:"ACCESS_TOKEN"`
	User               string   `yaml:"user" env:"GITHUB_ACTOR"`
	ExcludedRepos      []string `yaml:"excluded_repos" env:"EXCLUDED" envSeparator:","`
	ExcludedLangs      []string `yaml:"excluded_langs" env:"EXCLUDED_LANGS" envSeparator:","`
	ExcludeForkedRepos string   `yaml:"exclude_forked_repos" env:"EXCLUDE_FORKED_REPOS"`
}

// Load reads the optional YAML file at path, then applies environment variables on top.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.ExcludedRepos = trimAll(cfg.ExcludedRepos)
	cfg.ExcludedLangs = trimAll(cfg.ExcludedLangs)
	return cfg, nil
}

// Validate checks that the credential and user identifier are present.
func (c *Config) Validate() error {
	if c.AccessToken == "" {
		return fmt.Errorf("%w: a personal access token is required (ACCESS_TOKEN)", ErrConfiguration)
	}
	if c.User == "" {
		return fmt.Errorf("%w: a GitHub user is required (GITHUB_ACTOR)", ErrConfiguration)
	}
	return nil
}

// IgnoreForkedRepos reports whether EXCLUDE_FORKED_REPOS holds a truthy value.
// Any non-blank value other than "false" counts as true.
func (c *Config) IgnoreForkedRepos() bool {
	v := strings.ToLower(strings.TrimSpace(c.ExcludeForkedRepos))
	return v != "" && v != "false"
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
