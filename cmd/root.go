// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"
	"time"

	"github.com/naka-gawa/github-stats-badges/internal/config"
	"github.com/naka-gawa/github-stats-badges/internal/gateway"
	"github.com/naka-gawa/github-stats-badges/internal/usecase"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-stats",
	Short: "A CLI tool to render GitHub statistics badges.",
	Long: `github-stats collects a user's GitHub statistics (stars, forks,
contributions, lines changed, views, languages) and renders them into SVG
badges from templates.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Optional YAML config file; environment variables take precedence")
}

// newLogger discards all logs unless --verbose is set.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	if !verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

// newLiveStats loads and validates the configuration, then wires the GitHub
// gateway into a Stats use case.
func newLiveStats(cmd *cobra.Command, logger zerolog.Logger) (*usecase.Stats, error) {
	configPath, _ := cmd.InheritedFlags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	githubGateway, err := gateway.NewGitHubGateway(cfg.AccessToken, logger)
	if err != nil {
		return nil, err
	}
	return usecase.NewStats(githubGateway, usecase.Options{
		User:              cfg.User,
		ExcludedRepos:     cfg.ExcludedRepos,
		ExcludedLangs:     cfg.ExcludedLangs,
		IgnoreForkedRepos: cfg.IgnoreForkedRepos(),
	}, logger), nil
}
