package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/naka-gawa/github-stats-badges/internal/badge"
	"github.com/naka-gawa/github-stats-badges/internal/usecase"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Renders the overview, languages and top repos badges",
	Long: `Renders overview.svg, languages.svg and top_repos.svg from the templates
directory into the output directory. Statistics come from the GitHub API
(ACCESS_TOKEN and GITHUB_ACTOR must be set), or from a JSON snapshot written
by the stats command when --snapshot is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		templateDir, _ := cmd.Flags().GetString("templates")
		outputDir, _ := cmd.Flags().GetString("output")
		snapshotPath, _ := cmd.Flags().GetString("snapshot")

		var provider badge.StatsProvider
		if snapshotPath != "" {
			static, err := usecase.LoadSnapshot(snapshotPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to load snapshot: %v\n", err)
				os.Exit(1)
			}
			provider = static
		} else {
			stats, err := newLiveStats(cmd, logger)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to set up GitHub statistics: %v\n", err)
				os.Exit(1)
			}
			provider = stats
		}

		artifacts, err := badge.NewGenerator(provider, templateDir, outputDir, logger).Generate(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate badges: %v\n", err)
			os.Exit(1)
		}
		for _, a := range artifacts {
			fmt.Println(a.Path)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("templates", "t", "templates", "Directory holding the SVG templates")
	generateCmd.Flags().StringP("output", "o", "generated", "Directory the badges are written to")
	generateCmd.Flags().String("snapshot", "", "Render from a JSON snapshot instead of the GitHub API")
}
