package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Collects GitHub statistics and outputs them as JSON",
	Long: `Collects the statistics the badges are rendered from for GITHUB_ACTOR and
outputs them as a JSON snapshot. The snapshot can be fed back to
"generate --snapshot" to render badges without calling the API again.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		stats, err := newLiveStats(cmd, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set up GitHub statistics: %v\n", err)
			os.Exit(1)
		}

		snapshot, err := stats.Snapshot(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to collect stats: %v\n", err)
			os.Exit(1)
		}

		// Marshal the results into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal results to JSON: %v\n", err)
			os.Exit(1)
		}

		// Print the final JSON to standard output.
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
