package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"slate/version"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "slate",
	Short: "Screenplay breakdown pipeline powered by local LLMs",
	Long: `Slate turns a screenplay into a tagged production breakdown using a
locally hosted language model.

The pipeline includes:
  - Slugline-based scene segmentation (.txt and .fdx)
  - Multi-pass production element extraction per scene
  - Cross-scene continuity reconciliation against a running catalog
  - Safety and risk flagging for human review
  - CSV review sheet and JSON checkpoint export`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./slate.yaml or ~/.slate/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	// Configure logging before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scenesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
