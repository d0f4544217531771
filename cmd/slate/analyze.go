package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"slate/internal/breakdown"
	"slate/internal/config"
	"slate/internal/export"
	"slate/internal/providers"
	"slate/internal/script"
)

var (
	analyzeFrom       string
	analyzeTo         string
	analyzeCategories []string
	analyzeCSV        string
	analyzePreset     string
	analyzeWorkers    int
	analyzeModel      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <script>",
	Short: "Run the full breakdown pipeline over a script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scriptPath := args[0]

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg, err := analyzeConfig(cm.Get())
		if err != nil {
			return err
		}

		logger := slog.Default()

		text, err := script.LoadScript(scriptPath)
		if err != nil {
			return err
		}
		scenes := script.NewParser().Split(text)
		if len(scenes) == 0 {
			return fmt.Errorf("no scenes found in %s (missing sluglines?)", scriptPath)
		}
		logger.Info("script segmented", "path", scriptPath, "scenes", len(scenes))

		client, err := providers.NewOllamaClient(cfg.ToOllamaConfig())
		if err != nil {
			return err
		}

		pipeline := breakdown.New(client, cfg.ToPipelineConfig(), logger)
		go func() {
			<-cmd.Context().Done()
			pipeline.Stop()
		}()

		result := pipeline.Run(cmd.Context(), scenes, breakdown.RunOptions{
			Categories: analyzeCategories,
			FromScene:  analyzeFrom,
			ToScene:    analyzeTo,
			Progress: func(progress float64, totalScenes int) {
				fmt.Printf("\rprogress: %5.1f%% (%d scenes)", progress*100, totalScenes)
			},
		})
		fmt.Println()

		logger.Info("breakdown finished",
			"requested", result.Requested,
			"enriched", result.Enriched,
			"skipped", result.Skipped,
			"catalog_entries", result.Catalog.Len(),
			"cancelled", result.Cancelled)

		if cfg.Output.Checkpoint != "" {
			cp := &export.Checkpoint{ScriptPath: scriptPath, Scenes: result.Scenes}
			if err := export.SaveCheckpoint(cfg.Output.Checkpoint, cp); err != nil {
				return err
			}
			logger.Info("checkpoint saved", "path", cfg.Output.Checkpoint)
		}

		if analyzeCSV != "" {
			if err := export.WriteCSVFile(analyzeCSV, result.Scenes); err != nil {
				return err
			}
			logger.Info("review sheet written", "path", analyzeCSV)
		}

		if result.Cancelled {
			return fmt.Errorf("run cancelled after %d of %d scenes", result.Enriched, result.Requested)
		}
		return nil
	},
}

// analyzeConfig applies per-invocation flag overrides to a copy of the
// managed config, leaving the manager's live config untouched.
func analyzeConfig(base *config.Config) (*config.Config, error) {
	cfg := *base
	if analyzePreset != "" {
		cfg.Pipeline.Preset = analyzePreset
		cfg.Pipeline.Workers = 0
	}
	if analyzeWorkers > 0 {
		cfg.Pipeline.Workers = analyzeWorkers
	}
	if analyzeModel != "" {
		cfg.Ollama.Model = analyzeModel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "first scene number to process")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "", "last scene number to process")
	analyzeCmd.Flags().StringSliceVar(&analyzeCategories, "categories", nil,
		"categories to extract (default: all, e.g. --categories Props,Vehicles)")
	analyzeCmd.Flags().StringVar(&analyzeCSV, "csv", "", "write a CSV review sheet to this path")
	analyzeCmd.Flags().StringVar(&analyzePreset, "preset", "",
		"performance preset: "+strings.Join([]string{"eco", "power", "turbo", "max"}, ", "))
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "explicit worker count (overrides preset)")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "override the configured model")
}
