package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"slate/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage slate configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "slate.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cm.Get()
		fmt.Printf("ollama.host:        %s\n", cfg.Ollama.Host)
		fmt.Printf("ollama.model:       %s\n", cfg.Ollama.Model)
		fmt.Printf("ollama.rate_limit:  %v rpm\n", cfg.Ollama.RateLimit)
		fmt.Printf("pipeline.preset:    %s (workers: %d)\n", cfg.Pipeline.Preset, cfg.Pipeline.WorkerCount())
		fmt.Printf("pipeline.stages:    continuity=%v flags=%v implied=%v\n",
			cfg.Pipeline.UseContinuity, cfg.Pipeline.UseFlags, cfg.Pipeline.ExtractImplied)
		fmt.Printf("output.dir:         %s\n", cfg.Output.Dir)
		fmt.Printf("output.checkpoint:  %s\n", cfg.Output.Checkpoint)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
