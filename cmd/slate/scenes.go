package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slate/internal/script"
)

var scenesCmd = &cobra.Command{
	Use:   "scenes <script>",
	Short: "Preview scene segmentation without running the model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := script.LoadScript(args[0])
		if err != nil {
			return err
		}

		scenes := script.NewParser().Split(text)
		if len(scenes) == 0 {
			return fmt.Errorf("no scenes found in %s (missing sluglines?)", args[0])
		}

		for _, s := range scenes {
			fmt.Printf("%-5s %-8s %-40s %-12s %s\n",
				s.Number, s.IntExt, s.SetName, s.DayNight, s.PageLength())
		}
		fmt.Printf("\n%d scenes\n", len(scenes))
		return nil
	},
}
