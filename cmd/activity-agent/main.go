package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "activity-agent",
		Short:        "Track active editing time per file, project and language",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "config/local.yaml", "Path to configuration file")

	root.AddCommand(newRunCmd(), newStatsCmd())
	return root
}
