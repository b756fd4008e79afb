package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "neurodose",
	Short: "Track supplement doses and their active concentrations",
	Long:  "Neurodose logs doses and models how much of each compound is active over time, with threshold alerts and interaction scoring.",

	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.neurodose/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(compoundsCmd)
	rootCmd.AddCommand(doseCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(checkCmd)
}
