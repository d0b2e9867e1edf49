package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "seedwatch",
	Short: "Private tracker statistics poller",
	Long: `seedwatch polls private tracker member pages on per-site schedules,
persists one statistics snapshot per refresh, and answers keyword
searches across the configured sites.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or /etc/seedwatch/config.yaml)")

	rootCmd.AddCommand(runCommand())
	rootCmd.AddCommand(searchCommand())
	rootCmd.AddCommand(latestCommand())
	rootCmd.AddCommand(sitesCommand())
}
