// Package commands holds the storebot command line.
package commands

import (
	"github.com/spf13/cobra"
)

const (
	configEnvVar      = "CONFIG_PATH"
	defaultConfigPath = "config.yaml"
)

var configPath string

// Execute runs the root command. Without a subcommand the bot is served.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	serve := serveCmd()
	root := &cobra.Command{
		Use:          "storebot",
		Short:        "Village Gaming Store Telegram bot",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default $CONFIG_PATH or ./config.yaml)")
	root.AddCommand(serve, catalogCmd(), versionCmd())
	return root
}
