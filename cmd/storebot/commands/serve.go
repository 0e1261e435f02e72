package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	corecmd "github.com/villagegaming/storebot/core/cmd"
	"github.com/villagegaming/storebot/internal/app"
	"github.com/villagegaming/storebot/internal/config"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return corecmd.Run(cmd.Context(), corecmd.Options{
				ConfigPath:        configPath,
				ConfigEnvVar:      configEnvVar,
				DefaultConfigPath: defaultConfigPath,
				LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
					return config.Load(path)
				},
				Bootstrap: func(ctx context.Context, cc corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
					cfg, ok := cc.(*config.Config)
					if !ok {
						return nil, fmt.Errorf("serve: unexpected config type %T", cc)
					}
					return app.Bootstrap(ctx, cfg)
				},
			})
		},
	}
}
