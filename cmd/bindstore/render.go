package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/bindstore/internal/config"
)

func renderCmd(envFile *string) *cobra.Command {
	flags := config.New()

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the dashboard outline of a seed file",
		Long: `Mount the key dashboard over the seed file and print its rendered
outline, one bound row per key.

Examples:
  bindstore render --seed state.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := cfg.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			s, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			dash, err := mountDashboard(s, logger)
			if err != nil {
				return err
			}
			defer dash.Close()
			return dash.WriteTo(cmd.OutOrStdout())
		},
	}
	flags.BindFlags(cmd.Flags())

	return cmd
}
