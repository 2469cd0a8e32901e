package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/bindstore/internal/config"
	"github.com/vango-dev/bindstore/pkg/inspect"
)

func keysCmd(envFile *string) *cobra.Command {
	flags := config.New()
	var match string

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the keys of a seed file",
		Long: `Load the seed file into a fresh store and print its keys and values.

Examples:
  bindstore keys --seed state.yaml
  bindstore keys --seed state.yaml --match 'user/**'`,
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
			keys, err := inspect.MatchKeys(s, match)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, k := range keys {
				fmt.Fprintf(tw, "%s\t%v\n", k.Key, s.Get(k.Key))
			}
			return tw.Flush()
		},
	}
	flags.BindFlags(cmd.Flags())
	cmd.Flags().StringVarP(&match, "match", "m", "", "doublestar pattern filtering key names")

	return cmd
}
