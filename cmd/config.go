package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skilltree/internal/config"
)

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or show the configuration",
	}
	cmd.AddCommand(newConfigInitCmd(o), newConfigShowCmd(o))
	return cmd
}

func newConfigInitCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		Long:  "Write a commented default config file to --config or the default location. An existing file is left alone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := o.configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			created, err := config.WriteDefault(path)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, not overwritten\n", path)
			}
			return nil
		},
	}
}

func newConfigShowCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db := o.cfg.DB
			if db == "" {
				p, err := o.resolveDBPath()
				if err != nil {
					return err
				}
				db = p
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", config.KeyFile, o.cfg.File)
			fmt.Fprintf(out, "%s: %s\n", config.KeyPolicy, o.cfg.Policy)
			fmt.Fprintf(out, "%s: %s\n", config.KeyDB, db)
			fmt.Fprintf(out, "%s: %v\n", config.KeyHistoryEnabled, o.cfg.History.Enabled)
			fmt.Fprintf(out, "%s: %d\n", config.KeyHistoryKeep, o.cfg.History.Keep)
			fmt.Fprintf(out, "%s: %v\n", config.KeyVerbose, o.cfg.Verbose)
			return nil
		},
	}
}
