package main

import (
	"github.com/spf13/cobra"
)

func validateCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [SOURCE]",
		Short: "Validate a route document",
		Long: `Load a route document and check every definition and redirect.

SOURCE defaults to --routes or the configured source.

Examples:
  webrouter validate configs/routes.yaml
  webrouter validate s3://factura-config/web/routes.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.routes = args[0]
			}

			table, err := flags.loadTable(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			success(out, "Route table version %s is valid", table.Version())
			info(out, "%d routes, %d redirects", table.Len(), len(table.Redirects()))
			for _, def := range table.Routes() {
				if _, ok := def.Title(); !ok {
					warn(out, "%s has no title; %q will be shown", def.Path(), table.DefaultTitle())
				}
			}
			return nil
		},
	}

	return cmd
}
