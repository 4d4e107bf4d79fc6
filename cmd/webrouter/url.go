package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facturacom/webrouter/internal/errors"
)

func urlCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url NAME [key=value...]",
		Short: "Build the path for a named route",
		Long: `Build the path for a named route from parameter values.

Examples:
  webrouter url Home
  webrouter url Show uuid=8f14e45f-ceea-467f-a0e6-3b2f6c6b1a2d`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := make(map[string]string, len(args)-1)
			for _, arg := range args[1:] {
				key, value, ok := strings.Cut(arg, "=")
				if !ok || key == "" {
					return errors.New("E300").
						WithDetail(fmt.Sprintf("Parameter %q is not key=value", arg))
				}
				params[key] = value
			}

			table, err := flags.loadTable(cmd.Context())
			if err != nil {
				return err
			}

			path, err := table.URL(args[0], params)
			if err != nil {
				return errors.Classify(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	return cmd
}
