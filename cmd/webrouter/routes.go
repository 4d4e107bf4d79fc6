package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/facturacom/webrouter/pkg/server"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Long: `List redirects and route definitions in match order.

Examples:
  webrouter routes
  webrouter routes --routes s3://factura-config/web/routes.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.loadTable(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			desc := server.DescribeTable(table)
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(desc)
			}

			fmt.Fprintf(out, "Route table version %s (default title %q)\n\n", desc.Version, desc.DefaultTitle)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tNAME\tPATH\tVIEW\tTITLE")
			for i, r := range desc.Routes {
				title := r.Meta["title"]
				if title == "" {
					title = "-"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i, r.Name, r.Path, r.View, title)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if len(desc.Redirects) > 0 {
				fmt.Fprintln(out)
				for _, rd := range desc.Redirects {
					target := rd.To
					if rd.ToName != "" {
						target = "name:" + rd.ToName
					}
					info(out, "redirect %s → %s", rd.From, target)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the table as JSON")

	return cmd
}
