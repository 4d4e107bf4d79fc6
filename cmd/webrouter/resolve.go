package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/facturacom/webrouter/internal/errors"
	"github.com/facturacom/webrouter/pkg/router"
	"github.com/facturacom/webrouter/pkg/server"
)

func resolveCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve PATH",
		Short: "Resolve a path against the route table",
		Long: `Resolve a path and print the matched route, its parameters and the
document title the client would show.

Examples:
  webrouter resolve /
  webrouter resolve /show/8f14e45f-ceea-467f-a0e6-3b2f6c6b1a2d
  webrouter resolve --routes configs/routes.yaml --json /create`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.loadTable(cmd.Context())
			if err != nil {
				return err
			}

			nav, err := router.NewNavigator(table).Navigate(cmd.Context(), args[0])
			if err != nil {
				return errors.Classify(err)
			}

			out := cmd.OutOrStdout()
			result := server.NewNavigationResult(nav)
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			success(out, "%s → %s", args[0], result.Route)
			if result.RedirectedFrom != "" {
				info(out, "Redirected: %s → %s", result.RedirectedFrom, result.FullPath)
			}
			info(out, "Pattern:    %s", result.Pattern)
			if result.View != "" {
				info(out, "View:       %s", result.View)
			}
			keys := make([]string, 0, len(result.Params))
			for k := range result.Params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				info(out, "Param:      %s = %s", k, result.Params[k])
			}
			if _, ok := result.Params["uuid"]; ok {
				printInvoiceID(out, nav.Event)
			}
			if result.Query != "" {
				info(out, "Query:      %s", result.Query)
			}
			info(out, "Title:      %s", result.Title)
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

// printInvoiceID reports whether a uuid param holds a real CFDI folio fiscal.
// Patterns like /show/:uuid accept any segment, so the table alone does not
// catch a mistyped id.
func printInvoiceID(out io.Writer, ev router.NavigationEvent) {
	var ids struct {
		UUID uuid.UUID `param:"uuid"`
	}
	if err := ev.Decode(&ids); err != nil {
		warn(out, "uuid %q is not a valid CFDI UUID", ev.Params["uuid"])
		return
	}
	info(out, "CFDI UUID:  %s", ids.UUID)
}
