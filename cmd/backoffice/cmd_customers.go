package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zatekoja/collectionsdesk/internal/app"
	"github.com/zatekoja/collectionsdesk/internal/application/services"
	"github.com/zatekoja/collectionsdesk/pkg/config"
)

var customerFlags struct {
	page, limit int
}

func init() {
	rootCmd.AddCommand(customersCmd)

	customersCmd.Flags().IntVar(&customerFlags.page, "page", 1, "1-based page")
	customersCmd.Flags().IntVar(&customerFlags.limit, "limit", 0, "customers per page (defaults to DEFAULT_PAGE_SIZE)")
}

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List customers with their last contact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, cfg *config.Config) error {
			limit := customerFlags.limit
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Engine.DefaultPageSize
			}

			page, err := a.Customers.List(ctx, customerFlags.page, limit)
			if err != nil {
				return fmt.Errorf("list customers: %w", err)
			}
			return printCustomers(cmd.OutOrStdout(), page)
		})
	},
}

func printCustomers(out io.Writer, page *services.CustomerPage) error {
	if len(page.Customers) == 0 {
		fmt.Fprintf(out, "No customers on page %d (total %d).\n", page.Page, page.Total)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tOUTSTANDING\tLAST CONTACT")
	for _, c := range page.Customers {
		last := "never"
		if c.LastContactedDate != "" {
			last = c.LastContactedDate + " " + c.LastContactedOn
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\n",
			c.ID,
			c.DisplayName(),
			c.Email,
			c.Phone,
			c.DebtDetails.TotalOutstanding,
			last,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d customers total.\n", page.Total)
	return nil
}
