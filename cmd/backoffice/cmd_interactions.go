package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zatekoja/collectionsdesk/internal/app"
	"github.com/zatekoja/collectionsdesk/internal/query/services"
	"github.com/zatekoja/collectionsdesk/pkg/config"
)

var interactionFlags struct {
	date, name, email, phone string
	page, limit              int
}

func init() {
	rootCmd.AddCommand(interactionsCmd)

	f := interactionsCmd.Flags()
	f.StringVar(&interactionFlags.date, "date", "", "civil day (YYYY-MM-DD, UTC)")
	f.StringVar(&interactionFlags.name, "name", "", "customer name fragment")
	f.StringVar(&interactionFlags.email, "email", "", "customer email fragment")
	f.StringVar(&interactionFlags.phone, "phone", "", "customer phone fragment")
	f.IntVar(&interactionFlags.page, "page", 1, "1-based page")
	f.IntVar(&interactionFlags.limit, "limit", 0, "rows per page (defaults to DEFAULT_PAGE_SIZE)")
}

var interactionsCmd = &cobra.Command{
	Use:   "interactions",
	Short: "List interactions newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, cfg *config.Config) error {
			limit := interactionFlags.limit
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Engine.DefaultPageSize
			}

			page, err := a.Engine.QueryInteractions(ctx, services.FilterCriteria{
				Date:          interactionFlags.date,
				CustomerName:  interactionFlags.name,
				CustomerEmail: interactionFlags.email,
				CustomerPhone: interactionFlags.phone,
				Page:          interactionFlags.page,
				PageSize:      limit,
			})
			if err != nil {
				return fmt.Errorf("query interactions: %w", err)
			}
			return printInteractions(cmd.OutOrStdout(), page)
		})
	},
}

func printInteractions(out io.Writer, page *services.InteractionPage) error {
	if len(page.Rows) == 0 {
		fmt.Fprintf(out, "No interactions on page %d (total %d).\n", page.Page, page.Total)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSTART\tCUSTOMER\tAGENT\tSENTIMENT\tCOST\tFOLLOWUP")
	for _, r := range page.Rows {
		followup := "-"
		if r.FollowupRequired {
			followup = r.FollowupDate
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			r.InteractionDate,
			r.StartTime,
			r.CustomerName,
			r.AgentName,
			r.Sentiment,
			r.Cost,
			followup,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Page %d of %d, %d interactions total.\n", page.Page, page.TotalPages(), page.Total)
	return nil
}
