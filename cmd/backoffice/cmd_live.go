package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zatekoja/collectionsdesk/internal/app"
	appservices "github.com/zatekoja/collectionsdesk/internal/application/services"
	"github.com/zatekoja/collectionsdesk/pkg/config"
)

func init() {
	rootCmd.AddCommand(liveCmd)
	liveCmd.AddCommand(liveRoomsCmd)
}

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Inspect the live session server",
}

var liveRoomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List calls currently open for monitoring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, cfg *config.Config) error {
			rooms, err := a.LiveSessions.ListRooms(ctx)
			if err != nil {
				return fmt.Errorf("list rooms: %w", err)
			}
			return printRooms(cmd.OutOrStdout(), rooms)
		})
	},
}

func printRooms(out io.Writer, rooms []appservices.LiveRoom) error {
	if len(rooms) == 0 {
		_, err := fmt.Fprintln(out, "No open rooms.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROOM\tSID\tPARTICIPANTS\tOPENED")
	for _, r := range rooms {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Name, r.SID, r.NumParticipants, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
