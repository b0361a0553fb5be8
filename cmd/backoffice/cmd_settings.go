package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zatekoja/collectionsdesk/internal/app"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/pkg/config"
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage desk settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings with the secret masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, cfg *config.Config) error {
			settings, err := a.Settings.Get(ctx)
			if err != nil {
				return fmt.Errorf("get settings: %w", err)
			}
			return printSettings(cmd.OutOrStdout(), settings)
		})
	},
}

func printSettings(out io.Writer, s *entities.Settings) error {
	orUnset := func(v string) string {
		if v == "" {
			return "(unset)"
		}
		return v
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "apiUrl\t%s\n", orUnset(s.APIURL))
	fmt.Fprintf(w, "livekit_host\t%s\n", orUnset(s.LiveKitHost))
	fmt.Fprintf(w, "livekit_api_key\t%s\n", orUnset(s.LiveKitAPIKey))
	fmt.Fprintf(w, "livekit_api_secret\t%s\n", orUnset(s.LiveKitAPISecret))
	status := "not configured"
	if s.LiveKitConfigured() {
		status = "ready"
	}
	fmt.Fprintf(w, "live sessions\t%s\n", status)
	return w.Flush()
}
