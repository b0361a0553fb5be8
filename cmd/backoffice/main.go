package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zatekoja/collectionsdesk/internal/app"
	"github.com/zatekoja/collectionsdesk/internal/infrastructure/observability"
	"github.com/zatekoja/collectionsdesk/pkg/config"
)

var (
	verbose      bool
	backendFlag  string
	strategyFlag string
)

var rootCmd = &cobra.Command{
	Use:           "backoffice",
	Short:         "Inspect customer interactions and desk settings",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		observability.InitCLILogger("backoffice", verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "store backend (mongo|postgres), overrides STORE_BACKEND")
	rootCmd.PersistentFlags().StringVar(&strategyFlag, "strategy", "", "join strategy (pipeline|inprocess), overrides JOIN_STRATEGY")
}

// withApp connects to the configured stores for the duration of fn
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, cfg *config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if backendFlag != "" {
		cfg.Engine.StoreBackend = backendFlag
	}
	if strategyFlag != "" {
		cfg.Engine.JoinStrategy = strategyFlag
	}
	if err := cfg.Engine.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Close(closeCtx)
	}()

	return fn(ctx, a, cfg)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
