// Package commands holds the operator CLI: schema migrations, the
// assessment email job and outbox inspection.
package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"immersionfacile/internal/app"
	"immersionfacile/internal/platform/config"
	"immersionfacile/internal/platform/logger"
)

var (
	cfg    config.Config
	log    *slog.Logger
	format string
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "immersionctl",
		Short:         "Operate the Immersion Facile backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.FromEnv()
			log = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Server.LogLevel, format)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&format, "log-format", "text", "log format: text or json")

	root.AddCommand(migrateCmd(), sendAssessmentEmailsCmd(), failedEventsCmd(), hashPasswordCmd())
	return root
}

// withApp builds the application graph for one command run.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("failed to close resources", "error", err)
		}
	}()
	return fn(ctx, a)
}
