package commands

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"immersionfacile/internal/app"
	"immersionfacile/internal/outbox"
)

func failedEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "failed-events",
		Short: "Print events whose last publication failed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				events, err := a.Events.FailedEvents(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(outbox.ToDebugInfos(events))
			})
		},
	}
}
