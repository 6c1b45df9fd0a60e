package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"immersionfacile/internal/app"
)

func sendAssessmentEmailsCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "send-assessment-emails",
		Short: "Email mentors of immersions ending tomorrow the assessment link",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			if date != "" {
				parsed, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				now = parsed
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.Assessments.SendEmailsWithAssessmentCreationLink(ctx, now)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "run as if today were this date (YYYY-MM-DD)")
	return cmd
}
