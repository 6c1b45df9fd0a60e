package assessment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the assessment job on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	service *Service
	logger  *slog.Logger
}

// NewScheduler parses schedule as a standard five-field cron expression.
func NewScheduler(schedule string, service *Service, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		service: service,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("parse assessment schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the schedule until ctx is cancelled, then waits for a running
// job to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron.Start()
	s.logger.InfoContext(ctx, "assessment scheduler started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("assessment scheduler stopped")
	return nil
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if _, err := s.service.SendEmailsWithAssessmentCreationLink(ctx, time.Now()); err != nil {
		s.logger.ErrorContext(ctx, "assessment job failed", "error", err)
	}
}
