// Package assessment emails mentors the link to assess an immersion that is
// about to end.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"immersionfacile/internal/auth/magiclink"
	conventionmodels "immersionfacile/internal/convention/models"
	notificationmodels "immersionfacile/internal/notification/models"
	"immersionfacile/internal/outbox"
	"immersionfacile/internal/platform/alerting"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/platform/sentinel"
	"immersionfacile/pkg/platform/tx"
	"immersionfacile/pkg/requestcontext"
)

const defaultConcurrency = 4

// Conventions lists validated conventions still owed an assessment email.
type Conventions interface {
	ConventionsEndingOn(ctx context.Context, dateEnd string) ([]*conventionmodels.Convention, error)
	GetConvention(ctx context.Context, id conventionmodels.ID) (*conventionmodels.ConventionRead, error)
}

type Sender interface {
	Send(ctx context.Context, email notificationmodels.TemplatedEmail) error
}

type MagicLinks interface {
	GenerateMagicLink(ctx context.Context, id conventionmodels.ID, role conventionmodels.Role, targetRoute, email string) (string, error)
}

type EventFactory interface {
	New(ctx context.Context, topic outbox.Topic, payload any) (outbox.Event, error)
}

// Report is the outcome of one run.
type Report struct {
	Succeeded []conventionmodels.ID
	Failures  map[conventionmodels.ID]string
}

// Summary is the one-line digest posted after each run.
func (r Report) Summary() string {
	msg := fmt.Sprintf("Script summary: Succeed: %d; Failed: %d", len(r.Succeeded), len(r.Failures))
	if len(r.Failures) == 0 {
		return msg
	}
	ids := make([]string, 0, len(r.Failures))
	for id := range r.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var b strings.Builder
	b.WriteString(msg)
	b.WriteString("\nErrors were :")
	for _, id := range ids {
		fmt.Fprintf(&b, "\n%s: %s", id, r.Failures[id])
	}
	return b.String()
}

// Service sends assessment creation links.
type Service struct {
	conventions Conventions
	sender      Sender
	links       MagicLinks
	events      outbox.Saver
	factory     EventFactory
	assessments Store
	tx          tx.Runner
	notifier    alerting.Notifier
	logger      *slog.Logger
	concurrency int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithNotifier(n alerting.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithStore persists created assessments. Defaults to memory.
func WithStore(store Store, runner tx.Runner) Option {
	return func(s *Service) {
		s.assessments = store
		s.tx = runner
	}
}

func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func New(conventions Conventions, sender Sender, links MagicLinks, events outbox.Saver, factory EventFactory, opts ...Option) *Service {
	s := &Service{
		conventions: conventions,
		sender:      sender,
		links:       links,
		events:      events,
		factory:     factory,
		assessments: NewInMemoryStore(),
		tx:          tx.NewMemoryRunner(),
		logger:      slog.Default(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendEmailsWithAssessmentCreationLink emails the mentor of every validated
// convention ending the day after now. A failing convention does not stop
// the others.
func (s *Service) SendEmailsWithAssessmentCreationLink(ctx context.Context, now time.Time) (Report, error) {
	ctx = requestcontext.WithTime(ctx, now)
	tomorrow := now.AddDate(0, 0, 1).Format(time.DateOnly)

	conventions, err := s.conventions.ConventionsEndingOn(ctx, tomorrow)
	if err != nil {
		return Report{}, fmt.Errorf("list conventions ending on %s: %w", tomorrow, err)
	}
	s.logger.InfoContext(ctx, "sending assessment creation links",
		"date_end", tomorrow,
		"conventions", len(conventions),
	)

	var (
		mu     sync.Mutex
		report = Report{Succeeded: []conventionmodels.ID{}, Failures: map[conventionmodels.ID]string{}}
	)
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, c := range conventions {
		g.Go(func() error {
			err := s.sendOne(ctx, *c)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.ErrorContext(ctx, "failed to send assessment link",
					"convention_id", c.ID,
					"error", err,
				)
				report.Failures[c.ID] = err.Error()
				return nil
			}
			report.Succeeded = append(report.Succeeded, c.ID)
			return nil
		})
	}
	_ = g.Wait()
	sort.Strings(report.Succeeded)

	summary := report.Summary()
	s.logger.InfoContext(ctx, summary)
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, summary); err != nil {
			s.logger.WarnContext(ctx, "failed to post assessment summary", "error", err)
		}
	}
	return report, nil
}

func (s *Service) sendOne(ctx context.Context, c conventionmodels.Convention) error {
	link, err := s.links.GenerateMagicLink(ctx, c.ID, conventionmodels.RoleEstablishment, magiclink.RouteAssessment, c.MentorEmail)
	if err != nil {
		return fmt.Errorf("mint assessment link: %w", err)
	}
	err = s.sender.Send(ctx, notificationmodels.TemplatedEmail{
		Type:       notificationmodels.EmailCreateImmersionAssessment,
		Recipients: []string{c.MentorEmail},
		Params: notificationmodels.AssessmentParams{
			MentorName:                      c.Mentor,
			BeneficiaryFirstName:            c.FirstName,
			BeneficiaryLastName:             c.LastName,
			ImmersionAssessmentCreationLink: link,
		},
	})
	if err != nil {
		return fmt.Errorf("send assessment email: %w", err)
	}
	event, err := s.factory.New(ctx, outbox.TopicAssessmentLinkSent, conventionmodels.AssessmentLinkSentPayload{ID: c.ID})
	if err != nil {
		return err
	}
	if err := s.events.Save(ctx, event); err != nil {
		return fmt.Errorf("save %s event: %w", outbox.TopicAssessmentLinkSent, err)
	}
	return nil
}

// CreateAssessment records the establishment's feedback on a validated
// convention. Only the establishment holding a link to that convention may
// create it, and only once.
func (s *Service) CreateAssessment(ctx context.Context, a *Assessment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	actor, ok := requestcontext.ConventionActor(ctx)
	if !ok || conventionmodels.Role(actor.Role) != conventionmodels.RoleEstablishment {
		return dErrors.New(dErrors.CodeForbidden, "only the establishment may assess an immersion")
	}
	if actor.ConventionID != a.ConventionID {
		return dErrors.New(dErrors.CodeForbidden, "magic link does not match the convention")
	}
	c, err := s.conventions.GetConvention(ctx, a.ConventionID)
	if err != nil {
		return err
	}
	if c.Status != conventionmodels.StatusValidated {
		return dErrors.Newf(dErrors.CodeBadRequest, "convention %s is %s, only validated conventions can be assessed", c.ID, c.Status)
	}
	a.CreatedAt = requestcontext.Now(ctx)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.assessments.Create(ctx, a); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Newf(dErrors.CodeConflict, "convention %s already has an assessment", a.ConventionID)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save assessment")
		}
		event, err := s.factory.New(ctx, outbox.TopicAssessmentCreated, a)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build event")
		}
		if err := s.events.Save(ctx, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save event")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "immersion assessment created",
		"convention_id", a.ConventionID,
		"status", a.Status,
	)
	return nil
}
