package gateway

import (
	"context"
	"log/slog"
	"strings"

	"immersionfacile/internal/notification/models"
	"immersionfacile/internal/platform/metrics"
	platformstrings "immersionfacile/pkg/platform/strings"
)

// Sender delivers one templated email.
type Sender interface {
	Send(ctx context.Context, email models.TemplatedEmail) error
}

// EmailFilter decides which recipients may receive emails.
type EmailFilter interface {
	Allows(email string) bool
}

// AlwaysAllow lets every recipient through.
type AlwaysAllow struct{}

func (AlwaysAllow) Allows(string) bool { return true }

// AllowList only lets listed addresses through. Matching ignores case.
type AllowList struct {
	emails map[string]struct{}
}

func NewAllowList(emails []string) AllowList {
	normalized := platformstrings.NormalizeEmails(emails)
	set := make(map[string]struct{}, len(normalized))
	for _, e := range normalized {
		set[e] = struct{}{}
	}
	return AllowList{emails: set}
}

func (l AllowList) Allows(email string) bool {
	_, ok := l.emails[normalize(email)]
	return ok
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Filtered drops recipients rejected by the filter before delegating.
// An email left without recipients is skipped, not sent.
type Filtered struct {
	next    Sender
	filter  EmailFilter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewFiltered(next Sender, filter EmailFilter, logger *slog.Logger, m *metrics.Metrics) *Filtered {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filtered{next: next, filter: filter, logger: logger, metrics: m}
}

func (f *Filtered) Send(ctx context.Context, email models.TemplatedEmail) error {
	var skipped int
	email.Recipients, skipped = f.keep(ctx, email.Type, email.Recipients)
	var skippedCC int
	email.CC, skippedCC = f.keep(ctx, email.Type, email.CC)
	f.metrics.AddEmailsFiltered(skipped + skippedCC)

	if len(email.Recipients) == 0 {
		f.logger.InfoContext(ctx, "email skipped, no allowed recipient", "email_type", email.Type)
		return nil
	}
	return f.next.Send(ctx, email)
}

func (f *Filtered) keep(ctx context.Context, emailType models.EmailType, emails []string) ([]string, int) {
	kept := make([]string, 0, len(emails))
	for _, e := range emails {
		if f.filter.Allows(e) {
			kept = append(kept, e)
			continue
		}
		f.logger.InfoContext(ctx, "skipped sending email", "email_type", emailType, "recipient", e)
	}
	return kept, len(emails) - len(kept)
}
