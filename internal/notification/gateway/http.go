package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"immersionfacile/internal/notification/models"
	"immersionfacile/pkg/platform/circuit"
	"immersionfacile/pkg/platform/sentinel"
)

// DefaultTemplateIDs maps email types to provider template ids.
var DefaultTemplateIDs = map[models.EmailType]int{
	models.EmailNewConventionBeneficiaryConfirmation:                 1,
	models.EmailNewConventionMentorConfirmation:                      2,
	models.EmailNewConventionAdminNotification:                       3,
	models.EmailNewConventionAgencyNotification:                      4,
	models.EmailNewConventionReviewForEligibilityOrValidation:        5,
	models.EmailValidatedConventionFinalConfirmation:                 6,
	models.EmailRejectedConventionNotification:                       7,
	models.EmailConventionModificationRequestNotification:            8,
	models.EmailMagicLinkRenewal:                                     9,
	models.EmailNewEstablishmentCreatedContactConfirmation:           10,
	models.EmailBeneficiaryOrMentorAlreadySignedNotification:         11,
	models.EmailNewConventionBeneficiaryConfirmationRequestSignature: 12,
	models.EmailNewConventionMentorConfirmationRequestSignature:      13,
	models.EmailShareDraftConventionByLink:                           14,
	models.EmailCreateImmersionAssessment:                            15,
	models.EmailAgencyWasActivated:                                   16,
	models.EmailEditFormEstablishmentLink:                            17,
	models.EmailContactByEmailRequest:                                18,
	models.EmailContactByPhoneInstructions:                           19,
	models.EmailContactInPersonInstructions:                          20,
}

// HTTP posts templated emails to a transactional email API.
type HTTP struct {
	apiURL    string
	apiKey    string
	sender    string
	templates map[models.EmailType]int
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *circuit.Breaker
	logger    *slog.Logger
}

type HTTPOption func(*HTTP)

func WithHTTPClient(client *http.Client) HTTPOption {
	return func(g *HTTP) {
		g.client = client
	}
}

func WithTemplateIDs(ids map[models.EmailType]int) HTTPOption {
	return func(g *HTTP) {
		g.templates = ids
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) HTTPOption {
	return func(g *HTTP) {
		if perSecond <= 0 {
			g.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		g.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithCircuitBreaker stops calling the provider after repeated transport or
// 5xx failures until a trial call succeeds.
func WithCircuitBreaker(b *circuit.Breaker) HTTPOption {
	return func(g *HTTP) {
		g.breaker = b
	}
}

func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(g *HTTP) {
		g.logger = logger
	}
}

func NewHTTP(apiURL, apiKey, sender string, opts ...HTTPOption) *HTTP {
	g := &HTTP{
		apiURL:    apiURL,
		apiKey:    apiKey,
		sender:    sender,
		templates: DefaultTemplateIDs,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(5, 1),
		breaker: circuit.New("email-provider"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type contact struct {
	Email string `json:"email"`
}

type sendRequest struct {
	TemplateID int       `json:"templateId"`
	Sender     contact   `json:"sender"`
	To         []contact `json:"to"`
	CC         []contact `json:"cc,omitempty"`
	Params     any       `json:"params,omitempty"`
}

func (g *HTTP) Send(ctx context.Context, email models.TemplatedEmail) error {
	templateID, ok := g.templates[email.Type]
	if !ok {
		return fmt.Errorf("no template for email type %s", email.Type)
	}
	body, err := json.Marshal(sendRequest{
		TemplateID: templateID,
		Sender:     contact{Email: g.sender},
		To:         contacts(email.Recipients),
		CC:         contacts(email.CC),
		Params:     email.Params,
	})
	if err != nil {
		return fmt.Errorf("marshal email %s: %w", email.Type, err)
	}

	if !g.breaker.Allow() {
		return fmt.Errorf("send %s: email provider circuit open: %w", email.Type, sentinel.ErrUnavailable)
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for email rate limit: %w", err)
	}

	status, err := g.post(ctx, body)
	if err != nil || status >= http.StatusInternalServerError {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "email provider circuit opened", "breaker", g.breaker.Name())
		}
	} else if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "email provider circuit closed", "breaker", g.breaker.Name())
	}
	if err != nil {
		return fmt.Errorf("post email %s: %w", email.Type, err)
	}
	if status >= http.StatusMultipleChoices {
		return fmt.Errorf("email provider returned %d for %s", status, email.Type)
	}
	return nil
}

func (g *HTTP) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		g.logger.ErrorContext(ctx, "email provider rejected email",
			"status", resp.StatusCode,
			"body", string(detail),
		)
	}
	return resp.StatusCode, nil
}

func contacts(emails []string) []contact {
	if len(emails) == 0 {
		return nil
	}
	out := make([]contact, 0, len(emails))
	for _, e := range emails {
		out = append(out, contact{Email: e})
	}
	return out
}
