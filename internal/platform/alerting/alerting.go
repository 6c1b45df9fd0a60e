// Package alerting posts operational messages to the team Discord channel.
package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// discordContentLimit is the maximum message length Discord accepts.
const discordContentLimit = 2000

// Notifier delivers an operational alert.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Discord posts alerts to a webhook. With an empty webhook URL it only logs.
type Discord struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
}

// Option configures the Discord notifier.
type Option func(*Discord)

func WithHTTPClient(client *http.Client) Option {
	return func(d *Discord) {
		d.client = client
	}
}

func NewDiscord(webhookURL string, logger *slog.Logger, opts ...Option) *Discord {
	d := &Discord{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Discord) Notify(ctx context.Context, message string) error {
	if d.webhookURL == "" {
		d.logger.WarnContext(ctx, "discord alert (webhook not configured)", "message", message)
		return nil
	}
	if len(message) > discordContentLimit {
		message = message[:discordContentLimit-3] + "..."
	}

	body, err := json.Marshal(map[string]string{
		"username": "Immersion Facile Bot",
		"content":  message,
	})
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to notify discord", "error", err)
		return fmt.Errorf("post discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		d.logger.ErrorContext(ctx, "discord webhook rejected alert", "status", resp.StatusCode)
		return fmt.Errorf("discord webhook returned %d", resp.StatusCode)
	}
	return nil
}
