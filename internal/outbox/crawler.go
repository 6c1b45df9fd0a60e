package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"immersionfacile/pkg/requestcontext"
)

// Publisher delivers one event. *Bus implements it.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

// Lease grants exclusive crawling to one instance at a time.
type Lease interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Crawler polls the store and hands events to the publisher.
type Crawler struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	metrics   *Metrics
	lease     Lease

	newEventsPeriod time.Duration
	retryPeriod     time.Duration
}

type CrawlerOption func(*Crawler)

func WithCrawlerLogger(logger *slog.Logger) CrawlerOption {
	return func(c *Crawler) {
		c.logger = logger
	}
}

func WithCrawlerMetrics(m *Metrics) CrawlerOption {
	return func(c *Crawler) {
		c.metrics = m
	}
}

// WithLease makes the crawler skip ticks while another instance holds the lease.
func WithLease(l Lease) CrawlerOption {
	return func(c *Crawler) {
		c.lease = l
	}
}

func WithPeriods(newEvents, retry time.Duration) CrawlerOption {
	return func(c *Crawler) {
		if newEvents > 0 {
			c.newEventsPeriod = newEvents
		}
		if retry > 0 {
			c.retryPeriod = retry
		}
	}
}

func NewCrawler(store Store, publisher Publisher, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		store:           store,
		publisher:       publisher,
		logger:          slog.Default(),
		newEventsPeriod: 10 * time.Second,
		retryPeriod:     time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProcessNewEvents publishes every unpublished event, oldest first.
func (c *Crawler) ProcessNewEvents(ctx context.Context) error {
	events, err := c.store.UnpublishedEvents(ctx)
	if err != nil {
		return fmt.Errorf("fetch unpublished events: %w", err)
	}
	c.metrics.SetCrawled("new", len(events))
	return c.publishAll(ctx, events)
}

// RetryFailedEvents republishes events whose last publication failed.
func (c *Crawler) RetryFailedEvents(ctx context.Context) error {
	events, err := c.store.FailedEvents(ctx)
	if err != nil {
		return fmt.Errorf("fetch failed events: %w", err)
	}
	c.metrics.SetCrawled("failed", len(events))
	if len(events) > 0 {
		c.logger.InfoContext(ctx, "retrying failed events", "count", len(events))
	}
	return c.publishAll(ctx, events)
}

func (c *Crawler) publishAll(ctx context.Context, events []Event) error {
	for i := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Subscribers and publishedAt share one clock reading per event.
		evCtx := requestcontext.WithTime(ctx, time.Now())
		if err := c.publisher.Publish(evCtx, &events[i]); err != nil {
			c.logger.ErrorContext(ctx, "failed to publish event",
				"event_id", events[i].ID,
				"topic", events[i].Topic,
				"error", err,
			)
		}
	}
	return nil
}

// Start polls until ctx is cancelled. It always returns nil on cancellation.
func (c *Crawler) Start(ctx context.Context) error {
	c.logger.InfoContext(ctx, "event crawler started",
		"new_events_period", c.newEventsPeriod,
		"retry_period", c.retryPeriod,
	)
	newTicker := time.NewTicker(c.newEventsPeriod)
	defer newTicker.Stop()
	retryTicker := time.NewTicker(c.retryPeriod)
	defer retryTicker.Stop()

	defer c.releaseLease()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("event crawler stopped")
			return nil
		case <-newTicker.C:
			c.tick(ctx, "new", c.ProcessNewEvents)
		case <-retryTicker.C:
			c.tick(ctx, "retry", c.RetryFailedEvents)
		}
	}
}

func (c *Crawler) tick(ctx context.Context, kind string, fn func(context.Context) error) {
	if c.lease != nil {
		held, err := c.lease.TryAcquire(ctx)
		if err != nil {
			c.logger.WarnContext(ctx, "crawler lease unavailable", "error", err)
			return
		}
		if !held {
			return
		}
	}
	if err := fn(ctx); err != nil && ctx.Err() == nil {
		c.logger.ErrorContext(ctx, "crawler pass failed", "kind", kind, "error", err)
	}
}

func (c *Crawler) releaseLease() {
	if c.lease == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.lease.Release(ctx); err != nil {
		c.logger.Warn("failed to release crawler lease", "error", err)
	}
}
