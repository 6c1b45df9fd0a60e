// Package app builds the object graph shared by the server and the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"immersionfacile/internal/admin"
	adminadapters "immersionfacile/internal/admin/adapters"
	agencyhandler "immersionfacile/internal/agency/handler"
	agencyservice "immersionfacile/internal/agency/service"
	agencystore "immersionfacile/internal/agency/store"
	"immersionfacile/internal/assessment"
	adminauth "immersionfacile/internal/auth/admin"
	"immersionfacile/internal/auth/apiconsumer"
	"immersionfacile/internal/auth/magiclink"
	conventionhandler "immersionfacile/internal/convention/handler"
	conventionservice "immersionfacile/internal/convention/service"
	conventionstore "immersionfacile/internal/convention/store"
	documenthandler "immersionfacile/internal/document/handler"
	documentservice "immersionfacile/internal/document/service"
	documentstore "immersionfacile/internal/document/store"
	establishmenthandler "immersionfacile/internal/establishment/handler"
	establishmentservice "immersionfacile/internal/establishment/service"
	establishmentstore "immersionfacile/internal/establishment/store"
	"immersionfacile/internal/immersionoffer/geocoder"
	offerhandler "immersionfacile/internal/immersionoffer/handler"
	offerservice "immersionfacile/internal/immersionoffer/service"
	offerstore "immersionfacile/internal/immersionoffer/store"
	"immersionfacile/internal/notification/gateway"
	notificationmodels "immersionfacile/internal/notification/models"
	notificationservice "immersionfacile/internal/notification/service"
	"immersionfacile/internal/outbox"
	"immersionfacile/internal/outbox/lease"
	outboxstore "immersionfacile/internal/outbox/store"
	"immersionfacile/internal/partner"
	"immersionfacile/internal/platform/alerting"
	"immersionfacile/internal/platform/config"
	"immersionfacile/internal/platform/httpserver"
	"immersionfacile/internal/platform/metrics"
	"immersionfacile/internal/platform/postgres"
	"immersionfacile/internal/platform/redis"
	"immersionfacile/internal/ratelimit"
	httptransport "immersionfacile/internal/transport/http"
	"immersionfacile/pkg/geo"
	"immersionfacile/pkg/platform/circuit"
	"immersionfacile/pkg/platform/middleware/metadata"
	"immersionfacile/pkg/platform/tx"
)

// EventStore is the outbox store with the read queries used by the
// assessment job and the admin views.
type EventStore interface {
	outbox.Store
	All(ctx context.Context) ([]outbox.Event, error)
	PayloadIDs(ctx context.Context, topic outbox.Topic) ([]string, error)
}

// App holds every wired component.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	DB    *sql.DB
	Redis *redis.Client

	Events  EventStore
	Bus     *outbox.Bus
	Crawler *outbox.Crawler

	Agencies       *agencyservice.Service
	Conventions    *conventionservice.Service
	Establishments *establishmentservice.Service
	Offers         *offerservice.Service
	Notifications  *notificationservice.Service
	Assessments    *assessment.Service
	Documents      *documentservice.Service
	MagicLinks     *magiclink.Service
	AdminAuth      *adminauth.Service
	APIConsumers   *apiconsumer.Registry
	Partners       partner.Producer
	EmailLog       admin.EmailLog

	Router http.Handler

	trustedProxies []netip.Prefix
	closers        []func() error
}

type repositories struct {
	agencies       agencyservice.Store
	agencyReader   notificationservice.AgencyReader
	conventions    conventionservice.Store
	establishments establishmentservice.Store
	offers         offerservice.Store
	assessments    assessment.Store
	events         EventStore
	runner         tx.Runner
}

// New connects the configured backends and wires the services.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.NewWithRegisterer(a.Registry)

	repos, err := a.openRepositories(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Events = repos.events

	if err := a.wire(ctx, repos); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) openRepositories(ctx context.Context) (repositories, error) {
	switch a.Config.Repositories {
	case config.RepositoriesPG:
		db, err := postgres.Open(ctx, a.Config.Database)
		if err != nil {
			return repositories{}, fmt.Errorf("open postgres: %w", err)
		}
		a.DB = db
		a.closers = append(a.closers, db.Close)
		agencies := agencystore.NewPostgres(db)
		return repositories{
			agencies:       agencies,
			agencyReader:   agencies,
			conventions:    conventionstore.NewPostgres(db),
			establishments: establishmentstore.NewPostgres(db),
			offers:         offerstore.NewPostgres(db),
			assessments:    assessment.NewPostgresStore(db),
			events:         outboxstore.NewPostgres(db),
			runner:         tx.NewSQLRunner(db),
		}, nil
	case config.RepositoriesInMemory, "":
		agencies := agencystore.NewInMemory(agencystore.TestAgencies()...)
		return repositories{
			agencies:       agencies,
			agencyReader:   agencies,
			conventions:    conventionstore.NewInMemory(),
			establishments: establishmentstore.NewInMemory(),
			offers:         offerstore.NewInMemory(),
			assessments:    assessment.NewInMemoryStore(),
			events:         outboxstore.NewInMemory(),
			runner:         tx.NewMemoryRunner(),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unknown REPOSITORIES %q", a.Config.Repositories)
	}
}

func (a *App) wire(ctx context.Context, repos repositories) error {
	cfg := a.Config
	logger := a.Logger

	discord := alerting.NewDiscord(cfg.Alerting.DiscordWebhookURL, logger)
	outboxMetrics := outbox.NewMetrics(a.Registry)

	quarantined := make([]outbox.Topic, 0, len(cfg.Outbox.QuarantinedTopics))
	for _, t := range cfg.Outbox.QuarantinedTopics {
		quarantined = append(quarantined, outbox.Topic(t))
	}
	factory := outbox.NewFactory(outbox.WithQuarantinedTopics(quarantined...))

	a.Bus = outbox.NewBus(repos.events,
		outbox.WithLogger(logger),
		outbox.WithMetrics(outboxMetrics),
		outbox.WithAlerter(discord),
		outbox.WithMaxPublications(cfg.Outbox.MaxPublications),
	)

	crawlerOpts := []outbox.CrawlerOption{
		outbox.WithCrawlerLogger(logger),
		outbox.WithCrawlerMetrics(outboxMetrics),
		outbox.WithPeriods(cfg.Outbox.CrawlerPeriod, cfg.Outbox.RetryPeriod),
	}
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		a.Redis = redisClient
		a.closers = append(a.closers, redisClient.Close)
		crawlerOpts = append(crawlerOpts, outbox.WithLease(lease.NewRedisLease(redisClient.Client, cfg.Redis.LeaseTTL)))
	}
	a.Crawler = outbox.NewCrawler(repos.events, a.Bus, crawlerOpts...)

	a.MagicLinks = magiclink.New(cfg.Auth.JWTSigningKey, cfg.Server.FrontBaseURL, magiclink.WithTTL(cfg.Auth.MagicLinkTTL))
	consumers, err := apiconsumer.New(cfg.Auth.APIConsumers)
	if err != nil {
		return fmt.Errorf("parse API_CONSUMERS: %w", err)
	}
	a.APIConsumers = consumers
	proxies, err := metadata.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("parse TRUSTED_PROXIES: %w", err)
	}
	a.trustedProxies = proxies

	a.AdminAuth = adminauth.New(cfg.Auth.AdminUser, cfg.Auth.AdminPasswordHash, cfg.Auth.JWTSigningKey,
		adminauth.WithTokenTTL(cfg.Auth.AdminTokenTTL),
		adminauth.WithLogger(logger),
	)

	sender, emailLog := a.emailGateway()
	a.EmailLog = emailLog

	a.Agencies = agencyservice.New(repos.agencies, repos.events, factory, repos.runner,
		agencyservice.WithLogger(logger),
		agencyservice.WithMetrics(a.Metrics),
	)
	a.Conventions = conventionservice.New(repos.conventions, repos.agencyReader, repos.events, factory, repos.runner,
		conventionservice.WithLogger(logger),
		conventionservice.WithMetrics(a.Metrics),
		conventionservice.WithMagicLinks(a.MagicLinks),
		conventionservice.WithEventQueries(repos.events),
	)
	a.Establishments = establishmentservice.New(repos.establishments, repos.events, factory, repos.runner, logger)
	a.Offers = offerservice.New(repos.offers, a.geocoder(), repos.events, factory, repos.runner,
		offerservice.WithLogger(logger),
	)
	a.Offers.Subscribe(a.Bus)

	a.Notifications = notificationservice.New(sender, repos.agencyReader, a.MagicLinks,
		notificationservice.WithLogger(logger),
		notificationservice.WithMetrics(a.Metrics),
	)
	a.Notifications.Subscribe(a.Bus)

	producer, err := a.partnerProducer(ctx)
	if err != nil {
		return err
	}
	a.Partners = producer
	partner.NewBroadcaster(producer, logger).Subscribe(a.Bus)

	a.Assessments = assessment.New(a.Conventions, sender, a.MagicLinks, repos.events, factory,
		assessment.WithLogger(logger),
		assessment.WithNotifier(discord),
		assessment.WithStore(repos.assessments, repos.runner),
	)

	files, err := a.fileStore(ctx)
	if err != nil {
		return err
	}
	a.Documents = documentservice.New(files, cfg.Storage.PublicBaseURL, documentservice.WithLogger(logger))

	a.Router = a.router()
	return nil
}

// emailGateway returns the allow-list filtered sender and the log of sent
// emails shown in the back office.
func (a *App) emailGateway() (gateway.Sender, admin.EmailLog) {
	cfg := a.Config.Email
	var (
		next gateway.Sender
		log  admin.EmailLog = noEmailLog{}
	)
	switch cfg.Gateway {
	case config.EmailGatewayHTTP:
		next = gateway.NewHTTP(cfg.APIURL, cfg.APIKey, cfg.Sender,
			gateway.WithRateLimit(cfg.RatePerSecond),
			gateway.WithCircuitBreaker(circuit.New("email-provider",
				circuit.WithFailureThreshold(cfg.BreakerFailures),
				circuit.WithCooldown(cfg.BreakerCooldown),
			)),
			gateway.WithHTTPLogger(a.Logger),
		)
	default:
		mem := gateway.NewInMemory(cfg.KeptEmailsCount)
		next, log = mem, mem
	}

	var filter gateway.EmailFilter = gateway.NewAllowList(cfg.AllowList)
	if cfg.SkipAllowList {
		filter = gateway.AlwaysAllow{}
	}
	return gateway.NewFiltered(next, filter, a.Logger, a.Metrics), log
}

// geocoder positions establishments. The in-memory mode places every
// address in central Paris.
func (a *App) geocoder() offerservice.Geocoder {
	cfg := a.Config.AddressAPI
	if cfg.Gateway != config.AddressGatewayHTTP {
		return geocoder.NewStatic(geo.Position{Lat: 48.8566, Lon: 2.3522})
	}
	return geocoder.NewHTTP(cfg.URL,
		geocoder.WithCircuitBreaker(circuit.New("address-api",
			circuit.WithFailureThreshold(cfg.BreakerFailures),
			circuit.WithCooldown(cfg.BreakerCooldown),
		)),
		geocoder.WithLogger(a.Logger),
	)
}

func (a *App) partnerProducer(ctx context.Context) (partner.Producer, error) {
	cfg := a.Config.Kafka
	if len(cfg.Brokers) == 0 {
		a.Logger.InfoContext(ctx, "no kafka broker configured, partner messages stay in memory")
		return partner.NewInMemoryProducer(), nil
	}
	producer, err := partner.NewKafkaProducer(cfg.Brokers, cfg.PartnerTopic, a.Logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error {
		producer.Close()
		return nil
	})
	if err := producer.EnsureTopic(ctx, cfg.TopicPartition); err != nil {
		return nil, err
	}
	return producer, nil
}

func (a *App) fileStore(ctx context.Context) (documentservice.Store, error) {
	if a.Config.Storage.Endpoint == "" {
		return documentstore.NewInMemory(), nil
	}
	files, err := documentstore.NewMinIO(ctx, a.Config.Storage)
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}
	return files, nil
}

func (a *App) router() http.Handler {
	logger := a.Logger
	conventions := conventionhandler.New(a.Conventions, a.Notifications, logger)
	agencies := agencyhandler.New(a.Agencies, logger)
	establishments := establishmenthandler.New(a.Establishments, a.MagicLinks, logger)
	offers := offerhandler.New(a.Offers, logger)
	assessments := assessment.NewHandler(a.Assessments, logger)
	documents := documenthandler.New(a.Documents, logger)
	backOffice := admin.New(a.AdminAuth, a.EmailLog, adminadapters.NewFailedEventsAdapter(a.Events), a.MagicLinks, logger)

	checks := map[string]httptransport.HealthCheck{}
	if a.DB != nil {
		checks["postgres"] = a.DB.PingContext
	}
	var limits ratelimit.Store = ratelimit.NewInMemory()
	if a.Redis != nil {
		checks["redis"] = a.Redis.Health
		limits = ratelimit.NewRedis(a.Redis.Client)
	}
	throttle := ratelimit.New(limits, logger,
		ratelimit.WithLimit(a.Config.RateLimit.Requests, a.Config.RateLimit.Window),
		ratelimit.WithMetrics(a.Metrics),
		ratelimit.WithDisabled(a.Config.RateLimit.Disabled),
	)

	return httptransport.NewRouter(httptransport.Config{
		Logger:         logger,
		Metrics:        a.Metrics,
		Gatherer:       a.Registry,
		MagicLinks:     a.MagicLinks,
		Admins:         a.AdminAuth,
		APIConsumers:   a.APIConsumers,
		HealthChecks:   checks,
		TrustedProxies: a.trustedProxies,
		Throttle:       throttle.Handler,
	}, httptransport.Handlers{
		Public:      []httptransport.Routes{conventions, agencies, establishments, offers, backOffice},
		Uploads:     []httptransport.Routes{documents},
		MagicLink:   []httptransport.MagicLinkRoutes{conventions, assessments},
		Admin:       []httptransport.AdminRoutes{conventions, agencies, backOffice},
		APIConsumer: []httptransport.APIConsumerRoutes{offers, establishments},
	})
}

// Run serves HTTP and runs the event crawler and the assessment cron until
// ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	scheduler, err := assessment.NewScheduler(a.Config.Outbox.AssessmentCron, a.Assessments, a.Logger)
	if err != nil {
		return err
	}
	srv := httpserver.New(a.Config.Server.Addr, a.Router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(ctx, srv, a.Config.Server.ShutdownTimeout, a.Logger)
	})
	g.Go(func() error {
		return a.Crawler.Start(ctx)
	})
	g.Go(func() error {
		return scheduler.Start(ctx)
	})
	return g.Wait()
}

// Close releases connections in reverse opening order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

type noEmailLog struct{}

func (noEmailLog) LastSent(context.Context) ([]notificationmodels.EmailSent, error) {
	return []notificationmodels.EmailSent{}, nil
}
