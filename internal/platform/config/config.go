package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "immersionfacile/pkg/platform/strings"
)

// Repositories selects the persistence adapters.
type Repositories string

const (
	RepositoriesInMemory Repositories = "IN_MEMORY"
	RepositoriesPG       Repositories = "PG"
)

// AddressGateway selects the geocoding adapter.
type AddressGateway string

const (
	AddressGatewayInMemory AddressGateway = "IN_MEMORY"
	AddressGatewayHTTP     AddressGateway = "HTTP"
)

// EmailGateway selects the email adapter.
type EmailGateway string

const (
	EmailGatewayInMemory EmailGateway = "IN_MEMORY"
	EmailGatewayHTTP     EmailGateway = "HTTP"
)

// Config is the full application configuration, loaded once at startup.
type Config struct {
	Server       Server
	Repositories Repositories
	Database     Database
	Redis        RedisConfig
	Kafka        Kafka
	Email        Email
	Auth         Auth
	Outbox       Outbox
	Storage      Storage
	Alerting     Alerting
	RateLimit    RateLimit
	AddressAPI   AddressAPI
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	FrontBaseURL    string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	// TrustedProxies lists the proxy IPs or CIDRs allowed to set
	// X-Forwarded-For.
	TrustedProxies []string
}

// Database holds PostgreSQL connection settings.
type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the client backing the crawler lease.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LeaseTTL     time.Duration
}

// Kafka configures the partner broadcast producer.
type Kafka struct {
	Brokers        []string
	PartnerTopic   string
	TopicPartition int32
}

// Email configures the email gateway and recipient filter.
type Email struct {
	Gateway         EmailGateway
	APIURL          string
	APIKey          string
	Sender          string
	SkipAllowList   bool
	AllowList       []string
	RatePerSecond   float64
	KeptEmailsCount int
	BreakerFailures int
	BreakerCooldown time.Duration
}

// Auth configures magic links and back-office access.
type Auth struct {
	JWTSigningKey     string
	MagicLinkTTL      time.Duration
	AdminUser         string
	AdminPasswordHash string
	AdminTokenTTL     time.Duration
	// APIConsumers holds "name:key" pairs for the /v1 partner API.
	APIConsumers []string
}

// Outbox configures the event crawler.
type Outbox struct {
	CrawlerPeriod     time.Duration
	RetryPeriod       time.Duration
	QuarantinedTopics []string
	MaxPublications   int
	AssessmentCron    string
}

// Storage configures agency logo uploads.
type Storage struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// RateLimit bounds public write requests per client IP and path.
type RateLimit struct {
	Disabled bool
	Requests int
	Window   time.Duration
}

// AddressAPI configures the geocoder used to position establishments.
type AddressAPI struct {
	Gateway         AddressGateway
	URL             string
	BreakerFailures int
	BreakerCooldown time.Duration
}

// Alerting configures the Discord webhook.
type Alerting struct {
	DiscordWebhookURL string
}

// FromEnv builds the Config from environment variables so main stays lean.
// A .env file is loaded by the commands through godotenv/autoload.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            getEnv("SERVER_ADDR", ":1234"),
			FrontBaseURL:    strings.TrimRight(getEnv("FRONT_BASE_URL", "http://localhost:3000"), "/"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			LogFormat:       getEnv("LOG_FORMAT", "json"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			TrustedProxies:  getEnvList("TRUSTED_PROXIES"),
		},
		Repositories: Repositories(getEnv("REPOSITORIES", string(RepositoriesInMemory))),
		Database: Database{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			LeaseTTL:     getEnvDuration("CRAWLER_LEASE_TTL", 30*time.Second),
		},
		Kafka: Kafka{
			Brokers:        getEnvList("KAFKA_BROKERS"),
			PartnerTopic:   getEnv("KAFKA_PARTNER_TOPIC", "immersion-conventions"),
			TopicPartition: int32(getEnvInt("KAFKA_PARTNER_TOPIC_PARTITIONS", 1)),
		},
		Email: Email{
			Gateway:         EmailGateway(getEnv("EMAIL_GATEWAY", string(EmailGatewayInMemory))),
			APIURL:          getEnv("EMAIL_API_URL", ""),
			APIKey:          getEnv("EMAIL_API_KEY", ""),
			Sender:          getEnv("EMAIL_SENDER", "ne-pas-ecrire-a-cet-email@immersion-facile.beta.gouv.fr"),
			SkipAllowList:   getEnvBool("SKIP_EMAIL_ALLOW_LIST", false),
			AllowList:       getEnvList("EMAIL_ALLOW_LIST"),
			RatePerSecond:   getEnvFloat("EMAIL_RATE_PER_SECOND", 5),
			KeptEmailsCount: getEnvInt("IN_MEMORY_KEPT_EMAILS", 15),
			BreakerFailures: getEnvInt("EMAIL_BREAKER_FAILURES", 5),
			BreakerCooldown: getEnvDuration("EMAIL_BREAKER_COOLDOWN", 30*time.Second),
		},
		Auth: Auth{
			// Use a default for development; production overrides it.
			JWTSigningKey:     getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			MagicLinkTTL:      getEnvDuration("MAGIC_LINK_TTL", 30*24*time.Hour),
			AdminUser:         getEnv("ADMIN_USER", "admin"),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			AdminTokenTTL:     getEnvDuration("ADMIN_TOKEN_TTL", 8*time.Hour),
			APIConsumers:      getEnvList("API_CONSUMERS"),
		},
		Outbox: Outbox{
			CrawlerPeriod:     getEnvDuration("EVENT_CRAWLER_PERIOD", 10*time.Second),
			RetryPeriod:       getEnvDuration("EVENT_RETRY_PERIOD", 60*time.Second),
			QuarantinedTopics: getEnvList("QUARANTINED_TOPICS"),
			MaxPublications:   getEnvInt("MAX_PUBLICATIONS_BEFORE_QUARANTINE", 3),
			AssessmentCron:    getEnv("ASSESSMENT_EMAILS_CRON", "0 8 * * *"),
		},
		Storage: Storage{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", "agency-logos"),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PublicBaseURL: strings.TrimRight(getEnv("UPLOADED_FILES_BASE_URL", "http://localhost:1234/files"), "/"),
		},
		Alerting: Alerting{
			DiscordWebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),
		},
		RateLimit: RateLimit{
			Disabled: getEnvBool("DISABLE_RATE_LIMIT", false),
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 20),
			Window:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		AddressAPI: AddressAPI{
			Gateway:         AddressGateway(getEnv("ADDRESS_API_GATEWAY", string(AddressGatewayInMemory))),
			URL:             strings.TrimRight(getEnv("ADDRESS_API_URL", "https://api-adresse.data.gouv.fr"), "/"),
			BreakerFailures: getEnvInt("ADDRESS_API_BREAKER_FAILURES", 5),
			BreakerCooldown: getEnvDuration("ADDRESS_API_BREAKER_COOLDOWN", 30*time.Second),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	return platformstrings.DedupeAndTrim(strings.Split(raw, ","))
}
