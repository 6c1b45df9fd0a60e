package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("REPOSITORIES", "")
	t.Setenv("EVENT_CRAWLER_PERIOD", "")
	t.Setenv("QUARANTINED_TOPICS", "")
	t.Setenv("DISABLE_RATE_LIMIT", "")
	t.Setenv("RATE_LIMIT_REQUESTS", "")
	t.Setenv("RATE_LIMIT_WINDOW", "")
	t.Setenv("EMAIL_BREAKER_FAILURES", "")
	t.Setenv("TRUSTED_PROXIES", "")
	t.Setenv("ADDRESS_API_GATEWAY", "")

	cfg := FromEnv()

	assert.Equal(t, RepositoriesInMemory, cfg.Repositories)
	assert.Equal(t, EmailGatewayInMemory, cfg.Email.Gateway)
	assert.Equal(t, 10*time.Second, cfg.Outbox.CrawlerPeriod)
	assert.Equal(t, 3, cfg.Outbox.MaxPublications)
	assert.Empty(t, cfg.Outbox.QuarantinedTopics)
	assert.Equal(t, RateLimit{Requests: 20, Window: time.Minute}, cfg.RateLimit)
	assert.Equal(t, 5, cfg.Email.BreakerFailures)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.Equal(t, AddressGatewayInMemory, cfg.AddressAPI.Gateway)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("REPOSITORIES", "PG")
	t.Setenv("EVENT_CRAWLER_PERIOD", "2s")
	t.Setenv("QUARANTINED_TOPICS", "NewAgencyAdded, ,AgencyActivated")
	t.Setenv("SKIP_EMAIL_ALLOW_LIST", "true")
	t.Setenv("FRONT_BASE_URL", "https://immersion.example.org/")
	t.Setenv("DISABLE_RATE_LIMIT", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")
	t.Setenv("API_CONSUMERS", "cci:secret-1,cma:secret-2")

	cfg := FromEnv()

	assert.Equal(t, RepositoriesPG, cfg.Repositories)
	assert.Equal(t, 2*time.Second, cfg.Outbox.CrawlerPeriod)
	assert.Equal(t, []string{"NewAgencyAdded", "AgencyActivated"}, cfg.Outbox.QuarantinedTopics)
	assert.True(t, cfg.Email.SkipAllowList)
	assert.Equal(t, "https://immersion.example.org", cfg.Server.FrontBaseURL)
	assert.True(t, cfg.RateLimit.Disabled)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.Server.TrustedProxies)
	assert.Equal(t, []string{"cci:secret-1", "cma:secret-2"}, cfg.Auth.APIConsumers)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "abc")
	assert.Equal(t, 7, getEnvInt("CFG_TEST_INT", 7))

	t.Setenv("CFG_TEST_BOOL", "not-bool")
	assert.True(t, getEnvBool("CFG_TEST_BOOL", true))

	t.Setenv("CFG_TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration("CFG_TEST_DURATION", time.Second))
}
