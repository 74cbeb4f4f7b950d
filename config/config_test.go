package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	value string
	err   error
}

func (f fakeSecrets) GetSecret(_ context.Context, _ string) (string, error) {
	return f.value, f.err
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DEPOSIT_AMOUNT", "")
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("GHL_API_KEY", "")
	t.Setenv("GHL_LOCATION_ID", "")
	t.Setenv("WEBHOOK_DEDUP_ENABLED", "")
	t.Setenv("WEBHOOK_DEDUP_TTL", "")
	t.Setenv("RELAY_MAX_ATTEMPTS", "")
	t.Setenv("CHECKOUT_CURRENCY", "")
	t.Setenv("SITE_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, int64(50000), cfg.DepositAmount)
	assert.Equal(t, "gbp", cfg.CheckoutCurrency)
	assert.Equal(t, "https://landco.co.uk", cfg.SiteURL)
	assert.Equal(t, 72*time.Hour, cfg.WebhookDedupTTL)
	assert.Equal(t, 5, cfg.RelayMaxAttempts)
	assert.False(t, cfg.WebhookDedupEnabled)
	assert.False(t, cfg.StripeConfigured())
	assert.False(t, cfg.CRMConfigured())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DEPOSIT_AMOUNT", "25000")
	t.Setenv("CHECKOUT_CURRENCY", "GBP")
	t.Setenv("SITE_URL", "https://example.test/")
	t.Setenv("WEBHOOK_DEDUP_ENABLED", "true")
	t.Setenv("WEBHOOK_DEDUP_TTL", "1h")
	t.Setenv("GHL_API_KEY", "key")
	t.Setenv("GHL_LOCATION_ID", "loc")
	t.Setenv("ALLOWED_ORIGINS", "https://a.test/, https://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, int64(25000), cfg.DepositAmount)
	assert.Equal(t, "gbp", cfg.CheckoutCurrency)
	assert.Equal(t, "https://example.test", cfg.SiteURL)
	assert.True(t, cfg.WebhookDedupEnabled)
	assert.Equal(t, time.Hour, cfg.WebhookDedupTTL)
	assert.True(t, cfg.CRMConfigured())
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("DEPOSIT_AMOUNT", "abc")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("DEPOSIT_AMOUNT", "-5")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("DEPOSIT_AMOUNT", "100")
	t.Setenv("RELAY_MAX_ATTEMPTS", "0")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{StripeSecretKey: "env-key", GHLAPIKey: "env-ghl"}

	err := cfg.ApplySecrets(context.Background(), fakeSecrets{
		value: `{"STRIPE_SECRET_KEY":"sm-key","GHL_API_KEY":"","FORMSPREE_LEAD_FORM_ID":"xlead","FORMSPREE_LAND_FORM_ID":"xland"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "sm-key", cfg.StripeSecretKey)
	assert.Equal(t, "xlead", cfg.FormspreeLeadFormID)
	assert.Equal(t, "xland", cfg.FormspreeLandFormID)
	assert.Equal(t, "env-ghl", cfg.GHLAPIKey)

	assert.Error(t, cfg.ApplySecrets(context.Background(), fakeSecrets{err: errors.New("denied")}))
	assert.Error(t, cfg.ApplySecrets(context.Background(), fakeSecrets{value: "not-json"}))
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{
		PostgresUser: "u", PostgresPassword: "p", PostgresDB: "d",
		PostgresHost: "h", PostgresPort: "5432", PostgresSSLMode: "disable", PostgresTimeZone: "Europe/London",
	}
	assert.True(t, cfg.PostgresConfigured())
	assert.Equal(t, "host=h user=u password=p dbname=d port=5432 sslmode=disable TimeZone=Europe/London", cfg.PostgresDSN())
}
