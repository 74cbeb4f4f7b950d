package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	aws_pkg "github.com/MilktreeAgency/landco/pkg/aws"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the landco service. Every credential is
// optional at load time: a missing key disables the dependent feature, and
// the handler for that feature reports it explicitly.
type Config struct {
	Env     string
	Port    string
	SiteURL string

	StripeSecretKey     string
	StripeWebhookSecret string
	DepositAmount       int64 // minor units (pence)
	CheckoutCurrency    string

	GHLAPIKey         string
	GHLLocationID     string
	GHLBaseURL        string
	GHLLeadWorkflowID string

	FormspreeLeadFormID string
	FormspreeLandFormID string

	GeminiAPIKey string
	GeminiModel  string

	RedisURL string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	WebhookDedupEnabled bool
	WebhookDedupTTL     time.Duration

	RelayQueueURL    string
	RelayMaxAttempts int

	PaymentSNSTopicARN string
	AllowedOrigins     []string

	AWSUseSecrets       bool
	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string
}

// LoadConfig reads configuration from a .env file (when present) and the
// process environment. It fails only on malformed values.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	depositAmount, err := strconv.ParseInt(getEnv("DEPOSIT_AMOUNT", "50000"), 10, 64)
	if err != nil || depositAmount <= 0 {
		return nil, fmt.Errorf("invalid DEPOSIT_AMOUNT %q", os.Getenv("DEPOSIT_AMOUNT"))
	}

	dedupTTL, err := time.ParseDuration(getEnv("WEBHOOK_DEDUP_TTL", "72h"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_DEDUP_TTL: %w", err)
	}

	maxAttempts, err := strconv.Atoi(getEnv("RELAY_MAX_ATTEMPTS", "5"))
	if err != nil || maxAttempts < 1 {
		return nil, fmt.Errorf("invalid RELAY_MAX_ATTEMPTS %q", os.Getenv("RELAY_MAX_ATTEMPTS"))
	}

	cfg := &Config{
		Env:     getEnv("ENV", "development"),
		Port:    getEnv("PORT", "8080"),
		SiteURL: strings.TrimSuffix(getEnv("SITE_URL", "https://landco.co.uk"), "/"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		DepositAmount:       depositAmount,
		CheckoutCurrency:    strings.ToLower(getEnv("CHECKOUT_CURRENCY", "gbp")),

		GHLAPIKey:         os.Getenv("GHL_API_KEY"),
		GHLLocationID:     os.Getenv("GHL_LOCATION_ID"),
		GHLBaseURL:        getEnv("GHL_BASE_URL", "https://services.leadconnectorhq.com"),
		GHLLeadWorkflowID: os.Getenv("GHL_LEAD_WORKFLOW_ID"),

		FormspreeLeadFormID: os.Getenv("FORMSPREE_LEAD_FORM_ID"),
		FormspreeLandFormID: os.Getenv("FORMSPREE_LAND_FORM_ID"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),

		RedisURL: os.Getenv("REDIS_URL"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Europe/London"),

		WebhookDedupEnabled: getBool("WEBHOOK_DEDUP_ENABLED"),
		WebhookDedupTTL:     dedupTTL,

		RelayQueueURL:    os.Getenv("RELAY_QUEUE_URL"),
		RelayMaxAttempts: maxAttempts,

		PaymentSNSTopicARN: os.Getenv("PAYMENT_SNS_TOPIC_ARN"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,https://landco.co.uk")),

		AWSUseSecrets:       getBool("AWS_USE_SECRETS"),
		CloudWatchEnabled:   getBool("CLOUDWATCH_ENABLED"),
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "Landco"),
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/landco/services"),
	}

	// Gemini keys were historically exposed as API_KEY.
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("API_KEY")
	}

	return cfg, nil
}

// ApplySecrets overrides API credentials with values from the
// "landco/API_KEYS" secret, a JSON object keyed by environment variable name.
// Keys absent from the secret keep their environment values.
func (c *Config) ApplySecrets(ctx context.Context, sm aws_pkg.SecretGetter) error {
	raw, err := sm.GetSecret(ctx, "landco/API_KEYS")
	if err != nil {
		return err
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return fmt.Errorf("decode landco/API_KEYS: %w", err)
	}

	override := func(dst *string, key string) {
		if v, ok := m[key]; ok && v != "" {
			*dst = v
		}
	}
	override(&c.StripeSecretKey, "STRIPE_SECRET_KEY")
	override(&c.StripeWebhookSecret, "STRIPE_WEBHOOK_SECRET")
	override(&c.GHLAPIKey, "GHL_API_KEY")
	override(&c.GHLLocationID, "GHL_LOCATION_ID")
	override(&c.GeminiAPIKey, "GEMINI_API_KEY")
	override(&c.FormspreeLeadFormID, "FORMSPREE_LEAD_FORM_ID")
	override(&c.FormspreeLandFormID, "FORMSPREE_LAND_FORM_ID")
	override(&c.PostgresUser, "POSTGRES_USER")
	override(&c.PostgresPassword, "POSTGRES_PASSWORD")
	return nil
}

func (c *Config) StripeConfigured() bool {
	return c.StripeSecretKey != ""
}

func (c *Config) CRMConfigured() bool {
	return c.GHLAPIKey != "" && c.GHLLocationID != ""
}

func (c *Config) PostgresConfigured() bool {
	return c.PostgresUser != "" && c.PostgresPassword != "" && c.PostgresDB != ""
}

// PostgresDSN builds a key=value DSN for gorm's postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone,
	)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(p), "/")); p != "" {
			out = append(out, p)
		}
	}
	return out
}
