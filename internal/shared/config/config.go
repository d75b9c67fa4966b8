package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration resolved once at startup.
// Capability selection (remote storage, AI, billing) is decided here,
// not re-checked per request.
type Config struct {
	Port            string
	Env             string
	DatabaseURL     string
	CORSAllowOrigin []string

	// Object storage. S3 is used when bucket credentials are configured,
	// local disk otherwise.
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string

	// AI service. Empty APIKey disables extraction/summarization calls.
	OpenAIAPIKey string
	OpenAIModel  string

	// Optional external PDF processor microservice.
	PDFProcessorURL string

	// Auth0 login flow. Empty values fall back to the dev identity.
	Auth0Domain       string
	Auth0ClientID     string
	Auth0ClientSecret string
	Auth0RedirectURL  string
	UIRedirectURL     string

	// Stripe billing. Empty secret key means subscription gating is bypassed.
	StripeSecretKey     string
	StripePriceID       string
	StripeWebhookSecret string
	AppURL              string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	appURL := getEnv("APP_URL", "http://localhost:5173")

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		DatabaseURL:     dbURL,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		LocalStoreDir: getEnv("LOCAL_STORE_DIR", "./uploads"),
		AWSRegion:     getEnv("AWS_REGION", ""),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Prefix:      getEnv("S3_PREFIX", ""),

		OpenAIAPIKey: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4.1-mini"),

		PDFProcessorURL: strings.TrimSpace(os.Getenv("PDF_PROCESSOR_URL")),

		Auth0Domain:       strings.TrimSpace(os.Getenv("AUTH0_DOMAIN")),
		Auth0ClientID:     os.Getenv("AUTH0_CLIENT_ID"),
		Auth0ClientSecret: os.Getenv("AUTH0_CLIENT_SECRET"),
		Auth0RedirectURL:  os.Getenv("AUTH0_REDIRECT_URL"),
		UIRedirectURL:     getEnv("UI_REDIRECT_URL", appURL),

		StripeSecretKey:     strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		StripePriceID:       strings.TrimSpace(os.Getenv("STRIPE_PRICE_ID")),
		StripeWebhookSecret: strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET")),
		AppURL:              appURL,
	}

	// A configured bucket selects the remote backend; everything else is local.
	cfg.ObjectStoreType = "local"
	if cfg.S3Bucket != "" {
		cfg.ObjectStoreType = "s3"
	}

	return cfg
}

// AIEnabled reports whether the OpenAI-backed extraction/summarization is configured.
func (c Config) AIEnabled() bool {
	return c.OpenAIAPIKey != "" && c.OpenAIAPIKey != "sk-placeholder"
}

// BillingEnabled reports whether Stripe subscription gating is configured.
func (c Config) BillingEnabled() bool {
	return c.StripeSecretKey != "" && c.StripePriceID != ""
}

// AuthConfigured reports whether the Auth0 login flow is configured.
func (c Config) AuthConfigured() bool {
	return c.Auth0Domain != "" && c.Auth0ClientID != "" && c.Auth0ClientSecret != "" && c.Auth0RedirectURL != ""
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "development", "dev", "local":
		return "dev"
	default:
		return "dev"
	}
}
