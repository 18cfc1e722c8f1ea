package main

import (
	"os"
	"strings"
)

// config is read once at startup from the environment (after godotenv has
// loaded .env). Empty optional values disable the feature that needs them.
type config struct {
	DBURL       string
	Port        string
	LocalDBPath string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	StripeSecretKey     string
	StripeWebhookSecret string
	// StripePrices maps a subscription tier (monthly, annual, student) to its price id.
	StripePrices map[string]string

	AppOrigin   string
	TTSEnabled  bool
	CORSOrigins []string
}

func loadConfig() config {
	return config{
		DBURL:       os.Getenv("DB_URL"),
		Port:        envOr("PORT", "3000"),
		LocalDBPath: envOr("LOCAL_DB_PATH", "calgemini_local.db"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: strings.TrimSuffix(envOr("OPENAI_BASE_URL", "https://api.openai.com"), "/"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePrices: map[string]string{
			"monthly": os.Getenv("STRIPE_PRICE_MONTHLY"),
			"annual":  os.Getenv("STRIPE_PRICE_ANNUAL"),
			"student": os.Getenv("STRIPE_PRICE_STUDENT"),
		},

		AppOrigin:   envOr("APP_ORIGIN", "http://localhost:5173"),
		TTSEnabled:  os.Getenv("TTS_ENABLED") == "true",
		CORSOrigins: splitList(envOr("CORS_ORIGINS", "http://localhost:5173")),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma-separated env value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
