package main

import (
	"slices"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"DB_URL", "PORT", "LOCAL_DB_PATH", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"OPENAI_MODEL", "STRIPE_SECRET_KEY", "APP_ORIGIN", "TTS_ENABLED", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := loadConfig()
	if cfg.Port != "3000" || cfg.LocalDBPath != "calgemini_local.db" {
		t.Errorf("port/local db = %q/%q", cfg.Port, cfg.LocalDBPath)
	}
	if cfg.OpenAIBaseURL != "https://api.openai.com" || cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("openai = %q/%q", cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}
	if cfg.TTSEnabled || cfg.DBURL != "" {
		t.Errorf("optional features enabled by default: tts=%v db=%q", cfg.TTSEnabled, cfg.DBURL)
	}
	if !slices.Equal(cfg.CORSOrigins, []string{"http://localhost:5173"}) {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/")
	t.Setenv("TTS_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "https://app.calgemini.io, ,http://localhost:5173")
	t.Setenv("STRIPE_PRICE_ANNUAL", "price_annual")

	cfg := loadConfig()
	if cfg.OpenAIBaseURL != "http://localhost:11434" {
		t.Errorf("base url = %q, want trailing slash trimmed", cfg.OpenAIBaseURL)
	}
	if !cfg.TTSEnabled {
		t.Error("TTS_ENABLED=true not honored")
	}
	if !slices.Equal(cfg.CORSOrigins, []string{"https://app.calgemini.io", "http://localhost:5173"}) {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.StripePrices["annual"] != "price_annual" {
		t.Errorf("prices = %v", cfg.StripePrices)
	}
}
