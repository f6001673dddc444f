package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PROVIDER_ORDER", "")
	t.Setenv("RETRY_MAX_ATTEMPTS", "")
	t.Setenv("CACHE_CAPACITY", "")

	cfg := Load()
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default api port 8080, got %q", cfg.APIPort)
	}
	if cfg.ProviderOrder != "anthropic,openai" {
		t.Fatalf("expected default provider order, got %q", cfg.ProviderOrder)
	}
	if cfg.AnthropicModel != "claude-3-haiku-20240307" {
		t.Fatalf("expected default anthropic model, got %q", cfg.AnthropicModel)
	}
	if cfg.ProviderMaxTokens != 500 {
		t.Fatalf("expected default max tokens 500, got %d", cfg.ProviderMaxTokens)
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("expected default retry attempts 3, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.CacheCapacity != 1024 {
		t.Fatalf("expected default cache capacity 1024, got %d", cfg.CacheCapacity)
	}
	if cfg.NATSSubject != "datasets.import" {
		t.Fatalf("expected default nats subject, got %q", cfg.NATSSubject)
	}
}

func TestLoadAppliesYAMLFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "api_port: \"9999\"\ncache_capacity: 16\nprovider_order: \"openai\"\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("API_PORT", "")
	t.Setenv("CACHE_CAPACITY", "")
	t.Setenv("PROVIDER_ORDER", "anthropic")

	cfg := Load()
	if cfg.APIPort != "9999" {
		t.Fatalf("expected yaml api port 9999, got %q", cfg.APIPort)
	}
	if cfg.CacheCapacity != 16 {
		t.Fatalf("expected yaml cache capacity 16, got %d", cfg.CacheCapacity)
	}
	if cfg.ProviderOrder != "anthropic" {
		t.Fatalf("expected env to win over yaml, got %q", cfg.ProviderOrder)
	}
}

func TestLoadIgnoresMalformedIntegerOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("RETRY_MAX_ATTEMPTS", "not-a-number")

	cfg := Load()
	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("expected fallback retry attempts 3, got %d", cfg.RetryMaxAttempts)
	}
}
