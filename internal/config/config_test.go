package config

import (
	"strings"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected default driver sqlite, got %q", cfg.DBDriver)
	}
	if cfg.AzureDeployment != "gpt-35-turbo" {
		t.Fatalf("expected default deployment gpt-35-turbo, got %q", cfg.AzureDeployment)
	}
	if cfg.AzureAPIVersion != "2024-12-01-preview" {
		t.Fatalf("expected default api version, got %q", cfg.AzureAPIVersion)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("PLANORA_TOKEN_EXPIRY_HOURS", "48")

	cfg := Load()
	if cfg.Port != "9191" {
		t.Fatalf("expected PORT override, got %q", cfg.Port)
	}
	if cfg.AzureOpenAIEndpoint != "https://example.openai.azure.com" {
		t.Fatalf("expected endpoint override, got %q", cfg.AzureOpenAIEndpoint)
	}
	if cfg.TokenExpiryHours != 48 {
		t.Fatalf("expected token expiry 48, got %d", cfg.TokenExpiryHours)
	}
}

func TestValidateNamesMissingKeysWithoutValues(t *testing.T) {
	cfg := &Config{AzureOpenAIKey: "secret-value"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing config")
	}
	msg := err.Error()
	if !strings.Contains(msg, "AZURE_OPENAI_ENDPOINT") || !strings.Contains(msg, "PLANORA_ENCRYPTION_KEY") {
		t.Fatalf("expected missing key names in error, got %q", msg)
	}
	if strings.Contains(msg, "secret-value") {
		t.Fatalf("config values must never appear in errors: %q", msg)
	}
}

func TestValidatePassesWithRequiredKeys(t *testing.T) {
	cfg := &Config{
		AzureOpenAIEndpoint: "https://example.openai.azure.com",
		AzureOpenAIKey:      "key",
		EncryptionKey:       "0123456789abcdef0123456789abcdef",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
