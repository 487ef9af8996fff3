package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Server
	Port string

	// Database
	DBDriver string // "sqlite" | "postgres"
	DBPath   string // SQLite path
	DBUrl    string // Postgres DSN

	// Auth
	TokenExpiryHours int

	// Azure OpenAI
	AzureOpenAIEndpoint string
	AzureOpenAIKey      string
	AzureDeployment     string
	AzureAPIVersion     string

	// Google OAuth (token refresh + code exchange)
	GoogleClientID     string
	GoogleClientSecret string

	// Credential-at-rest encryption
	EncryptionKey string

	// Access-token cache; empty disables caching
	RedisAddr string

	// Endpoint overrides for the Google API clients. Empty means the
	// library defaults; tests point these at local servers.
	CalendarEndpoint string
	GmailEndpoint    string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		DBDriver:            getEnv("PLANORA_DB_DRIVER", "sqlite"),
		DBPath:              getEnv("PLANORA_DB_PATH", "./data/gateway.db"),
		DBUrl:               getEnv("PLANORA_DATABASE_URL", ""),
		TokenExpiryHours:    getEnvInt("PLANORA_TOKEN_EXPIRY_HOURS", 720),
		AzureOpenAIEndpoint: getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIKey:      getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureDeployment:     getEnv("AZURE_OPENAI_CHAT_DEPLOYMENT_NAME", "gpt-35-turbo"),
		AzureAPIVersion:     getEnv("OPENAI_API_VERSION", "2024-12-01-preview"),
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		EncryptionKey:       getEnv("PLANORA_ENCRYPTION_KEY", ""),
		RedisAddr:           getEnv("PLANORA_REDIS_ADDR", ""),
		CalendarEndpoint:    getEnv("PLANORA_CALENDAR_ENDPOINT", ""),
		GmailEndpoint:       getEnv("PLANORA_GMAIL_ENDPOINT", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports missing required configuration by variable name only;
// values are never included.
func (c *Config) Validate() error {
	var missing []string
	if c.AzureOpenAIEndpoint == "" {
		missing = append(missing, "AZURE_OPENAI_ENDPOINT")
	}
	if c.AzureOpenAIKey == "" {
		missing = append(missing, "AZURE_OPENAI_API_KEY")
	}
	if c.EncryptionKey == "" {
		missing = append(missing, "PLANORA_ENCRYPTION_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
