package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mario1918/testCaseGenie-NG/core/db"
)

type Config struct {
	OTel        OTelConfig
	LLM         LLMConfig
	Redis       RedisConfig
	Tracker     TrackerConfig
	GitLab      GitLabConfig
	HTTP        HTTPConfig
	Env         string
	Port        string
	RelayURL    string
	CORSOrigins []string
	DB          db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type LLMConfig struct {
	Provider  string // "openai" or "anthropic"
	APIKey    string
	BaseURL   string // Optional: any OpenAI-compatible endpoint (Gemini included)
	Model     string
	MaxTokens int
}

type RedisConfig struct {
	URL       string
	KeyPrefix string
}

// TrackerConfig points the workbench at the issue tracker.
// Provider "jira" talks to the tracker proxy; "gitlab" talks to GitLab directly.
type TrackerConfig struct {
	Provider         string
	ProxyURL         string
	ProjectKey       string
	BoardID          int
	DefaultComponent string
	PageSize         int
}

type GitLabConfig struct {
	URL     string
	Token   string
	Project string
}

type HTTPConfig struct {
	MaxRetries int
	Timeout    time.Duration
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the relay
//   - .env.cli for the casegen shell
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("RELAY_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:         getEnv("RELAY_ENV", "development"),
		Port:        getEnv("PORT", "5000"),
		RelayURL:    getEnv("RELAY_URL", "http://localhost:5000"),
		CORSOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "testgenie-relay"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		LLM: LLMConfig{
			Provider:  getEnv("LLM_PROVIDER", "openai"),
			APIKey:    getEnv("LLM_API_KEY", ""),
			BaseURL:   getEnv("LLM_BASE_URL", ""),
			Model:     getEnv("LLM_MODEL", "gpt-4o-mini"),
			MaxTokens: getEnvInt("LLM_MAX_TOKENS", 8192),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "testgenie"),
		},
		Tracker: TrackerConfig{
			Provider:         getEnv("TRACKER_PROVIDER", "jira"),
			ProxyURL:         strings.TrimSuffix(getEnv("TRACKER_PROXY_URL", "http://localhost:8000/api"), "/"),
			ProjectKey:       getEnv("TRACKER_PROJECT_KEY", "SE2"),
			BoardID:          getEnvInt("TRACKER_BOARD_ID", 942),
			DefaultComponent: getEnv("TRACKER_DEFAULT_COMPONENT", "Supply Chain"),
			PageSize:         getEnvInt("TRACKER_PAGE_SIZE", 50),
		},
		GitLab: GitLabConfig{
			URL:     getEnv("GITLAB_URL", ""),
			Token:   getEnv("GITLAB_TOKEN", ""),
			Project: getEnv("GITLAB_PROJECT", ""),
		},
		HTTP: HTTPConfig{
			MaxRetries: getEnvInt("HTTP_MAX_RETRIES", 0),
			Timeout:    getEnvDuration("HTTP_TIMEOUT", 60*time.Second),
		},
	}

	if cfg.Tracker.PageSize <= 0 {
		return Config{}, fmt.Errorf("TRACKER_PAGE_SIZE must be positive")
	}

	switch serviceType {
	case ServiceTypeServer:
		if !cfg.LLM.Enabled() {
			return Config{}, fmt.Errorf("LLM_API_KEY is required and LLM_PROVIDER must be openai or anthropic")
		}
	case ServiceTypeCLI:
		if cfg.Tracker.Provider == "gitlab" && !cfg.GitLab.Enabled() {
			return Config{}, fmt.Errorf("GITLAB_TOKEN and GITLAB_PROJECT are required when TRACKER_PROVIDER=gitlab")
		}
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && (c.Provider == "openai" || c.Provider == "anthropic")
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func (c GitLabConfig) Enabled() bool {
	return c.Token != "" && c.Project != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
