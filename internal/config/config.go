// Package config загружает конфигурацию сервиса из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"directory-sync-service/internal/atlassian"
)

// Config описывает конфигурацию HTTP-сервиса. Секреты живут только в памяти
// процесса и никогда не сохраняются на диск.
type Config struct {
	JiraBaseURL  string // адрес сайта, например https://acme.atlassian.net
	JiraEmail    string // почта владельца API-токена
	JiraAPIToken string // токен для Basic-авторизации

	OrgAPIKey  string // ключ Organization API (Bearer); пустой — API отключён
	OrgID      string // идентификатор организации; может быть разрешён позже
	OrgBaseURL string // переопределение для тестов (default: api.atlassian.com)
	UseOrgAPI  bool   // читать пользователей через Organization API

	ListenAddr         string   // адрес HTTP-листенера (default ":8080")
	LogLevel           string   // debug, info, warn, error (default "info")
	CORSAllowedOrigins []string // источники для CORS; пусто — CORS выключен
}

// LoadFromEnv загружает конфигурацию из переменных окружения
// и подставляет значения по умолчанию.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		JiraBaseURL:  os.Getenv("JIRA_BASE_URL"),
		JiraEmail:    os.Getenv("JIRA_EMAIL"),
		JiraAPIToken: os.Getenv("JIRA_API_TOKEN"),
		OrgAPIKey:    os.Getenv("ORG_API_KEY"),
		OrgID:        os.Getenv("ORG_ID"),
		OrgBaseURL:   os.Getenv("ORG_BASE_URL"),
		ListenAddr:   os.Getenv("LISTEN_ADDR"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		UseOrgAPI:    parseBoolEnv("USE_ORG_API"),
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	if cfg.OrgBaseURL == "" {
		cfg.OrgBaseURL = atlassian.DefaultOrgBaseURL
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность конфигурации.
func (c *Config) Validate() error {
	if c.JiraBaseURL == "" {
		return fmt.Errorf("JIRA_BASE_URL must be set")
	}
	if !strings.HasPrefix(c.JiraBaseURL, "http://") && !strings.HasPrefix(c.JiraBaseURL, "https://") {
		return fmt.Errorf("JIRA_BASE_URL must start with http:// or https://")
	}
	if c.JiraEmail == "" || c.JiraAPIToken == "" {
		return fmt.Errorf("JIRA_EMAIL and JIRA_API_TOKEN must be set")
	}
	if c.UseOrgAPI && c.OrgAPIKey == "" {
		return fmt.Errorf("ORG_API_KEY must be set when USE_ORG_API=true")
	}
	return nil
}

// SlogLevel переводит строковый уровень в slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBoolEnv(key string) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
