// Package config provides configuration management and environment variable handling for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ProductionConfig holds all configuration for the application
type ProductionConfig struct {
	Database  DatabaseConfig  `json:"database"`
	Server    ServerConfig    `json:"server"`
	Email     EmailConfig     `json:"email"`
	GeoIP     GeoIPConfig     `json:"geoip"`
	Cache     CacheConfig     `json:"cache"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Metrics   MetricsConfig   `json:"metrics"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BodyLimit       int           `json:"body_limit"`
	AllowedOrigins  []string      `json:"allowed_origins"`
	GlobalRateLimit int           `json:"global_rate_limit"` // requests per minute
}

type EmailConfig struct {
	Provider            string        `json:"provider"` // mock or resend
	ResendAPIKey        string        `json:"resend_api_key"`
	FromEmail           string        `json:"from_email"`
	AppName             string        `json:"app_name"`
	FrontendURL         string        `json:"frontend_url"`
	SendWelcomeEmails   bool          `json:"send_welcome_emails"`
	SendAnalyticsEmails bool          `json:"send_analytics_emails"`
	SendTimeout         time.Duration `json:"send_timeout"`
}

type GeoIPConfig struct {
	Enabled       bool          `json:"enabled"`
	Endpoint      string        `json:"endpoint"`
	LookupTimeout time.Duration `json:"lookup_timeout"`
}

type CacheConfig struct {
	Enabled      bool          `json:"enabled"`
	RedisURL     string        `json:"redis_url"`
	AnalyticsTTL time.Duration `json:"analytics_ttl"`
}

type SchedulerConfig struct {
	Enabled  bool          `json:"enabled"`
	Interval time.Duration `json:"interval"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoadProductionConfig loads configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "biotap"),
			User:            getEnv("DB_USER", "biotap"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 1*1024*1024),
			AllowedOrigins:  getEnvSlice("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			GlobalRateLimit: getEnvInt("SERVER_GLOBAL_RATE_LIMIT", 60),
		},
		Email: EmailConfig{
			Provider:            getEnv("EMAIL_PROVIDER", "mock"),
			ResendAPIKey:        getEnv("EMAIL_RESEND_API_KEY", ""),
			FromEmail:           getEnv("EMAIL_FROM", "onboarding@resend.dev"),
			AppName:             getEnv("APP_NAME", "BioTap"),
			FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
			SendWelcomeEmails:   getEnvBool("EMAIL_SEND_WELCOME", true),
			SendAnalyticsEmails: getEnvBool("EMAIL_SEND_ANALYTICS", true),
			SendTimeout:         getEnvDuration("EMAIL_SEND_TIMEOUT", 10*time.Second),
		},
		GeoIP: GeoIPConfig{
			Enabled:       getEnvBool("GEOIP_ENABLED", false),
			Endpoint:      getEnv("GEOIP_ENDPOINT", ""),
			LookupTimeout: getEnvDuration("GEOIP_LOOKUP_TIMEOUT", 2*time.Second),
		},
		Cache: CacheConfig{
			Enabled:      getEnvBool("CACHE_ENABLED", false),
			RedisURL:     getEnv("CACHE_REDIS_URL", "redis://localhost:6379/0"),
			AnalyticsTTL: getEnvDuration("CACHE_ANALYTICS_TTL", 5*time.Minute),
		},
		Scheduler: SchedulerConfig{
			Enabled:  getEnvBool("SCHEDULER_ENABLED", true),
			Interval: getEnvDuration("SCHEDULER_INTERVAL", time.Hour),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the application cannot start with
func (c *ProductionConfig) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Email.Provider {
	case "mock":
	case "resend":
		if c.Email.ResendAPIKey == "" {
			return fmt.Errorf("resend API key is required for the resend email provider")
		}
	default:
		return fmt.Errorf("unknown email provider: %s", c.Email.Provider)
	}
	if c.GeoIP.Enabled && c.GeoIP.Endpoint == "" {
		return fmt.Errorf("geoip endpoint is required when geoip is enabled")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
