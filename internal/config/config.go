package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds process configuration loaded from the environment.
type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	HTTPListenAddr string `env:"HTTP_LISTEN_ADDR" envDefault:":8080"`
	PublicBasePath string `env:"PUBLIC_BASE_PATH"`
	// PublicBaseURL is the externally reachable origin, used for links in
	// staff notifications.
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	// DatabaseURL selects the backend: postgres:// and postgresql:// URLs use
	// Postgres, anything else is treated as a SQLite path.
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"file:data/site.db"`
	DatabaseSchema string `env:"DATABASE_SCHEMA"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisTLS      bool          `env:"REDIS_TLS" envDefault:"false"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"quartz_site"`

	SessionSecret string `env:"SESSION_SECRET"`
	SessionSecure bool   `env:"SESSION_SECURE" envDefault:"false"`

	AdminEmails            []string `env:"ADMIN_EMAILS" envSeparator:","`
	AdminBootstrapEmail    string   `env:"ADMIN_BOOTSTRAP_EMAIL"`
	AdminBootstrapPassword string   `env:"ADMIN_BOOTSTRAP_PASSWORD"`

	WhatsAppNumber        string `env:"WHATSAPP_NUMBER" envDefault:"+918639132193"`
	WhatsAppNotifyEnabled bool   `env:"WHATSAPP_NOTIFY_ENABLED" envDefault:"false"`
	WhatsAppNotifyTo      string `env:"WHATSAPP_NOTIFY_TO"`
	WhatsAppStorePath     string `env:"WHATSAPP_STORE_PATH" envDefault:"data/whatsapp.db"`
	WhatsAppLogLevel      string `env:"WHATSAPP_LOG_LEVEL" envDefault:"WARN"`

	UploadMaxBytes int64 `env:"UPLOAD_MAX_BYTES" envDefault:"2097152"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalise()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// SecureCookies reports whether session and CSRF cookies need the Secure
// flag. Production always sets it.
func (c Config) SecureCookies() bool {
	return c.SessionSecure || c.IsProduction()
}

func (c *Config) normalise() {
	emails := make([]string, 0, len(c.AdminEmails))
	for _, email := range c.AdminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			emails = append(emails, email)
		}
	}
	c.AdminEmails = emails
	c.AdminBootstrapEmail = strings.ToLower(strings.TrimSpace(c.AdminBootstrapEmail))
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
}

func (c Config) validate() error {
	if len(c.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters")
	}
	if (c.AdminBootstrapEmail == "") != (c.AdminBootstrapPassword == "") {
		return errors.New("ADMIN_BOOTSTRAP_EMAIL and ADMIN_BOOTSTRAP_PASSWORD must be set together")
	}
	if c.WhatsAppNotifyEnabled && strings.TrimSpace(c.WhatsAppNotifyTo) == "" {
		return errors.New("WHATSAPP_NOTIFY_TO is required when WHATSAPP_NOTIFY_ENABLED is set")
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}
