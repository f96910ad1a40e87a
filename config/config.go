package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Session  SessionConfig
	Admin    AdminConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string        `env:"APP_PORT" envDefault:"8080"`
	Env             string        `env:"APP_ENV" envDefault:"development"`
	ReadTimeout     time.Duration `env:"APP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"APP_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

type DatabaseConfig struct {
	URL          string        `env:"DATABASE_URL"`
	Host         string        `env:"DB_HOST" envDefault:"localhost"`
	Port         string        `env:"DB_PORT" envDefault:"5432"`
	User         string        `env:"DB_USER" envDefault:"postgres"`
	Password     string        `env:"DB_PASSWORD"`
	Name         string        `env:"DB_NAME" envDefault:"reviewdesk"`
	SSLMode      string        `env:"DB_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET" envDefault:"default_secret_key"`
	Expiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
}

// SessionConfig holds the key used to sign flash message cookies.
type SessionConfig struct {
	FlashKey string `env:"SESSION_FLASH_KEY" envDefault:"default_flash_key"`
}

type AdminConfig struct {
	Seed     bool   `env:"ADMIN_SEED" envDefault:"true"`
	Email    string `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`
	Username string `env:"ADMIN_USERNAME" envDefault:"admin"`
	Password string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads envFile when it exists and then parses the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("config: load %s: %w", envFile, err)
			}
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: invalid LOG_FORMAT %q", c.Log.Format)
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("config: JWT_EXPIRATION must be positive")
	}
	if c.IsProduction() && c.JWT.Secret == "default_secret_key" {
		return fmt.Errorf("config: JWT_SECRET must be set in production")
	}
	if c.IsProduction() && c.Session.FlashKey == "default_flash_key" {
		return fmt.Errorf("config: SESSION_FLASH_KEY must be set in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}
