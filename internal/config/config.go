// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Scrape runner names accepted by scraping.runner.
const (
	RunnerColly = "colly"
	RunnerExec  = "exec"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Scraping ScrapingConfig `mapstructure:"scraping"`
	DB       DBConfig       `mapstructure:"db"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                   int `mapstructure:"port"`
	RequestTimeoutSeconds  int `mapstructure:"request_timeout_seconds"`
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds"`
	// LoginRPS limits /add_user and login attempts per client IP; 0 disables it.
	LoginRPS   float64 `mapstructure:"login_rps"`
	LoginBurst int     `mapstructure:"login_burst"`
}

// AuthConfig holds the token signing and password hashing settings. They
// are read once at startup and never change afterwards.
type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	Algorithm       string `mapstructure:"algorithm"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
	BcryptCost      int    `mapstructure:"bcrypt_cost"`
}

// ScrapingConfig selects and tunes the scrape runner.
type ScrapingConfig struct {
	Runner                string   `mapstructure:"runner"`
	StartURL              string   `mapstructure:"start_url"`
	UserAgent             string   `mapstructure:"user_agent"`
	MaxPages              int      `mapstructure:"max_pages"`
	Parallelism           int      `mapstructure:"parallelism"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds"`
	DelayMillis           int      `mapstructure:"delay_ms"`
	RespectRobots         bool     `mapstructure:"respect_robots"`
	Command               string   `mapstructure:"command"`
	Args                  []string `mapstructure:"args"`
	SingleFlight          bool     `mapstructure:"single_flight"`
}

// DBConfig controls access to Postgres. An empty DSN selects in-memory stores.
type DBConfig struct {
	DSN        string `mapstructure:"dsn"`
	BooksTable string `mapstructure:"books_table"`
	UsersTable string `mapstructure:"users_table"`
	// PredictionsTable holds model outputs posted to /api/v1/ml/predictions.
	PredictionsTable string `mapstructure:"predictions_table"`
	MaxConns         int32  `mapstructure:"max_conns"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Every key needs a default, even an empty one, so AutomaticEnv can
// override it through Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 30)
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("server.login_rps", 1.0)
	v.SetDefault("server.login_burst", 10)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.algorithm", "HS256")
	v.SetDefault("auth.token_ttl_minutes", 30)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("scraping.runner", RunnerColly)
	v.SetDefault("scraping.start_url", "https://books.toscrape.com/")
	v.SetDefault("scraping.user_agent", "books-catalog-bot/0.1")
	v.SetDefault("scraping.max_pages", 0)
	v.SetDefault("scraping.parallelism", 4)
	v.SetDefault("scraping.request_timeout_seconds", 15)
	v.SetDefault("scraping.delay_ms", 0)
	v.SetDefault("scraping.respect_robots", true)
	v.SetDefault("scraping.command", "")
	v.SetDefault("scraping.args", []string{})
	v.SetDefault("scraping.single_flight", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.books_table", "books")
	v.SetDefault("db.users_table", "users")
	v.SetDefault("db.predictions_table", "ml_predictions")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("server.shutdown_timeout_seconds must be > 0")
	}
	if c.Server.LoginRPS < 0 {
		return fmt.Errorf("server.login_rps must be >= 0")
	}
	if c.Server.LoginRPS > 0 && c.Server.LoginBurst <= 0 {
		return fmt.Errorf("server.login_burst must be > 0 when server.login_rps is set")
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("auth.token_ttl_minutes must be > 0")
	}
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("auth.algorithm must be one of HS256, HS384, HS512, got %q", c.Auth.Algorithm)
	}
	switch c.Scraping.Runner {
	case RunnerColly:
		u, err := url.Parse(c.Scraping.StartURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("scraping.start_url must be an absolute http(s) URL")
		}
		if c.Scraping.Parallelism <= 0 {
			return fmt.Errorf("scraping.parallelism must be > 0")
		}
		if c.Scraping.MaxPages < 0 {
			return fmt.Errorf("scraping.max_pages must be >= 0")
		}
		if c.Scraping.DelayMillis < 0 {
			return fmt.Errorf("scraping.delay_ms must be >= 0")
		}
	case RunnerExec:
		if strings.TrimSpace(c.Scraping.Command) == "" {
			return fmt.Errorf("scraping.command must be set when scraping.runner is %q", RunnerExec)
		}
	default:
		return fmt.Errorf("scraping.runner must be %q or %q, got %q", RunnerColly, RunnerExec, c.Scraping.Runner)
	}
	if c.DB.DSN != "" && c.DB.MaxConns <= 0 {
		return fmt.Errorf("db.max_conns must be > 0")
	}
	return nil
}

// TokenTTL returns the configured token lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// ShutdownTimeout bounds graceful shutdown of the server and running jobs.
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// RequestTimeout bounds each HTTP handler.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// ScrapeDelay is the pause between page fetches of the colly runner.
func (c Config) ScrapeDelay() time.Duration {
	return time.Duration(c.Scraping.DelayMillis) * time.Millisecond
}

// ScrapeRequestTimeout bounds each page fetch of the colly runner.
func (c Config) ScrapeRequestTimeout() time.Duration {
	return time.Duration(c.Scraping.RequestTimeoutSeconds) * time.Second
}
