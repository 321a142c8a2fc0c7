// Package config loads the server configuration from environment variables.
//
// Every setting has a default except JWT_SECRET: there is no built-in
// fallback secret, so a server that forgot to set one refuses to start
// instead of signing tokens anyone could forge.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/taskboard/internal/auth"
)

// Config is the complete server configuration.
type Config struct {
	Port int `env:"PORT" envDefault:"5000"`

	JWTSecret  string        `env:"JWT_SECRET,notEmpty"`
	JWTTTL     time.Duration `env:"JWT_TTL"     envDefault:"168h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	DB        DBConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

// DBConfig selects and tunes the database.
type DBConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite"`

	// sqlite
	Path string `env:"DB_PATH" envDefault:"data/taskboard.db"`

	// postgres
	Host     string `env:"DB_HOST"`
	Port     int    `env:"DB_PORT"     envDefault:"5432"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE"  envDefault:"disable"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS"    envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS"    envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled     bool   `env:"OTEL_ENABLED"      envDefault:"true"`
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"taskboard"`
}

// Active reports whether tracing should be exported: an endpoint is set
// and OTEL_ENABLED hasn't switched it off.
func (t TelemetryConfig) Active() bool {
	return t.Enabled && t.Endpoint != ""
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once, so a misconfigured
// deployment can be fixed in one pass.
func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if len(c.JWTSecret) < auth.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", auth.MinSecretLength))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}

	errs = append(errs, c.DB.problems()...)

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// LoadDB parses and validates only the database settings. Commands that
// never issue tokens (migrate) use it so they don't need JWT_SECRET.
func LoadDB() (DBConfig, error) {
	var d DBConfig
	if err := env.Parse(&d); err != nil {
		return DBConfig{}, fmt.Errorf("config: parse env: %w", err)
	}
	if errs := d.problems(); len(errs) > 0 {
		return DBConfig{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return d, nil
}

func (d DBConfig) problems() []error {
	var errs []error

	switch d.Driver {
	case "sqlite":
		if d.Path == "" {
			errs = append(errs, errors.New("DB_PATH is required for the sqlite driver"))
		}
	case "postgres":
		if d.Host == "" || d.User == "" || d.Name == "" {
			errs = append(errs, errors.New("DB_HOST, DB_USER and DB_NAME are required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", d.Driver))
	}
	if d.MaxOpenConns < 1 {
		errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1, got %d", d.MaxOpenConns))
	}

	return errs
}

// DSN returns the data source for the configured driver: the file path for
// sqlite, a postgres:// URL for postgres.
func (d DBConfig) DSN() string {
	if d.Driver != "postgres" {
		return d.Path
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q: %w", l.Level, err)
	}
	return level, nil
}
