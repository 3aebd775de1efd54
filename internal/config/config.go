// Package config loads server settings from the environment, an optional
// .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every runtime setting.
type Config struct {
	Port        int
	DBDriver    string
	DBPath      string
	DatabaseURL string

	JWTSecret    string
	JWTExpiresIn time.Duration

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string
	AdminUsers         []string
	GinMode            string
}

// Load reads the configuration. Environment variables win over the config
// file, which wins over defaults. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "./data/shopping.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRES_IN", "1h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("ADMIN_USERS", "")
	v.SetDefault("GIN_MODE", "release")
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	ttl, err := time.ParseDuration(v.GetString("JWT_EXPIRES_IN"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	cfg := &Config{
		Port:               v.GetInt("PORT"),
		DBDriver:           strings.ToLower(v.GetString("DB_DRIVER")),
		DBPath:             v.GetString("DB_PATH"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTExpiresIn:       ttl,
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		AdminUsers:         splitList(v.GetString("ADMIN_USERS")),
		GinMode:            v.GetString("GIN_MODE"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for sqlite"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	return errors.Join(errs...)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
