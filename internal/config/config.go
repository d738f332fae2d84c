package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is the typed application configuration.
type Config struct {
	AppPort     string
	DatabaseURL string
	DBDriver    string
	FrontendURL string
	TestMode    bool
	LogLevel    string
	LogFormat   string
	RabbitMQURL string
	RabbitQueue string
	Clear       bool
}

// Flags declares the command line flags understood by the server.
func Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("productsapi", pflag.ContinueOnError)
	flags.Bool("clear", false, "drop and recreate the products table, then exit")
	flags.String("port", "", "listen address, overrides APP_PORT")
	return flags
}

// Load reads .env (when present), the environment and the parsed flags.
func Load(flags *pflag.FlagSet) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("APP_PORT", ":4000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("FRONTEND_URL", "")
	v.SetDefault("TEST_MODE", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "product_events")
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	cfg := Config{
		AppPort:     v.GetString("APP_PORT"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		FrontendURL: v.GetString("FRONTEND_URL"),
		TestMode:    v.GetBool("TEST_MODE"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		RabbitQueue: v.GetString("RABBITMQ_QUEUE"),
		Clear:       v.GetBool("clear"),
	}
	if port := v.GetString("port"); port != "" {
		cfg.AppPort = port
	}
	if !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}

	return cfg, cfg.Validate()
}

// Validate reports configuration that cannot be served.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.DBDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.FrontendURL != "" {
		u, err := url.Parse(c.FrontendURL)
		if err != nil || u.Scheme == "" || u.Host == "" || u.User != nil ||
			(u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
			return fmt.Errorf("FRONTEND_URL must be a scheme://host[:port] origin, got %q", c.FrontendURL)
		}
	}
	return nil
}
