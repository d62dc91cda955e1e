package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Storage drivers understood by the client.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Storage selects and configures the durable key/value backend.
type Storage struct {
	Driver      string `env:"DRIVER"`
	Path        string `env:"PATH"`
	RedisAddr   string `env:"REDIS_ADDR"`
	RedisDB     int    `env:"REDIS_DB"`
	RedisPrefix string `env:"REDIS_PREFIX"`
}

// Config holds runtime settings for the bookshelf client.
//
// Durations are time.Duration values; LogLevel uses slog levels
// (-4 debug, 0 info, 4 warn, 8 error).
type Config struct {
	BaseURL             string        `env:"BASE_URL"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT"`
	RequestsPerSecond   float64       `env:"REQUESTS_PER_SECOND"`
	Burst               int           `env:"BURST"`
	SearchDebounce      time.Duration `env:"SEARCH_DEBOUNCE"`
	PriceDebounce       time.Duration `env:"PRICE_DEBOUNCE"`
	VerifyCloseDelay    time.Duration `env:"VERIFY_CLOSE_DELAY"`
	PurchaseURLTemplate string        `env:"PURCHASE_URL_TEMPLATE"`
	LogLevel            int           `env:"LOG_LEVEL"`
	Storage             Storage       `envPrefix:"STORAGE_"`
}

// LoadDefaults populates c with the values the client ships with.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:5000"
	c.RequestTimeout = 10 * time.Second
	c.RequestsPerSecond = 5
	c.Burst = 5
	c.SearchDebounce = 500 * time.Millisecond
	c.PriceDebounce = 500 * time.Millisecond
	c.VerifyCloseDelay = 1500 * time.Millisecond
	c.PurchaseURLTemplate = "https://www.amazon.com/s?k=%s"
	c.LogLevel = 0
	c.Storage = Storage{
		Driver:      DriverSQLite,
		Path:        "bookshelf.db",
		RedisAddr:   "localhost:6379",
		RedisPrefix: "bookshelf:",
	}
}

// Validate reports settings the client cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base url is empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.SearchDebounce < 0 || c.PriceDebounce < 0 || c.VerifyCloseDelay < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("sqlite storage needs a path"))
		}
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			errs = append(errs, errors.New("redis storage needs an address"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	return errors.Join(errs...)
}

// Load builds a Config from defaults, then the optional config file, then
// the environment, then command-line flags. Later sources win.
// A nil environ means the process environment.
func Load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args and the process environment. It panics on
// error, so it is meant for main only.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:], nil)
	if err != nil {
		panic(err)
	}
	return cfg
}
