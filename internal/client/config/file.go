package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Harsh100101/Book-Recommendation-System/internal/flagx"
	"github.com/Harsh100101/Book-Recommendation-System/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of Config. Durations go through
// timex.Duration so files may say "500ms" or give integer nanoseconds.
type fileConfig struct {
	BaseURL             string         `json:"base_url" yaml:"base_url"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	RequestsPerSecond   float64        `json:"requests_per_second" yaml:"requests_per_second"`
	Burst               int            `json:"burst" yaml:"burst"`
	SearchDebounce      timex.Duration `json:"search_debounce" yaml:"search_debounce"`
	PriceDebounce       timex.Duration `json:"price_debounce" yaml:"price_debounce"`
	VerifyCloseDelay    timex.Duration `json:"verify_close_delay" yaml:"verify_close_delay"`
	PurchaseURLTemplate string         `json:"purchase_url_template" yaml:"purchase_url_template"`
	LogLevel            int            `json:"log_level" yaml:"log_level"`
	Storage             fileStorage    `json:"storage" yaml:"storage"`
}

type fileStorage struct {
	Driver      string `json:"driver" yaml:"driver"`
	Path        string `json:"path" yaml:"path"`
	RedisAddr   string `json:"redis_addr" yaml:"redis_addr"`
	RedisDB     int    `json:"redis_db" yaml:"redis_db"`
	RedisPrefix string `json:"redis_prefix" yaml:"redis_prefix"`
}

func toFile(c *Config) fileConfig {
	return fileConfig{
		BaseURL:             c.BaseURL,
		RequestTimeout:      timex.Duration{Duration: c.RequestTimeout},
		RequestsPerSecond:   c.RequestsPerSecond,
		Burst:               c.Burst,
		SearchDebounce:      timex.Duration{Duration: c.SearchDebounce},
		PriceDebounce:       timex.Duration{Duration: c.PriceDebounce},
		VerifyCloseDelay:    timex.Duration{Duration: c.VerifyCloseDelay},
		PurchaseURLTemplate: c.PurchaseURLTemplate,
		LogLevel:            c.LogLevel,
		Storage:             fileStorage(c.Storage),
	}
}

func (fc fileConfig) apply(c *Config) {
	c.BaseURL = fc.BaseURL
	c.RequestTimeout = fc.RequestTimeout.Duration
	c.RequestsPerSecond = fc.RequestsPerSecond
	c.Burst = fc.Burst
	c.SearchDebounce = fc.SearchDebounce.Duration
	c.PriceDebounce = fc.PriceDebounce.Duration
	c.VerifyCloseDelay = fc.VerifyCloseDelay.Duration
	c.PurchaseURLTemplate = fc.PurchaseURLTemplate
	c.LogLevel = fc.LogLevel
	c.Storage = Storage(fc.Storage)
}

// parseFile overlays cfg with the file named by -c or -config. Keys missing
// from the file keep their current values. Files ending in .yaml or .yml
// are read as YAML, anything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	fc := toFile(cfg)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}
