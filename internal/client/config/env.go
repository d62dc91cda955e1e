package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name, e.g. BOOKSHELF_BASE_URL or
// BOOKSHELF_STORAGE_DRIVER.
const EnvPrefix = "BOOKSHELF_"

// parseEnv overlays cfg with variables that are set. Unset variables leave
// the current value alone, so no envDefault tags are used.
func parseEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}
