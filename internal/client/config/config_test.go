package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://localhost:5000", c.BaseURL)
	assert.Equal(t, 500*time.Millisecond, c.SearchDebounce)
	assert.Equal(t, 500*time.Millisecond, c.PriceDebounce)
	assert.Equal(t, 1500*time.Millisecond, c.VerifyCloseDelay)
	assert.Equal(t, DriverSQLite, c.Storage.Driver)
	assert.NoError(t, c.Validate())
}

func TestLoad_NoSources(t *testing.T) {
	cfg, err := Load(nil, map[string]string{})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", `
base_url: http://file:1
request_timeout: 3s
search_debounce: 200ms
storage:
  driver: redis
  redis_addr: cache:6379
`)
	environ := map[string]string{
		"BOOKSHELF_BASE_URL":         "http://env:2",
		"BOOKSHELF_PRICE_DEBOUNCE":   "250ms",
		"BOOKSHELF_STORAGE_REDIS_DB": "3",
	}
	args := []string{"-config", path, "-a", "http://flag:3", "-x", "ignored"}

	cfg, err := Load(args, environ)
	require.NoError(t, err)

	want := defaults()
	want.BaseURL = "http://flag:3"
	want.RequestTimeout = 3 * time.Second
	want.SearchDebounce = 200 * time.Millisecond
	want.PriceDebounce = 250 * time.Millisecond
	want.Storage.Driver = DriverRedis
	want.Storage.RedisAddr = "cache:6379"
	want.Storage.RedisDB = 3

	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		environ map[string]string
	}{
		{name: "bad timeout flag", args: []string{"-t", "abc"}},
		{name: "bad env duration", environ: map[string]string{"BOOKSHELF_SEARCH_DEBOUNCE": "soon"}},
		{name: "unknown driver", environ: map[string]string{"BOOKSHELF_STORAGE_DRIVER": "floppy"}},
		{name: "missing file", args: []string{"-c", filepath.Join(t.TempDir(), "nope.json")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environ := tt.environ
			if environ == nil {
				environ = map[string]string{}
			}
			_, err := Load(tt.args, environ)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_PanicsOnBadFlags(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"bookshelf", "-t", "abc"}
	require.Panics(t, func() { LoadConfig() })
}

func TestValidate(t *testing.T) {
	c := defaults()
	c.BaseURL = ""
	c.RequestTimeout = 0
	c.Storage.Driver = DriverSQLite
	c.Storage.Path = ""

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base url is empty")
	assert.Contains(t, err.Error(), "request timeout")
	assert.Contains(t, err.Error(), "sqlite storage needs a path")

	c = defaults()
	c.Storage.Driver = DriverMemory
	c.Storage.Path = ""
	assert.NoError(t, c.Validate())
}
