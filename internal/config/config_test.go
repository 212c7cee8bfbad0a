package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
store:
  store_id: storecomponents
  locales: [en-US, pt-BR]
  default_locale: en-US
paths:
  sitemap_url: https://example.com/sitemap.xml
  static:
    - /shoes
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "storecomponents", cfg.Store.StoreID)
	assert.Equal(t, []string{"en-US", "pt-BR"}, cfg.Store.Locales)
	assert.Equal(t, "en-US", cfg.Store.DefaultLocale)
	assert.Equal(t, "https://example.com/sitemap.xml", cfg.Paths.SitemapURL)
	assert.Equal(t, []string{"/shoes"}, cfg.Paths.Static)

	assert.Equal(t, 10, cfg.Paths.MaxRequestsPerSecond)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, "storefront_pages", cfg.Redis.ConsumerGroup)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
store:
  store_id: fromfile
  locales: [en-US]
  default_locale: en-US
paths:
  static: [/shoes]
`)
	t.Setenv("STORE_STORE_ID", "fromenv")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.Store.StoreID)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadFailsFastOnMissingStoreOptions(t *testing.T) {
	path := writeConfig(t, `
paths:
  static: [/shoes]
`)

	cfg, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "store.store_id is required")
	assert.Contains(t, err.Error(), "store.locales is required")
	assert.Contains(t, err.Error(), "store.default_locale is required")
}

func TestValidateRequiresPathSource(t *testing.T) {
	cfg := Config{
		Store: StoreConfig{StoreID: "s", Locales: []string{"en"}, DefaultLocale: "en"},
		Paths: PathsConfig{MaxRequestsPerSecond: 1, MaxWorkers: 1},
		Redis: RedisConfig{Workers: 1},
	}

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "paths.sitemap_url or paths.static")

	cfg.Paths.Static = []string{"/"}
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresRedisWorkers(t *testing.T) {
	cfg := Config{
		Store: StoreConfig{StoreID: "s", Locales: []string{"en"}, DefaultLocale: "en"},
		Paths: PathsConfig{Static: []string{"/"}, MaxRequestsPerSecond: 1, MaxWorkers: 1},
	}

	for _, workers := range []int{0, -1} {
		cfg.Redis.Workers = workers
		err := cfg.Validate()
		require.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "redis.workers must be positive")
	}

	cfg.Redis.Workers = 2
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsZeroRedisWorkers(t *testing.T) {
	path := writeConfig(t, `
store:
  store_id: s
  locales: [en]
  default_locale: en
paths:
  static: [/shoes]
redis:
  workers: 0
`)

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
