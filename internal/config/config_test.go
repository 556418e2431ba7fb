package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without file or env", func(t *testing.T) {
		cfg, err := Load("", t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "", cfg.DB.Path)
		assert.Equal(t, "en", cfg.Locale)
		assert.False(t, cfg.Log.Verbose)
		assert.Equal(t, []string{"openfoodfacts", "usda"}, cfg.Barcode.Providers)
		assert.Equal(t, 60, cfg.Barcode.RatePerMinute)
		assert.Equal(t, 12*time.Second, cfg.Barcode.Timeout)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("NUTRILOG_DB_PATH", "/tmp/custom.db")
		t.Setenv("NUTRILOG_LOCALE", "zh-TW")
		t.Setenv("NUTRILOG_LOG_VERBOSE", "true")
		t.Setenv("NUTRILOG_BARCODE_PROVIDERS", "usda")
		t.Setenv("NUTRILOG_BARCODE_USDA_API_KEY", "secret")
		t.Setenv("NUTRILOG_BARCODE_TIMEOUT", "3s")

		cfg, err := Load("", t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "/tmp/custom.db", cfg.DB.Path)
		assert.Equal(t, "zh-TW", cfg.Locale)
		assert.True(t, cfg.Log.Verbose)
		assert.Equal(t, []string{"usda"}, cfg.Barcode.Providers)
		assert.Equal(t, "secret", cfg.Barcode.USDAAPIKey)
		assert.Equal(t, 3*time.Second, cfg.Barcode.Timeout)
	})

	t.Run("reads yaml file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nutrilog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
db:
  path: /data/ledger.db
barcode:
  providers: [usda, openfoodfacts]
  rate_per_minute: 10
`), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/data/ledger.db", cfg.DB.Path)
		assert.Equal(t, []string{"usda", "openfoodfacts"}, cfg.Barcode.Providers)
		assert.Equal(t, 10, cfg.Barcode.RatePerMinute)
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		t.Setenv("NUTRILOG_BARCODE_PROVIDERS", "nutritionix")
		_, err := Load("", t.TempDir())
		assert.ErrorContains(t, err, "unsupported barcode provider")
	})
}
