package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configFileEnv, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8084, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "data/sales.csv", cfg.Dataset.File)
	assert.Equal(t, "standard", cfg.Dataset.Pipeline)
	assert.Equal(t, 2, cfg.Reports.TopCountries)
	assert.Equal(t, 2011, cfg.Reports.SeasonalityFrom)
	assert.Equal(t, 2015, cfg.Reports.SeasonalityTo)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.Security.TrustedProxies)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "localhost:8084", cfg.Address())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(configFileEnv, "")
	t.Setenv("SALES_SERVER_PORT", "9090")
	t.Setenv("SALES_DATASET_PIPELINE", "safe")
	t.Setenv("SALES_LOG_LEVEL", "debug")
	t.Setenv("SALES_SECURITY_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "safe", cfg.Dataset.Pipeline)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
}

func TestLoadFileOverridesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.yaml")
	content := `
server:
  port: 7070
dataset:
  file: /srv/sales.xlsx
  load_timeout: 45s
reports:
  top_products: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv(configFileEnv, path)
	t.Setenv("SALES_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/srv/sales.xlsx", cfg.Dataset.File)
	assert.Equal(t, 45*time.Second, cfg.Dataset.LoadTimeout)
	assert.Equal(t, 5, cfg.Reports.TopProducts)
	// untouched keys keep their defaults
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "SALES_SERVER_PORT", "70000"},
		{"unknown pipeline", "SALES_DATASET_PIPELINE", "fast"},
		{"unknown log level", "SALES_LOG_LEVEL", "verbose"},
		{"zero burst", "SALES_SECURITY_RATE_LIMIT_BURST", "0"},
		{"inverted period", "SALES_REPORTS_SEASONALITY_FROM", "2020"},
		{"unparseable int", "SALES_SERVER_PORT", "eighty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(configFileEnv, "")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(configFileEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
