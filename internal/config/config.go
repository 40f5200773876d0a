package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const (
	envPrefix     = "SALES"
	configFileEnv = "SALES_CONFIG_FILE"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Dataset  DatasetConfig  `yaml:"dataset" envconfig:"DATASET"`
	Reports  ReportsConfig  `yaml:"reports" envconfig:"REPORTS"`
	Logger   LoggerConfig   `yaml:"logger" envconfig:"LOG"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Metrics  MetricsConfig  `yaml:"metrics" envconfig:"METRICS"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"localhost"`
	Port            int           `yaml:"port" default:"8084"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true" default:"30s"`
}

type DatasetConfig struct {
	File         string        `yaml:"file" default:"data/sales.csv"`
	Pipeline     string        `yaml:"pipeline" default:"standard"`
	CacheEnabled bool          `yaml:"cache_enabled" split_words:"true" default:"true"`
	CacheDir     string        `yaml:"cache_dir" split_words:"true" default:".cache"`
	LoadTimeout  time.Duration `yaml:"load_timeout" split_words:"true" default:"2m"`
}

// ReportsConfig holds the defaults used when a request omits a parameter.
type ReportsConfig struct {
	TopProducts     int `yaml:"top_products" split_words:"true" default:"10"`
	TopCountries    int `yaml:"top_countries" split_words:"true" default:"2"`
	SeasonalityFrom int `yaml:"seasonality_from" split_words:"true" default:"2011"`
	SeasonalityTo   int `yaml:"seasonality_to" split_words:"true" default:"2015"`
	VolumeYear      int `yaml:"volume_year" split_words:"true" default:"2015"`
}

type LoggerConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"json"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `yaml:"enable_rate_limit" split_words:"true" default:"true"`
	RateLimitRPS    int      `yaml:"rate_limit_rps" split_words:"true" default:"100"`
	RateLimitBurst  int      `yaml:"rate_limit_burst" split_words:"true" default:"10"`
	AllowedOrigins  []string `yaml:"allowed_origins" split_words:"true" default:"http://localhost:8084"`
	TrustedProxies  []string `yaml:"trusted_proxies" split_words:"true" default:"127.0.0.1"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

// Load reads SALES_* environment variables, applying defaults, then overlays
// the YAML file named by SALES_CONFIG_FILE when set.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if path := os.Getenv(configFileEnv); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("load config from file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadFile overlays only the keys present in the file.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Dataset.File == "" {
		return fmt.Errorf("dataset file path cannot be empty")
	}

	validPipelines := []string{"standard", "safe"}
	if !slices.Contains(validPipelines, strings.ToLower(c.Dataset.Pipeline)) {
		return fmt.Errorf("invalid pipeline %q, must be one of: %s", c.Dataset.Pipeline, strings.Join(validPipelines, ", "))
	}

	if c.Dataset.LoadTimeout <= 0 {
		return fmt.Errorf("dataset load timeout must be positive")
	}

	if c.Reports.TopProducts < 1 || c.Reports.TopCountries < 1 {
		return fmt.Errorf("report top-N defaults must be at least 1")
	}

	if c.Reports.SeasonalityFrom > c.Reports.SeasonalityTo {
		return fmt.Errorf("seasonality period %d-%d is inverted", c.Reports.SeasonalityFrom, c.Reports.SeasonalityTo)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with /, got %q", c.Metrics.Path)
	}

	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
