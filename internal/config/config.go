// Package config loads nutrilog settings from an optional YAML file and
// NUTRILOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "NUTRILOG"

type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	Locale  string        `mapstructure:"locale"`
	Log     LogConfig     `mapstructure:"log"`
	Barcode BarcodeConfig `mapstructure:"barcode"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

type BarcodeConfig struct {
	Providers        []string      `mapstructure:"providers"`
	USDAAPIKey       string        `mapstructure:"usda_api_key"`
	UPCItemDBAPIKey  string        `mapstructure:"upcitemdb_api_key"`
	UPCItemDBKeyType string        `mapstructure:"upcitemdb_key_type"`
	OpenFoodFactsURL string        `mapstructure:"openfoodfacts_url"`
	USDAURL          string        `mapstructure:"usda_url"`
	UPCItemDBURL     string        `mapstructure:"upcitemdb_url"`
	RatePerMinute    int           `mapstructure:"rate_per_minute"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// Load reads path when given, otherwise nutrilog.yaml from the working
// directory or searchDirs if one exists. Environment variables override the
// file; a missing file is not an error unless path was explicit.
func Load(path string, searchDirs ...string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("nutrilog")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		for _, dir := range searchDirs {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "")
	v.SetDefault("locale", "en")
	v.SetDefault("log.verbose", false)

	v.SetDefault("barcode.providers", []string{"openfoodfacts", "usda"})
	v.SetDefault("barcode.usda_api_key", "")
	v.SetDefault("barcode.upcitemdb_api_key", "")
	v.SetDefault("barcode.upcitemdb_key_type", "3scale")
	v.SetDefault("barcode.openfoodfacts_url", "https://world.openfoodfacts.org")
	v.SetDefault("barcode.usda_url", "https://api.nal.usda.gov")
	v.SetDefault("barcode.upcitemdb_url", "https://api.upcitemdb.com")
	// Open Food Facts asks for at most 100 product reads per minute.
	v.SetDefault("barcode.rate_per_minute", 60)
	v.SetDefault("barcode.timeout", "12s")
}

func validate(cfg *Config) error {
	providers := make([]string, 0, len(cfg.Barcode.Providers))
	for _, p := range cfg.Barcode.Providers {
		p = strings.ToLower(strings.TrimSpace(p))
		switch p {
		case "":
			continue
		case "openfoodfacts", "usda", "upcitemdb":
			providers = append(providers, p)
		default:
			return fmt.Errorf("unsupported barcode provider %q", p)
		}
	}
	cfg.Barcode.Providers = providers
	if cfg.Barcode.RatePerMinute < 0 {
		return fmt.Errorf("barcode.rate_per_minute must be >= 0")
	}
	if cfg.Barcode.Timeout <= 0 {
		return fmt.Errorf("barcode.timeout must be > 0")
	}
	return nil
}
