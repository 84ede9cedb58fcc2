package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "SHOPSYNC"

// Load reads configuration from an optional config.yaml and from
// SHOPSYNC_* environment variables, applies defaults and validates the
// pieces every sync job needs.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/shopify-asset-sync/")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// no config file, env vars and defaults only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("shopify.api_version", "2024-10")
	v.SetDefault("shopify.timeout", "30s")
	v.SetDefault("shopify.pace_rps", 2.0)

	v.SetDefault("drive.timeout", "60s")
	v.SetDefault("drive.rate_limit.limit", 10)
	v.SetDefault("drive.rate_limit.window", "100s")

	v.SetDefault("sync.product_type", "Wallpaper")
	v.SetDefault("sync.metafield_namespace", "custom")
	v.SetDefault("sync.page_size", 100)
	v.SetDefault("sync.max_catalog_records", 10000)

	v.SetDefault("mysql.port", 3306)
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Shopify.ShopDomain) == "" {
		return fmt.Errorf("shopify.shop_domain is required")
	}
	if strings.TrimSpace(cfg.Shopify.Token) == "" {
		return fmt.Errorf("shopify.token is required")
	}
	if strings.TrimSpace(cfg.Drive.RefreshToken) == "" && strings.TrimSpace(cfg.Drive.AccessToken) == "" {
		return fmt.Errorf("drive.refresh_token or drive.access_token is required")
	}
	if cfg.Sync.PageSize < 1 || cfg.Sync.PageSize > 250 {
		return fmt.Errorf("sync.page_size must be between 1 and 250, got %d", cfg.Sync.PageSize)
	}
	return nil
}
