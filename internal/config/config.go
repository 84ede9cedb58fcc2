package config

import "time"

type Config struct {
	Shopify     ShopifyConfig     `mapstructure:"shopify"`
	Drive       DriveConfig       `mapstructure:"drive"`
	Sync        SyncConfig        `mapstructure:"sync"`
	Mysql       MysqlConfig       `mapstructure:"mysql"`
	TelegramBot TelegramBotConfig `mapstructure:"telegram"`
}

type ShopifyConfig struct {
	ShopDomain string        `mapstructure:"shop_domain"`
	Token      string        `mapstructure:"token"`
	APIVer     string        `mapstructure:"api_version"`
	Timeout    time.Duration `mapstructure:"timeout"`
	// PaceRPS throttles outbound Shopify calls client-side.
	PaceRPS float64 `mapstructure:"pace_rps"`
}

type DriveConfig struct {
	ClientID     string          `mapstructure:"client_id"`
	ClientSecret string          `mapstructure:"client_secret"`
	RefreshToken string          `mapstructure:"refresh_token"`
	AccessToken  string          `mapstructure:"access_token"`
	FolderID     string          `mapstructure:"folder_id"`
	Timeout      time.Duration   `mapstructure:"timeout"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

type SyncConfig struct {
	ProductType        string `mapstructure:"product_type"`
	MetafieldNamespace string `mapstructure:"metafield_namespace"`
	PageSize           int    `mapstructure:"page_size"`
	MaxCatalogRecords  int    `mapstructure:"max_catalog_records"`
}

type MysqlConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type TelegramBotConfig struct {
	ChatId string `mapstructure:"chat_id"`
	Token  string `mapstructure:"token"`
}
