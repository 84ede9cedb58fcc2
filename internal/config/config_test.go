package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SHOPSYNC_SHOPIFY_SHOP_DOMAIN", "test-shop.myshopify.com")
	t.Setenv("SHOPSYNC_SHOPIFY_TOKEN", "shpat_test")
	t.Setenv("SHOPSYNC_DRIVE_REFRESH_TOKEN", "refresh-token")
	t.Setenv("SHOPSYNC_SYNC_PRODUCT_TYPE", "Murals")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-shop.myshopify.com", cfg.Shopify.ShopDomain)
	assert.Equal(t, "shpat_test", cfg.Shopify.Token)
	assert.Equal(t, "Murals", cfg.Sync.ProductType)

	// Defaults fill in everything not set.
	assert.Equal(t, "2024-10", cfg.Shopify.APIVer)
	assert.Equal(t, 30*time.Second, cfg.Shopify.Timeout)
	assert.Equal(t, 2.0, cfg.Shopify.PaceRPS)
	assert.Equal(t, 10, cfg.Drive.RateLimit.Limit)
	assert.Equal(t, 100*time.Second, cfg.Drive.RateLimit.Window)
	assert.Equal(t, "custom", cfg.Sync.MetafieldNamespace)
	assert.Equal(t, 100, cfg.Sync.PageSize)
	assert.Equal(t, 3306, cfg.Mysql.Port)
}

func TestLoadRequiresShopDomain(t *testing.T) {
	t.Setenv("SHOPSYNC_SHOPIFY_TOKEN", "shpat_test")
	t.Setenv("SHOPSYNC_DRIVE_REFRESH_TOKEN", "refresh-token")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shop_domain")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Shopify: ShopifyConfig{ShopDomain: "s.myshopify.com", Token: "tok"},
			Drive:   DriveConfig{RefreshToken: "r"},
			Sync:    SyncConfig{PageSize: 100},
		}
	}

	assert.NoError(t, validate(base()))

	noToken := base()
	noToken.Shopify.Token = " "
	assert.Error(t, validate(noToken))

	noDriveCreds := base()
	noDriveCreds.Drive.RefreshToken = ""
	assert.Error(t, validate(noDriveCreds))

	accessTokenOnly := base()
	accessTokenOnly.Drive.RefreshToken = ""
	accessTokenOnly.Drive.AccessToken = "at"
	assert.NoError(t, validate(accessTokenOnly))

	badPageSize := base()
	badPageSize.Sync.PageSize = 0
	assert.Error(t, validate(badPageSize))

	tooBigPageSize := base()
	tooBigPageSize.Sync.PageSize = 500
	assert.Error(t, validate(tooBigPageSize))
}
