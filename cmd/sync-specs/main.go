// Attaches PDF spec sheets from the Drive folder to catalog variants.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"shopify-asset-sync/internal/adapters/drive"
	"shopify-asset-sync/internal/adapters/shopify"
	"shopify-asset-sync/internal/app/usecases"
	"shopify-asset-sync/internal/config"
	"shopify-asset-sync/internal/domain/model"
	infrahttp "shopify-asset-sync/internal/infra/http"
	"shopify-asset-sync/internal/infra/mysql"
	"shopify-asset-sync/internal/logging"
	"shopify-asset-sync/internal/matching"
	"shopify-asset-sync/internal/ratelimit"
)

func main() {
	fileIDs := flag.String("file-ids", "", "comma-separated Drive file ids to sync instead of the whole folder")
	folderID := flag.String("folder", "", "override the configured Drive folder id")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("error %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.TelegramBot)
	httpClient := infrahttp.NewClient(maxDuration(cfg.Shopify.Timeout, cfg.Drive.Timeout))

	limiter := ratelimit.New(ratelimit.Config{
		Limit:  cfg.Drive.RateLimit.Limit,
		Window: cfg.Drive.RateLimit.Window,
	})
	driveClient := drive.NewClient(cfg.Drive, httpClient, limiter, logger)
	shopifyClient := shopify.NewClient(cfg.Shopify, httpClient, logger)

	var dedupStore usecases.DedupStore
	if cfg.Mysql.Host != "" {
		db, err := mysql.New(cfg.Mysql)
		if err != nil {
			logger.LogWarning(fmt.Sprintf("mysql unavailable, dedup is per-run only: %v", err))
		} else {
			defer db.Close()
			store, err := mysql.NewDedupStore(db)
			if err != nil {
				logger.LogWarning(fmt.Sprintf("dedup store init failed: %v", err))
			} else {
				dedupStore = store
			}
		}
	}

	folder := cfg.Drive.FolderID
	if strings.TrimSpace(*folderID) != "" {
		folder = strings.TrimSpace(*folderID)
	}

	syncSpecs := usecases.NewSyncAssets(
		driveClient,
		shopifyClient,
		matching.NewMatcher(matching.MatcherConfig{}),
		dedupStore,
		logger,
		usecases.SyncOptions{
			Category:           model.CategorySpec,
			FolderID:           folder,
			FileIDs:            splitIDs(*fileIDs),
			ProductType:        cfg.Sync.ProductType,
			PageSize:           cfg.Sync.PageSize,
			MaxCatalogRecords:  cfg.Sync.MaxCatalogRecords,
			MetafieldNamespace: cfg.Sync.MetafieldNamespace,
		},
	)

	summary, err := syncSpecs.Run(context.Background())
	if err != nil {
		logger.LogError("spec sheet sync failed", err)
		os.Exit(1)
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

func splitIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

func maxDuration(a, b time.Duration) time.Duration {
	if a >= b {
		return a
	}
	return b
}
