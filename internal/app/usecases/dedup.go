package usecases

import (
	"context"
	"strings"

	"shopify-asset-sync/internal/domain/model"
)

// DedupKey identifies one (product, color) attachment slot. Each asset
// category has its own tracker, so images and spec sheets for the same
// pair are satisfied independently.
type DedupKey struct {
	ProductID string
	ColorCode string
}

// DedupStore is an optional external collaborator that carries dedup keys
// across runs. The core never requires it; failures degrade to warnings.
type DedupStore interface {
	Seed(ctx context.Context, category model.AssetCategory) ([]DedupKey, error)
	Persist(ctx context.Context, category model.AssetCategory, key DedupKey) error
}

// DedupTracker records which (product, color) pairs already received an
// asset of one category during the current run. Created empty at run
// start, grows monotonically, discarded at run end. Owned exclusively by
// the single orchestrator goroutine; no locking.
type DedupTracker struct {
	category model.AssetCategory
	seen     map[DedupKey]bool
}

func NewDedupTracker(category model.AssetCategory) *DedupTracker {
	return &DedupTracker{
		category: category,
		seen:     make(map[DedupKey]bool),
	}
}

func (t *DedupTracker) key(productID, colorCode string) DedupKey {
	return DedupKey{
		ProductID: productID,
		ColorCode: strings.ToUpper(strings.TrimSpace(colorCode)),
	}
}

// Seen reports whether the pair already received an asset this run.
func (t *DedupTracker) Seen(productID, colorCode string) bool {
	return t.seen[t.key(productID, colorCode)]
}

// Register marks the pair as satisfied. Called only after a successful
// metadata update, so a failed transfer never blocks a later candidate
// for the same pair.
func (t *DedupTracker) Register(productID, colorCode string) {
	t.seen[t.key(productID, colorCode)] = true
}

// SeedFrom preloads keys recorded by earlier runs.
func (t *DedupTracker) SeedFrom(keys []DedupKey) {
	for _, k := range keys {
		t.seen[t.key(k.ProductID, k.ColorCode)] = true
	}
}

// Len returns how many pairs are satisfied so far.
func (t *DedupTracker) Len() int {
	return len(t.seen)
}
