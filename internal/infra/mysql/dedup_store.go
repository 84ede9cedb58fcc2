package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"shopify-asset-sync/internal/app/usecases"
	"shopify-asset-sync/internal/domain/model"
)

// DedupStore keeps attachment dedup keys across runs. Without it the
// orchestrator still dedups within one run; the store just stops a later
// run from re-attaching pairs that are already satisfied.
type DedupStore struct {
	db *sql.DB
}

func NewDedupStore(db *sql.DB) (*DedupStore, error) {
	if db == nil {
		return nil, fmt.Errorf("mysql db handle is nil")
	}
	s := &DedupStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *DedupStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS asset_dedup_keys (
	category   VARCHAR(16)  NOT NULL,
	product_id VARCHAR(128) NOT NULL,
	color_code VARCHAR(8)   NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (category, product_id, color_code)
)`)
	if err != nil {
		return fmt.Errorf("mysql: dedup schema %w", err)
	}
	return nil
}

func (s *DedupStore) Seed(ctx context.Context, category model.AssetCategory) ([]usecases.DedupKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, color_code FROM asset_dedup_keys WHERE category = ?`, string(category))
	if err != nil {
		return nil, fmt.Errorf("mysql: dedup seed %w", err)
	}
	defer rows.Close()

	var keys []usecases.DedupKey
	for rows.Next() {
		var k usecases.DedupKey
		if err := rows.Scan(&k.ProductID, &k.ColorCode); err != nil {
			return nil, fmt.Errorf("mysql: dedup scan %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *DedupStore) Persist(ctx context.Context, category model.AssetCategory, key usecases.DedupKey) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT IGNORE INTO asset_dedup_keys (category, product_id, color_code) VALUES (?, ?, ?)`,
		string(category), key.ProductID, key.ColorCode)
	if err != nil {
		return fmt.Errorf("mysql: dedup persist %w", err)
	}
	return nil
}
