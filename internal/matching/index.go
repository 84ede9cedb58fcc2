package matching

import (
	"context"
	"fmt"
	"strings"

	"shopify-asset-sync/internal/domain/model"
)

// VariantPager fetches one page of catalog variants. Implemented by the
// Shopify adapter; cursor is opaque and empty for the first page.
type VariantPager interface {
	FetchVariantPage(ctx context.Context, productType string, pageSize int, cursor string) (variants []model.Variant, nextCursor string, err error)
}

// CatalogIndex is a read-only snapshot of catalog variants, grouped for
// matching. Safe to share by reference across pipeline invocations once
// built. Groupings preserve fetch order so tie-breaks inside a matching
// tier are stable for a given catalog snapshot.
type CatalogIndex struct {
	variants      []model.Variant
	byColorCode   map[string][]*model.Variant
	byProductBase map[string][]*model.Variant

	// PagesFailed reports that pagination stopped early on a non-first
	// page; the index holds the pages fetched before the failure.
	PagesFailed bool
}

// IndexOptions bounds catalog construction.
type IndexOptions struct {
	ProductType string
	PageSize    int
	MaxRecords  int
}

const (
	defaultPageSize   = 100
	defaultMaxRecords = 10000
)

// BuildCatalogIndex fetches the variant catalog page by page and indexes it.
// A first-page failure fails the whole build with ErrCatalogFetch. A
// later-page failure keeps the pages already fetched and flags the index as
// partial rather than hiding the problem.
func BuildCatalogIndex(ctx context.Context, pager VariantPager, opts IndexOptions) (*CatalogIndex, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > 250 {
		pageSize = defaultPageSize
	}
	maxRecords := opts.MaxRecords
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}

	idx := &CatalogIndex{
		byColorCode:   make(map[string][]*model.Variant),
		byProductBase: make(map[string][]*model.Variant),
	}

	cursor := ""
	firstPage := true
	for len(idx.variants) < maxRecords {
		variants, next, err := pager.FetchVariantPage(ctx, opts.ProductType, pageSize, cursor)
		if err != nil {
			if firstPage {
				return nil, fmt.Errorf("%w: %v", model.ErrCatalogFetch, err)
			}
			idx.PagesFailed = true
			break
		}
		firstPage = false

		for _, v := range variants {
			if strings.TrimSpace(v.Sku) == "" {
				continue
			}
			if strings.TrimSpace(v.Color) == "" {
				continue
			}
			idx.add(v)
			if len(idx.variants) >= maxRecords {
				break
			}
		}

		if next == "" {
			break
		}
		cursor = next
	}

	return idx, nil
}

// NewCatalogIndex builds an index directly from a variant slice. Used by
// tests and by callers that already hold a snapshot.
func NewCatalogIndex(variants []model.Variant) *CatalogIndex {
	idx := &CatalogIndex{
		byColorCode:   make(map[string][]*model.Variant),
		byProductBase: make(map[string][]*model.Variant),
	}
	for _, v := range variants {
		if strings.TrimSpace(v.Sku) == "" {
			continue
		}
		idx.add(v)
	}
	return idx
}

func (idx *CatalogIndex) add(v model.Variant) {
	idx.variants = append(idx.variants, v)
	stored := &v

	if color := GetColorCode(v.Sku); color != "" {
		idx.byColorCode[color] = append(idx.byColorCode[color], stored)
	}
	base := ExtractSKUBase(v.Sku)
	if segs := strings.Split(base, "-"); len(segs) >= 2 {
		productBase := strings.ToUpper(strings.Join(segs[:len(segs)-1], "-"))
		idx.byProductBase[productBase] = append(idx.byProductBase[productBase], stored)
	}
}

// Variants returns the indexed variants in fetch order.
func (idx *CatalogIndex) Variants() []model.Variant {
	return idx.variants
}

// ByColorCode returns the variants whose SKU color segment equals code, in
// fetch order.
func (idx *CatalogIndex) ByColorCode(code string) []*model.Variant {
	return idx.byColorCode[strings.ToUpper(code)]
}

// Len returns the number of indexed variants.
func (idx *CatalogIndex) Len() int {
	return len(idx.variants)
}
