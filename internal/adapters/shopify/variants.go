package shopify

import (
	"context"
	"fmt"
	"strings"

	"shopify-asset-sync/internal/adapters/shopify/dto"
	"shopify-asset-sync/internal/domain/model"
)

// colorOptionNames are the variant option names recognized as the color
// attribute, checked case-insensitively.
var colorOptionNames = []string{"Color", "Colour"}

// FetchVariantPage returns one page of variants filtered to the given
// product type. Cursor is the GraphQL end cursor from the previous page;
// empty means first page. An empty next cursor means the catalog is
// exhausted.
func (c *Client) FetchVariantPage(ctx context.Context, productType string, pageSize int, cursor string) ([]model.Variant, string, error) {
	if pageSize <= 0 || pageSize > 250 {
		pageSize = 100
	}

	query := `
query productVariants($first: Int!, $after: String, $query: String) {
	productVariants(first: $first, after: $after, query: $query) {
		nodes {
			id
			sku
			title
			price
			inventoryQuantity
			selectedOptions { name value }
			product { id handle title productType tags }
		}
		pageInfo { hasNextPage endCursor }
	}
}`

	variables := map[string]any{"first": pageSize}
	if cursor != "" {
		variables["after"] = cursor
	}
	if pt := strings.TrimSpace(productType); pt != "" {
		variables["query"] = fmt.Sprintf("product_type:%s", quoteSearchTerm(pt))
	}

	var data dto.ProductVariantsData
	if err := c.graphqlRequest(ctx, query, variables, &data); err != nil {
		return nil, "", err
	}

	variants := make([]model.Variant, 0, len(data.ProductVariants.Nodes))
	for _, node := range data.ProductVariants.Nodes {
		variants = append(variants, mapShopifyVariant(node))
	}

	next := ""
	if data.ProductVariants.PageInfo.HasNextPage {
		next = data.ProductVariants.PageInfo.EndCursor
	}
	return variants, next, nil
}

func mapShopifyVariant(node dto.ShopifyVariant) model.Variant {
	return model.Variant{
		ID:                node.ID,
		Sku:               node.SKU,
		Title:             node.Title,
		Price:             node.Price,
		InventoryQuantity: node.InventoryQuantity,
		Color:             variantColor(node.SelectedOptions),
		ProductID:         node.Product.ID,
		ProductHandle:     node.Product.Handle,
		ProductTitle:      node.Product.Title,
		ProductType:       node.Product.ProductType,
		Tags:              node.Product.Tags,
	}
}

func variantColor(options []dto.SelectedOption) string {
	for _, opt := range options {
		for _, name := range colorOptionNames {
			if strings.EqualFold(strings.TrimSpace(opt.Name), name) {
				return strings.TrimSpace(opt.Value)
			}
		}
	}
	return ""
}

func quoteSearchTerm(term string) string {
	if strings.ContainsAny(term, " \"") {
		term = strings.ReplaceAll(term, `"`, `\"`)
		return fmt.Sprintf(`"%s"`, term)
	}
	return term
}
