package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopify-asset-sync/internal/adapters/shopify/dto"
)

// SetProductAttribute writes one keyed metafield on a product. The write
// is an overwrite-by-key: setting the same namespace/key again replaces
// the previous value, which is what makes pipeline re-runs safe.
func (c *Client) SetProductAttribute(ctx context.Context, productID, namespace, key, value, valueType string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return errors.New("shopify product id is required")
	}
	namespace = strings.TrimSpace(namespace)
	key = strings.TrimSpace(key)
	if namespace == "" || key == "" {
		return errors.New("shopify metafield namespace and key are required")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("shopify metafield value is required")
	}
	if strings.TrimSpace(valueType) == "" {
		valueType = "single_line_text_field"
	}

	query := `
mutation metafieldsSet($metafields: [MetafieldsSetInput!]!) {
	metafieldsSet(metafields: $metafields) {
		metafields { id namespace key value }
		userErrors { field message }
	}
}`

	var data dto.MetafieldsSetData
	err := c.graphqlRequest(ctx, query, map[string]any{
		"metafields": []map[string]any{{
			"ownerId":   productID,
			"namespace": namespace,
			"key":       key,
			"type":      valueType,
			"value":     value,
		}},
	}, &data)
	if err != nil {
		return err
	}
	if err := userErrorsToError("metafieldsSet", data.MetafieldsSet.UserErrors); err != nil {
		return err
	}
	if len(data.MetafieldsSet.Metafields) == 0 {
		return fmt.Errorf("shopify metafieldsSet wrote nothing for product %s key %s.%s", productID, namespace, key)
	}
	return nil
}
