package dto

type ShopifyVariant struct {
	ID                string           `json:"id,omitempty"`
	SKU               string           `json:"sku,omitempty"`
	Title             string           `json:"title,omitempty"`
	Price             string           `json:"price,omitempty"`
	InventoryQuantity int              `json:"inventoryQuantity,omitempty"`
	SelectedOptions   []SelectedOption `json:"selectedOptions,omitempty"`
	Product           VariantProduct   `json:"product,omitempty"`
}

type SelectedOption struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

type VariantProduct struct {
	ID          string   `json:"id,omitempty"`
	Handle      string   `json:"handle,omitempty"`
	Title       string   `json:"title,omitempty"`
	ProductType string   `json:"productType,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type ProductVariantsData struct {
	ProductVariants struct {
		Nodes    []ShopifyVariant `json:"nodes,omitempty"`
		PageInfo PageInfo         `json:"pageInfo"`
	} `json:"productVariants"`
}
