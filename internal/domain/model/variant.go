package model

// Variant is a single purchasable product variant fetched from Shopify.
// It is immutable once fetched; the catalog index owns it for the
// duration of one sync run.
type Variant struct {
	ID                string
	Sku               string
	Title             string
	Price             string
	InventoryQuantity int
	Color             string
	ProductID         string
	ProductHandle     string
	ProductTitle      string
	ProductType       string
	Tags              []string
}
