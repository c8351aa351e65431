package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item represents an inventory item (quantity-based, not individual tracking).
type Item struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	CategoryID  *int64              `json:"category_id,omitempty"`
	Quantity    int                 `json:"quantity"`
	MinQuantity int                 `json:"min_quantity"`
	Price       decimal.NullDecimal `json:"price"`
	Location    string              `json:"location,omitempty"`
	Description string              `json:"description,omitempty"`
	SKU         string              `json:"sku"`
	Barcode     string              `json:"barcode,omitempty"`
	ImageMime   string              `json:"image_mime,omitempty"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	// Joined and derived fields (not stored on the row).
	CategoryName string `json:"category_name,omitempty"`
	StockStatus  string `json:"stock_status,omitempty"`
}

// Item statuses.
const (
	ItemStatusActive   = "active"
	ItemStatusInactive = "inactive"
)

// Stock statuses derived from quantity vs. the min_quantity threshold.
const (
	StockOutOfStock = "out_of_stock"
	StockLowStock   = "low_stock"
	StockInStock    = "in_stock"
)

// StockStatus classifies an item's stock level. The checks are ordered:
// an empty shelf is out_of_stock no matter the threshold, and with a
// threshold of 0 low_stock is unreachable.
func StockStatus(quantity, minQuantity int) string {
	switch {
	case quantity == 0:
		return StockOutOfStock
	case quantity <= minQuantity:
		return StockLowStock
	default:
		return StockInStock
	}
}

// DefaultMinQuantity is the low-stock threshold for items that don't set one.
const DefaultMinQuantity = 5
