package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups items. Item membership is optional and many-to-one.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryStats is a dashboard row: a category with its active item count
// and total stock value.
type CategoryStats struct {
	Name       string          `json:"name"`
	ItemCount  int             `json:"item_count"`
	TotalValue decimal.Decimal `json:"total_value"`
}
