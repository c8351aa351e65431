package model

import "github.com/shopspring/decimal"

// Summary holds dashboard aggregates over active items. The low/out of
// stock counts use the same thresholds as StockStatus.
type Summary struct {
	TotalItems      int             `json:"total_items"`
	LowStock        int             `json:"low_stock"`
	OutOfStock      int             `json:"out_of_stock"`
	TotalValue      decimal.Decimal `json:"total_value"`
	AvgPrice        decimal.Decimal `json:"avg_price"`
	CategoriesCount int             `json:"categories_count"`
}

// Pagination describes one page of a filtered listing. Total counts all
// rows matching the filter, independent of the page window.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}
