package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/mvidmar/inventra/internal/model"
	"github.com/mvidmar/inventra/internal/store"
)

// DashboardHandler handles dashboard aggregate endpoints.
type DashboardHandler struct {
	DB *sql.DB
}

// Summary handles GET /api/dashboard/summary. Aggregates may lag
// in-flight writes; they reflect some committed state.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := store.GetSummary(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to get summary")
		return
	}

	recent, err := store.ListRecentItems(r.Context(), h.DB, 5)
	if err != nil {
		storeError(w, err, "failed to get recent items")
		return
	}
	if recent == nil {
		recent = []model.Item{}
	}

	topCategories, err := store.TopCategories(r.Context(), h.DB, 5)
	if err != nil {
		storeError(w, err, "failed to get top categories")
		return
	}
	if topCategories == nil {
		topCategories = []model.CategoryStats{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"total_items":      summary.TotalItems,
		"low_stock":        summary.LowStock,
		"out_of_stock":     summary.OutOfStock,
		"total_value":      summary.TotalValue,
		"avg_price":        summary.AvgPrice,
		"categories_count": summary.CategoriesCount,
		"recent_items":     recent,
		"top_categories":   topCategories,
		"timestamp":        time.Now().UTC(),
	})
}

// TransactionsHandler handles ledger listing endpoints.
type TransactionsHandler struct {
	DB *sql.DB
}

// Recent handles GET /api/transactions/recent.
func (h *TransactionsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := store.ListRecentTransactions(r.Context(), h.DB, limit)
	if err != nil {
		storeError(w, err, "failed to list transactions")
		return
	}
	if entries == nil {
		entries = []model.Transaction{}
	}
	jsonResponse(w, http.StatusOK, entries)
}
