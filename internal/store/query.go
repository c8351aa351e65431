package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/mvidmar/inventra/internal/model"
)

// Stock-status predicates over item rows. These are the SQL mirror of
// model.StockStatus and the only place the thresholds are written down in
// SQL: both the list filter and the dashboard aggregates use them.
const (
	condOutOfStock = "i.quantity = 0"
	condLowStock   = "i.quantity > 0 AND i.quantity <= i.min_quantity"
	condInStock    = "i.quantity > i.min_quantity"
)

// Pagination defaults.
const (
	DefaultPageLimit = 20
)

// Columns items may be sorted by. Anything else falls back to name.
var sortColumns = map[string]string{
	"name":          "i.name",
	"quantity":      "i.quantity",
	"price":         "i.price",
	"created_at":    "i.created_at",
	"category_name": "category_name",
}

// ItemQuery describes a filtered, sorted, paginated item listing.
// The zero value lists the first page of active items sorted by name.
type ItemQuery struct {
	Category        string // exact category name, or a numeric category id
	Status          string // in_stock, low_stock, out_of_stock, or all/empty
	Search          string // case-insensitive substring over name, description, sku
	SortBy          string
	Order           string // asc or desc
	Page            int
	Limit           int
	IncludeInactive bool
}

// where builds the filter predicate once; the count query and the row
// query both execute it. Deriving one from the other textually is how
// the two drift apart.
func (q ItemQuery) where() (string, []any) {
	clauses := []string{"1=1"}
	var args []any

	if !q.IncludeInactive {
		clauses = append(clauses, "i.status != 'inactive'")
	}

	if q.Category != "" && q.Category != "all" {
		if id, err := strconv.ParseInt(q.Category, 10, 64); err == nil {
			clauses = append(clauses, "i.category_id = ?")
			args = append(args, id)
		} else {
			clauses = append(clauses, "c.name = ?")
			args = append(args, q.Category)
		}
	}

	switch q.Status {
	case model.StockOutOfStock:
		clauses = append(clauses, condOutOfStock)
	case model.StockLowStock:
		clauses = append(clauses, condLowStock)
	case model.StockInStock:
		clauses = append(clauses, condInStock)
	}

	if q.Search != "" {
		clauses = append(clauses, "(i.name LIKE ? OR i.description LIKE ? OR i.sku LIKE ?)")
		term := "%" + q.Search + "%"
		args = append(args, term, term, term)
	}

	return strings.Join(clauses, " AND "), args
}

// orderBy returns the validated ORDER BY clause. Unknown sort fields fall
// back to name, unknown orders to ascending.
func (q ItemQuery) orderBy() string {
	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "i.name"
	}
	order := "ASC"
	if strings.EqualFold(q.Order, "desc") {
		order = "DESC"
	}
	return column + " " + order
}

// ListItems executes the query and returns one page of items plus
// pagination metadata. Total counts every row matching the same filter.
func ListItems(ctx context.Context, db *sql.DB, query ItemQuery) ([]model.Item, model.Pagination, error) {
	where, args := query.where()

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	var total int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items i LEFT JOIN categories c ON c.id = i.category_id WHERE `+where,
		args...,
	).Scan(&total)
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("counting items: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i LEFT JOIN categories c ON c.id = i.category_id
		 WHERE `+where+`
		 ORDER BY `+query.orderBy()+`
		 LIMIT ? OFFSET ?`,
		append(args, limit, (page-1)*limit)...,
	)
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, model.Pagination{}, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Pagination{}, err
	}

	meta := model.Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
	return items, meta, nil
}

// ListRecentItems returns the newest active items, for the dashboard.
func ListRecentItems(ctx context.Context, db *sql.DB, limit int) ([]model.Item, error) {
	if limit <= 0 {
		limit = 5
	}
	items, _, err := ListItems(ctx, db, ItemQuery{SortBy: "created_at", Order: "desc", Limit: limit})
	return items, err
}
