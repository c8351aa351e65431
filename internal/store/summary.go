package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mvidmar/inventra/internal/model"
)

// GetSummary returns the dashboard aggregates over active items. The
// low/out of stock buckets reuse the same predicates as the list filter,
// so the counts always agree with what filtering would return.
func GetSummary(ctx context.Context, db *sql.DB) (*model.Summary, error) {
	s := &model.Summary{}
	query := fmt.Sprintf(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN %s THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN %s THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(i.price * i.quantity), 0),
		        COALESCE(AVG(CASE WHEN i.price > 0 THEN i.price END), 0),
		        COUNT(DISTINCT i.category_id)
		 FROM items i
		 WHERE i.status != 'inactive'`,
		condLowStock, condOutOfStock,
	)
	err := db.QueryRowContext(ctx, query).Scan(
		&s.TotalItems, &s.LowStock, &s.OutOfStock, &s.TotalValue, &s.AvgPrice, &s.CategoriesCount,
	)
	if err != nil {
		return nil, fmt.Errorf("getting summary: %w", err)
	}
	return s, nil
}

// TopCategories returns categories ranked by active item count, with
// their total stock value, for the dashboard.
func TopCategories(ctx context.Context, db *sql.DB, limit int) ([]model.CategoryStats, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := db.QueryContext(ctx,
		`SELECT c.name, COUNT(i.id), COALESCE(SUM(i.price * i.quantity), 0)
		 FROM categories c
		 LEFT JOIN items i ON i.category_id = c.id AND i.status != 'inactive'
		 GROUP BY c.id, c.name
		 ORDER BY COUNT(i.id) DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing top categories: %w", err)
	}
	defer rows.Close()

	var stats []model.CategoryStats
	for rows.Next() {
		var cs model.CategoryStats
		if err := rows.Scan(&cs.Name, &cs.ItemCount, &cs.TotalValue); err != nil {
			return nil, fmt.Errorf("scanning category stats: %w", err)
		}
		stats = append(stats, cs)
	}
	return stats, rows.Err()
}
