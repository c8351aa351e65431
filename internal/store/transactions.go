package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mvidmar/inventra/internal/model"
)

// appendTransaction inserts one immutable ledger entry inside the item
// mutation's transaction. The item store is the only writer; the arithmetic
// invariant (previous + signed change == new) is its responsibility.
func appendTransaction(ctx context.Context, tx *sql.Tx, itemID, userID int64, txType string, change, previous, next int, notes string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (item_id, user_id, type, quantity_change, previous_quantity, new_quantity, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		itemID, userID, txType, change, previous, next, notes,
	)
	if err != nil {
		return fmt.Errorf("recording transaction: %w", err)
	}
	return nil
}

const transactionColumns = `t.id, t.item_id, t.user_id, t.type, t.quantity_change,
        t.previous_quantity, t.new_quantity, t.notes, t.created_at,
        i.name AS item_name, u.username`

// ListItemTransactions returns an item's full ledger, oldest first.
// Replaying the entries from the first previous_quantity reproduces the
// item's stored quantity.
func ListItemTransactions(ctx context.Context, db *sql.DB, itemID int64) ([]model.Transaction, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions t
		 JOIN items i ON i.id = t.item_id
		 JOIN users u ON u.id = t.user_id
		 WHERE t.item_id = ?
		 ORDER BY t.id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListRecentTransactions returns the newest ledger entries across all items.
func ListRecentTransactions(ctx context.Context, db *sql.DB, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions t
		 JOIN items i ON i.id = t.item_id
		 JOIN users u ON u.id = t.user_id
		 ORDER BY t.id DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var entries []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var notes sql.NullString
		if err := rows.Scan(&t.ID, &t.ItemID, &t.UserID, &t.Type, &t.QuantityChange,
			&t.PreviousQuantity, &t.NewQuantity, &notes, &t.CreatedAt,
			&t.ItemName, &t.Username); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		t.Notes = notes.String
		entries = append(entries, t)
	}
	return entries, rows.Err()
}
