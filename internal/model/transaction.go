package model

import "time"

// Transaction is one immutable entry in an item's quantity ledger.
// Entries are append-only: they are never updated or deleted, even when
// the item itself is soft-deleted.
type Transaction struct {
	ID               int64     `json:"id"`
	ItemID           int64     `json:"item_id"`
	UserID           int64     `json:"user_id"`
	Type             string    `json:"type"`
	QuantityChange   int       `json:"quantity_change"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
	Username string `json:"username,omitempty"`
}

// Transaction types. quantity_change carries magnitude only; the type
// carries the sign.
const (
	TransactionCheckIn  = "check_in"
	TransactionCheckOut = "check_out"
)

// SignedChange returns the ledger entry's change with its sign applied.
func (t Transaction) SignedChange() int {
	if t.Type == TransactionCheckOut {
		return -t.QuantityChange
	}
	return t.QuantityChange
}
