package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvidmar/inventra/internal/model"
)

// itemColumns is the shared projection for item reads, joined with the
// category name.
const itemColumns = `i.id, i.name, i.category_id, i.quantity, i.min_quantity, i.price,
        i.location, i.description, i.sku, i.barcode, i.image_mime, i.status,
        i.created_at, i.updated_at, c.name AS category_name`

// ItemDraft is the input for creating an item. Quantity, MinQuantity and
// Price distinguish "absent" from zero via pointers.
type ItemDraft struct {
	Name        string
	CategoryID  *int64
	Quantity    *int
	MinQuantity *int
	Price       *decimal.Decimal
	Location    string
	Description string
	SKU         string
	Barcode     string
}

// ItemPatch is a partial update. Only non-nil fields are applied; there
// is one field per updatable column, so unexpected input has nowhere to go.
type ItemPatch struct {
	Name        *string
	CategoryID  *int64
	Quantity    *int
	MinQuantity *int
	Price       *decimal.Decimal
	Location    *string
	Description *string
}

// Empty reports whether the patch carries no fields at all.
func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.CategoryID == nil && p.Quantity == nil &&
		p.MinQuantity == nil && p.Price == nil && p.Location == nil && p.Description == nil
}

func (d ItemDraft) validate() ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(d.Name) == "" {
		errs.add("name", "item name is required")
	}
	if d.Quantity != nil && *d.Quantity < 0 {
		errs.add("quantity", "quantity must be 0 or greater")
	}
	if d.MinQuantity != nil && *d.MinQuantity < 0 {
		errs.add("min_quantity", "min_quantity must be 0 or greater")
	}
	if d.Price != nil && d.Price.IsNegative() {
		errs.add("price", "price must be 0 or greater")
	}
	return errs
}

func (p ItemPatch) validate() ValidationErrors {
	var errs ValidationErrors
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errs.add("name", "item name must not be empty")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		errs.add("quantity", "quantity must be 0 or greater")
	}
	if p.MinQuantity != nil && *p.MinQuantity < 0 {
		errs.add("min_quantity", "min_quantity must be 0 or greater")
	}
	if p.Price != nil && p.Price.IsNegative() {
		errs.add("price", "price must be 0 or greater")
	}
	return errs
}

// skuAttempts bounds regenerate-and-retry on generated SKU collisions.
const skuAttempts = 3

// CreateItem validates the draft, inserts the item row and its initial
// check_in ledger entry in one transaction, and returns the stored item.
// The entry is attributed to userID. A missing SKU gets a generated one;
// generation does not guarantee uniqueness, so collisions are retried
// with a fresh SKU. A caller-supplied duplicate SKU is an ErrConflict.
func CreateItem(ctx context.Context, db *sql.DB, userID int64, draft ItemDraft) (*model.Item, error) {
	if errs := draft.validate(); len(errs) > 0 {
		return nil, errs
	}

	quantity := 0
	if draft.Quantity != nil {
		quantity = *draft.Quantity
	}
	minQuantity := model.DefaultMinQuantity
	if draft.MinQuantity != nil {
		minQuantity = *draft.MinQuantity
	}

	if draft.CategoryID != nil {
		ok, err := categoryExists(ctx, db, *draft.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ValidationErrors{{Field: "category_id", Message: "category not found"}}
		}
	}

	sku := strings.TrimSpace(draft.SKU)
	generated := sku == ""

	var id int64
	for attempt := 0; ; attempt++ {
		if generated {
			sku = generateSKU()
		}

		newID, err := insertItem(ctx, db, userID, draft, sku, quantity, minQuantity)
		if err == nil {
			id = newID
			break
		}
		if isUniqueViolation(err, "items.sku") {
			if generated && attempt < skuAttempts-1 {
				continue
			}
			return nil, conflictf("sku %q already exists", sku)
		}
		return nil, err
	}

	return GetItem(ctx, db, id)
}

// insertItem writes the item row and its initial ledger entry atomically.
func insertItem(ctx context.Context, db *sql.DB, userID int64, draft ItemDraft, sku string, quantity, minQuantity int) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	price := decimal.NullDecimal{}
	if draft.Price != nil {
		price = decimal.NullDecimal{Decimal: *draft.Price, Valid: true}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (name, category_id, quantity, min_quantity, price, location, description, sku, barcode)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(draft.Name), draft.CategoryID, quantity, minQuantity, price,
		draft.Location, draft.Description, sku, nullString(draft.Barcode),
	)
	if err != nil {
		return 0, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting item id: %w", err)
	}

	if err := appendTransaction(ctx, tx, id, userID, model.TransactionCheckIn, quantity, 0, quantity, "Initial stock entry"); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing item creation: %w", err)
	}
	return id, nil
}

// GetItem returns an item by ID, regardless of status: soft-deleted
// items stay addressable for audit purposes. Returns nil if not found.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i LEFT JOIN categories c ON c.id = i.category_id
		 WHERE i.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// UpdateItem applies a partial update. If the patch changes the quantity,
// the delta against the stored quantity is recorded as a ledger entry and
// both writes commit as one transaction. Concurrent quantity updates are
// serialized: the row's write lock is taken before the current quantity
// is read, and the update carries an optimistic quantity guard on top.
func UpdateItem(ctx context.Context, db *sql.DB, userID, id int64, patch ItemPatch) (*model.Item, error) {
	if errs := patch.validate(); len(errs) > 0 {
		return nil, errs
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Acquire the write lock before reading, so the quantity below can't
	// go stale while the delta is computed.
	if _, err := tx.ExecContext(ctx, `UPDATE items SET id = id WHERE id = ?`, id); err != nil {
		if isBusy(err) {
			return nil, conflictf("item %d is being modified", id)
		}
		return nil, fmt.Errorf("locking item: %w", err)
	}

	var current int
	err = tx.QueryRowContext(ctx, `SELECT quantity FROM items WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading item quantity: %w", err)
	}

	if patch.CategoryID != nil {
		ok, err := categoryExists(ctx, tx, *patch.CategoryID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ValidationErrors{{Field: "category_id", Message: "category not found"}}
		}
	}

	sets, args := patch.assignments()
	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		query := `UPDATE items SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
		args = append(args, id)
		if patch.Quantity != nil {
			query += ` AND quantity = ?`
			args = append(args, current)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			if isBusy(err) {
				return nil, conflictf("item %d is being modified", id)
			}
			return nil, fmt.Errorf("updating item: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return nil, conflictf("item %d changed concurrently", id)
		}
	}

	if patch.Quantity != nil && *patch.Quantity != current {
		delta := *patch.Quantity - current
		txType := model.TransactionCheckIn
		change := delta
		if delta < 0 {
			txType = model.TransactionCheckOut
			change = -delta
		}
		if err := appendTransaction(ctx, tx, id, userID, txType, change, current, *patch.Quantity, "Manual adjustment"); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		if isBusy(err) {
			return nil, conflictf("item %d is being modified", id)
		}
		return nil, fmt.Errorf("committing item update: %w", err)
	}

	return GetItem(ctx, db, id)
}

func (p ItemPatch) assignments() ([]string, []any) {
	var sets []string
	var args []any
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*p.Name))
	}
	if p.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *p.CategoryID)
	}
	if p.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *p.Quantity)
	}
	if p.MinQuantity != nil {
		sets = append(sets, "min_quantity = ?")
		args = append(args, *p.MinQuantity)
	}
	if p.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, decimal.NullDecimal{Decimal: *p.Price, Valid: true})
	}
	if p.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *p.Location)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	return sets, args
}

// DeleteItem soft-deletes an item: status flips to inactive, quantity and
// ledger history stay untouched. Already-inactive items report ErrNotFound.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = 'inactive', updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status != 'inactive'`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem scans one itemColumns row and derives the stock status.
func scanItem(s rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var categoryID sql.NullInt64
	var location, description, barcode, imageMime, categoryName sql.NullString
	err := s.Scan(&item.ID, &item.Name, &categoryID, &item.Quantity, &item.MinQuantity, &item.Price,
		&location, &description, &item.SKU, &barcode, &imageMime, &item.Status,
		&item.CreatedAt, &item.UpdatedAt, &categoryName)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		item.CategoryID = &categoryID.Int64
	}
	item.Location = location.String
	item.Description = description.String
	item.Barcode = barcode.String
	item.ImageMime = imageMime.String
	item.CategoryName = categoryName.String
	item.StockStatus = model.StockStatus(item.Quantity, item.MinQuantity)
	return item, nil
}

// generateSKU builds a time-plus-random SKU. Low collision probability,
// not uniqueness: the unique index is the actual guarantee, and CreateItem
// retries on collision.
func generateSKU() string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("SKU-%d-%s", time.Now().UnixMilli(), suffix)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
