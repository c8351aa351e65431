package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mvidmar/inventra/internal/imaging"
	"github.com/mvidmar/inventra/internal/model"
	"github.com/mvidmar/inventra/internal/store"
)

// ItemsHandler handles item CRUD, listing, ledger and photo endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Name        string           `json:"name"`
	CategoryID  *int64           `json:"category_id"`
	Quantity    *int             `json:"quantity"`
	MinQuantity *int             `json:"min_quantity"`
	Price       *decimal.Decimal `json:"price"`
	Location    string           `json:"location"`
	Description string           `json:"description"`
	SKU         string           `json:"sku"`
	Barcode     string           `json:"barcode"`
}

type updateItemRequest struct {
	Name        *string          `json:"name"`
	CategoryID  *int64           `json:"category_id"`
	Quantity    *int             `json:"quantity"`
	MinQuantity *int             `json:"min_quantity"`
	Price       *decimal.Decimal `json:"price"`
	Location    *string          `json:"location"`
	Description *string          `json:"description"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := store.ItemQuery{
		Category:        q.Get("category"),
		Status:          q.Get("status"),
		Search:          q.Get("search"),
		SortBy:          q.Get("sortBy"),
		Order:           q.Get("order"),
		IncludeInactive: q.Get("include_inactive") == "true",
	}
	query.Page, _ = strconv.Atoi(q.Get("page"))
	query.Limit, _ = strconv.Atoi(q.Get("limit"))

	items, meta, err := store.ListItems(r.Context(), h.DB, query)
	if err != nil {
		storeError(w, err, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": meta,
	})
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	item, err := store.CreateItem(r.Context(), h.DB, claims.UserID, store.ItemDraft{
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		Price:       req.Price,
		Location:    req.Location,
		Description: req.Description,
		SKU:         req.SKU,
		Barcode:     req.Barcode,
	})
	if err != nil {
		storeError(w, err, "failed to create item")
		return
	}

	slog.Info("item created", "user", claims.Username, "item", item.Name, "sku", item.SKU)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}. Inactive items still resolve, marked
// inactive, so their history stays reachable.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := store.ItemPatch{
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		Price:       req.Price,
		Location:    req.Location,
		Description: req.Description,
	}
	if patch.Empty() {
		jsonError(w, http.StatusBadRequest, "no valid fields to update")
		return
	}

	claims := GetClaims(r.Context())
	item, err := store.UpdateItem(r.Context(), h.DB, claims.UserID, id, patch)
	if err != nil {
		storeError(w, err, "failed to update item")
		return
	}

	slog.Info("item updated", "user", claims.Username, "item", item.Name)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id} (soft delete).
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete item")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item deleted", "user", claims.Username, "item_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// GetTransactions handles GET /api/items/{id}/transactions: the item's
// full ledger, oldest first, including entries of inactive items.
func (h *ItemsHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	entries, err := store.ListItemTransactions(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get item transactions")
		return
	}
	if entries == nil {
		entries = []model.Transaction{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes)

	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		storeError(w, err, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
