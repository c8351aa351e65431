package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mvidmar/inventra/internal/db"
	"github.com/mvidmar/inventra/internal/model"
	"github.com/mvidmar/inventra/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, Config{
		JWTSecret: testJWTSecret,
		BackupDir: filepath.Join(t.TempDir(), "backups"),
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	token := loginAs(t, server, database, "admin", model.RoleAdmin)
	return server, database, token
}

// loginAs creates a user with the given role and returns a token for them.
func loginAs(t *testing.T, server *httptest.Server, database *sql.DB, username, role string) string {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if _, err := store.CreateUser(context.Background(), database, username, string(hash), role); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"username": username, "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp["token"] == "" {
		t.Fatal("empty token from login")
	}
	return loginResp["token"]
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doJSON(t *testing.T, req *http.Request, wantStatus int, out any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", req.Method, req.URL.Path, wantStatus, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
}

func TestLoginEndpoint(t *testing.T) {
	server, _, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestItemLifecycle(t *testing.T) {
	server, _, token := setupTestServer(t)

	// Create.
	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name":         "Laptop",
		"quantity":     10,
		"min_quantity": 3,
		"price":        "899.99",
	})
	var created model.Item
	doJSON(t, req, http.StatusCreated, &created)
	if created.StockStatus != model.StockInStock {
		t.Errorf("expected in_stock, got %q", created.StockStatus)
	}
	if created.SKU == "" {
		t.Error("expected a generated SKU")
	}

	itemURL := fmt.Sprintf("%s/api/items/%d", server.URL, created.ID)

	// Adjust the quantity down to zero.
	req, _ = authRequest("PUT", itemURL, token, map[string]any{"quantity": 0})
	var updated model.Item
	doJSON(t, req, http.StatusOK, &updated)
	if updated.StockStatus != model.StockOutOfStock {
		t.Errorf("expected out_of_stock, got %q", updated.StockStatus)
	}

	// The ledger now has the initial entry plus the adjustment.
	req, _ = authRequest("GET", itemURL+"/transactions", token, nil)
	var entries []model.Transaction
	doJSON(t, req, http.StatusOK, &entries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(entries))
	}
	last := entries[1]
	if last.Type != model.TransactionCheckOut || last.PreviousQuantity != 10 || last.NewQuantity != 0 {
		t.Errorf("unexpected adjustment entry: %+v", last)
	}

	// Soft delete; the item stays reachable but inactive.
	req, _ = authRequest("DELETE", itemURL, token, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", itemURL, token, nil)
	var gone model.Item
	doJSON(t, req, http.StatusOK, &gone)
	if gone.Status != model.ItemStatusInactive {
		t.Errorf("expected inactive, got %q", gone.Status)
	}

	// Deleted items disappear from the default list.
	req, _ = authRequest("GET", server.URL+"/api/items", token, nil)
	var list struct {
		Data       []model.Item     `json:"data"`
		Pagination model.Pagination `json:"pagination"`
	}
	doJSON(t, req, http.StatusOK, &list)
	if list.Pagination.Total != 0 {
		t.Errorf("expected empty list after delete, got %d", list.Pagination.Total)
	}
}

func TestItemValidationErrors(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name":     "",
		"quantity": -5,
	})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if len(body.Errors) != 2 {
		t.Errorf("expected 2 field errors, got %+v", body.Errors)
	}
}

func TestItemDuplicateSKUConflict(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{"name": "First", "sku": "DUP-1"})
	doJSON(t, req, http.StatusCreated, nil)

	req, _ = authRequest("POST", server.URL+"/api/items", token, map[string]any{"name": "Second", "sku": "DUP-1"})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
}

func TestItemListFilters(t *testing.T) {
	server, _, token := setupTestServer(t)

	for i, q := range []int{0, 2, 20} {
		req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{
			"name":         fmt.Sprintf("Item %d", i),
			"quantity":     q,
			"min_quantity": 5,
		})
		doJSON(t, req, http.StatusCreated, nil)
	}

	var list struct {
		Data       []model.Item     `json:"data"`
		Pagination model.Pagination `json:"pagination"`
	}

	req, _ := authRequest("GET", server.URL+"/api/items?status=low_stock", token, nil)
	doJSON(t, req, http.StatusOK, &list)
	if list.Pagination.Total != 1 || list.Data[0].Quantity != 2 {
		t.Errorf("expected the one low stock item, got %+v", list)
	}

	req, _ = authRequest("GET", server.URL+"/api/items?sortBy=quantity&order=desc&limit=2", token, nil)
	doJSON(t, req, http.StatusOK, &list)
	if len(list.Data) != 2 || list.Data[0].Quantity != 20 {
		t.Errorf("expected quantity desc page of 2, got %+v", list.Data)
	}
	if list.Pagination.Total != 3 || list.Pagination.TotalPages != 2 {
		t.Errorf("unexpected pagination: %+v", list.Pagination)
	}
}

func TestUpdateWithNoFields(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{"name": "Widget"})
	var created model.Item
	doJSON(t, req, http.StatusCreated, &created)

	req, _ = authRequest("PUT", fmt.Sprintf("%s/api/items/%d", server.URL, created.ID), token, map[string]any{})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for empty patch, got %d", resp.StatusCode)
	}
}

func TestDashboardSummary(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/categories", token, map[string]string{"name": "Electronics"})
	var cat model.Category
	doJSON(t, req, http.StatusCreated, &cat)

	req, _ = authRequest("POST", server.URL+"/api/items", token, map[string]any{
		"name": "Cable", "quantity": 4, "min_quantity": 5, "price": "2.50", "category_id": cat.ID,
	})
	doJSON(t, req, http.StatusCreated, nil)

	req, _ = authRequest("GET", server.URL+"/api/dashboard/summary", token, nil)
	var summary struct {
		TotalItems    int                   `json:"total_items"`
		LowStock      int                   `json:"low_stock"`
		OutOfStock    int                   `json:"out_of_stock"`
		RecentItems   []model.Item          `json:"recent_items"`
		TopCategories []model.CategoryStats `json:"top_categories"`
	}
	doJSON(t, req, http.StatusOK, &summary)

	if summary.TotalItems != 1 || summary.LowStock != 1 || summary.OutOfStock != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if len(summary.RecentItems) != 1 {
		t.Errorf("expected 1 recent item, got %d", len(summary.RecentItems))
	}
	if len(summary.TopCategories) != 1 || summary.TopCategories[0].ItemCount != 1 {
		t.Errorf("unexpected top categories: %+v", summary.TopCategories)
	}
}

func TestRecentTransactionsEndpoint(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{"name": "Widget", "quantity": 5})
	doJSON(t, req, http.StatusCreated, nil)

	req, _ = authRequest("GET", server.URL+"/api/transactions/recent?limit=5", token, nil)
	var entries []model.Transaction
	doJSON(t, req, http.StatusOK, &entries)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ItemName != "Widget" || entries[0].Username != "admin" {
		t.Errorf("expected joined names, got %+v", entries[0])
	}
}

func TestRoleEnforcement(t *testing.T) {
	server, database, _ := setupTestServer(t)
	userToken := loginAs(t, server, database, "viewer", model.RoleUser)

	// Read is allowed.
	req, _ := authRequest("GET", server.URL+"/api/items", userToken, nil)
	doJSON(t, req, http.StatusOK, nil)

	// Write is not.
	req, _ = authRequest("POST", server.URL+"/api/items", userToken, map[string]any{"name": "Nope"})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user write, got %d", resp.StatusCode)
	}

	// Admin endpoints are off limits too.
	req, _ = authRequest("GET", server.URL+"/api/users", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user on admin endpoint, got %d", resp.StatusCode)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/items")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	// Health stays public.
	resp, _ = http.Get(server.URL + "/api/health")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for health, got %d", resp.StatusCode)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", server.URL+"/api/items", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("PUT", server.URL+"/api/settings", token, map[string]string{"system_name": "Acme Stock"})
	doJSON(t, req, http.StatusOK, nil)

	var settings map[string]string
	req, _ = authRequest("GET", server.URL+"/api/settings", token, nil)
	doJSON(t, req, http.StatusOK, &settings)
	if settings["system_name"] != "Acme Stock" {
		t.Errorf("expected saved name, got %q", settings["system_name"])
	}
	if _, ok := settings["jwt_secret"]; ok {
		t.Error("jwt_secret must not be exposed")
	}

	req, _ = authRequest("POST", server.URL+"/api/settings/reset", token, nil)
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", server.URL+"/api/settings", token, nil)
	doJSON(t, req, http.StatusOK, &settings)
	if settings["system_name"] != "Inventra" {
		t.Errorf("expected default name after reset, got %q", settings["system_name"])
	}
}

func TestBackupEndpoint(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/backup", token, nil)
	var resp map[string]string
	doJSON(t, req, http.StatusOK, &resp)
	if resp["path"] == "" {
		t.Error("expected backup path in response")
	}
}

func TestItemImageUpload(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/items", token, map[string]any{"name": "Widget"})
	var created model.Item
	doJSON(t, req, http.StatusCreated, &created)

	var png bytes.Buffer
	if err := encodeTestPNG(&png, 10, 10); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, _ := mw.CreateFormFile("image", "photo.png")
	part.Write(png.Bytes())
	mw.Close()

	imageURL := fmt.Sprintf("%s/api/items/%d/image", server.URL, created.ID)
	req, _ = http.NewRequest("PUT", imageURL, &form)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	doJSON(t, req, http.StatusOK, nil)

	req, _ = authRequest("GET", imageURL, token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET image: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", ct)
	}
}

func encodeTestPNG(w io.Writer, width, height int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 25), G: uint8(y * 25), B: 128, A: 255})
		}
	}
	return png.Encode(w, img)
}

func TestUsersAdminFlow(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/users", token, map[string]string{
		"username": "bob",
		"password": "secret123",
		"role":     model.RoleManager,
	})
	var created model.User
	doJSON(t, req, http.StatusCreated, &created)

	req, _ = authRequest("PUT", fmt.Sprintf("%s/api/users/%d", server.URL, created.ID), token, map[string]string{
		"role": model.RoleUser,
	})
	doJSON(t, req, http.StatusOK, nil)

	var users []model.User
	req, _ = authRequest("GET", server.URL+"/api/users", token, nil)
	doJSON(t, req, http.StatusOK, &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}
