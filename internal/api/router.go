package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/mvidmar/inventra/internal/model"
)

// Config holds router dependencies beyond the database handle.
type Config struct {
	JWTSecret string
	BackupDir string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: cfg.JWTSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	categoriesHandler := &CategoriesHandler{DB: db}
	transactionsHandler := &TransactionsHandler{DB: db}
	dashboardHandler := &DashboardHandler{DB: db}
	settingsHandler := &SettingsHandler{DB: db, BackupDir: cfg.BackupDir}

	authMW := AuthMiddleware(cfg.JWTSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login and health.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusInternalServerError, "database connection failed")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"database":  "connected",
			"timestamp": time.Now().UTC(),
		})
	})

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Items: read (all roles), write (manager+).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(requireManager(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(requireManager(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("DELETE /api/items/{id}", authMW(requireManager(http.HandlerFunc(itemsHandler.Delete))))
	mux.Handle("GET /api/items/{id}/transactions", authMW(http.HandlerFunc(itemsHandler.GetTransactions)))
	mux.Handle("PUT /api/items/{id}/image", authMW(requireManager(http.HandlerFunc(itemsHandler.UploadImage))))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))

	// Categories: read (all roles), write (manager+).
	mux.Handle("GET /api/categories", authMW(http.HandlerFunc(categoriesHandler.List)))
	mux.Handle("POST /api/categories", authMW(requireManager(http.HandlerFunc(categoriesHandler.Create))))
	mux.Handle("GET /api/categories/{id}", authMW(http.HandlerFunc(categoriesHandler.Get)))

	// Transactions and dashboard (all roles).
	mux.Handle("GET /api/transactions/recent", authMW(http.HandlerFunc(transactionsHandler.Recent)))
	mux.Handle("GET /api/dashboard/summary", authMW(http.HandlerFunc(dashboardHandler.Summary)))

	// Settings and backup (manager+ to change, admin to back up).
	mux.Handle("GET /api/settings", authMW(http.HandlerFunc(settingsHandler.Get)))
	mux.Handle("PUT /api/settings", authMW(requireManager(http.HandlerFunc(settingsHandler.Save))))
	mux.Handle("POST /api/settings/reset", authMW(requireManager(http.HandlerFunc(settingsHandler.Reset))))
	mux.Handle("POST /api/backup", authMW(requireAdmin(http.HandlerFunc(settingsHandler.Backup))))

	return mux
}
