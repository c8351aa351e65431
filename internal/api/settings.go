package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/mvidmar/inventra/internal/store"
)

// SettingsHandler handles system settings and backup endpoints.
type SettingsHandler struct {
	DB        *sql.DB
	BackupDir string
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := store.GetSettings(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to get settings")
		return
	}
	jsonResponse(w, http.StatusOK, settings)
}

// Save handles PUT /api/settings.
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var settings map[string]string
	if err := decodeJSON(r, &settings); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SaveSettings(r.Context(), h.DB, settings); err != nil {
		storeError(w, err, "failed to save settings")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("settings saved", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "settings saved"})
}

// Reset handles POST /api/settings/reset.
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := store.ResetSettings(r.Context(), h.DB); err != nil {
		storeError(w, err, "failed to reset settings")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "settings reset to defaults"})
}

// Backup handles POST /api/backup.
func (h *SettingsHandler) Backup(w http.ResponseWriter, r *http.Request) {
	path, err := store.BackupDatabase(r.Context(), h.DB, h.BackupDir)
	if err != nil {
		storeError(w, err, "failed to create backup")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("backup created", "user", claims.Username, "path", path)
	jsonResponse(w, http.StatusOK, map[string]string{
		"message": "backup created",
		"path":    path,
	})
}
