package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// DefaultSettings are the system settings before anyone saves any.
var DefaultSettings = map[string]string{
	"system_name": "Inventra",
	"currency":    "EUR",
	"timezone":    "UTC",
	"date_format": "DD/MM/YYYY",
}

// GetSettings returns all system settings, with defaults filled in for
// keys that were never saved.
func GetSettings(ctx context.Context, db *sql.DB) (map[string]string, error) {
	settings := make(map[string]string, len(DefaultSettings))
	for k, v := range DefaultSettings {
		settings[k] = v
	}

	rows, err := db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		// Internal keys (like jwt_secret) are not settings.
		if _, ok := DefaultSettings[key]; ok {
			settings[key] = value
		}
	}
	return settings, rows.Err()
}

// SaveSettings upserts the given settings. Keys outside the known set are
// ignored, not rejected.
func SaveSettings(ctx context.Context, db *sql.DB, settings map[string]string) error {
	for key, value := range settings {
		if _, ok := DefaultSettings[key]; !ok {
			continue
		}
		_, err := db.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
			key, value,
		)
		if err != nil {
			return fmt.Errorf("saving setting %q: %w", key, err)
		}
	}
	return nil
}

// ResetSettings deletes all saved settings, reverting to defaults.
func ResetSettings(ctx context.Context, db *sql.DB) error {
	for key := range DefaultSettings {
		if _, err := db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
			return fmt.Errorf("resetting setting %q: %w", key, err)
		}
	}
	return nil
}

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('jwt_secret', ?)`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'jwt_secret'`,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}

	return secret, nil
}
