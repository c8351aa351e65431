package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvidmar/inventra/internal/db"
)

func TestBackupDatabase(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID := testUser(t, database)

	if _, err := CreateItem(ctx, database, userID, ItemDraft{Name: "Widget", Quantity: intPtr(3)}); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "backups")
	path, err := BackupDatabase(ctx, database, dir)
	if err != nil {
		t.Fatalf("BackupDatabase: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat backup: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty backup file")
	}

	// The snapshot is a full database: open it and read the item back.
	snapshot, err := db.Open(path, 1)
	if err != nil {
		t.Fatalf("opening backup: %v", err)
	}
	defer snapshot.Close()

	items, _, err := ListItems(ctx, snapshot, ItemQuery{})
	if err != nil {
		t.Fatalf("ListItems on backup: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Widget" {
		t.Errorf("expected Widget in backup, got %v", items)
	}
}
