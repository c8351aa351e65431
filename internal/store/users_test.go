package store

import (
	"context"
	"errors"
	"testing"

	"github.com/mvidmar/inventra/internal/db"
	"github.com/mvidmar/inventra/internal/model"
)

func TestCreateUserDuplicateUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "alice", "hash", model.RoleUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err := CreateUser(ctx, database, "alice", "hash", model.RoleUser)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestDeleteUserFreesUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "alice", "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	// Soft-deleted usernames can be reused.
	if _, err := CreateUser(ctx, database, "alice", "hash2", model.RoleUser); err != nil {
		t.Errorf("expected username to be reusable, got %v", err)
	}

	users, _ := ListUsers(ctx, database)
	if len(users) != 1 {
		t.Errorf("expected 1 active user, got %d", len(users))
	}
}

func TestUpdateUserRole(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "alice", "hash", model.RoleUser)

	if err := UpdateUserRole(ctx, database, user.ID, model.RoleManager); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.Role != model.RoleManager {
		t.Errorf("expected manager role, got %q", got.Role)
	}

	if err := UpdateUserRole(ctx, database, 404, model.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetUserByUsernameIncludesDeleted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "alice", "hash", model.RoleUser)
	DeleteUser(ctx, database, user.ID)

	got, err := GetUserByUsername(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got == nil {
		t.Fatal("expected soft-deleted user to be visible by username")
	}
	if got.DeletedAt == nil {
		t.Error("expected deleted_at to be set")
	}
}
