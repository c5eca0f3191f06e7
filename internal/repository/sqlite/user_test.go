package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/points-ledger/internal/apperror"
	"github.com/sakif/points-ledger/internal/model"
)

// newTestDB returns a fresh in-memory database with the schema applied.
// t.Cleanup closes it when the test (or subtest) finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
// The "hash" stored here is a placeholder — bcrypt is the auth package's
// concern, the repository just stores whatever string it's given.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		PasswordHash: "$2a$04$fakehashforrepositorytests",
	}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Username:     "kid1",
		PasswordHash: "some-hash",
	}

	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Verify the user was modified in-place (pointer receiver)
	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
	if user.IsAdmin {
		t.Error("Create() must never produce an admin account")
	}
	if user.PointsBalance != 0 {
		t.Errorf("PointsBalance = %d, want 0 for a new account", user.PointsBalance)
	}
}

func TestUserCreate_IgnoresCallerBalanceAndAdmin(t *testing.T) {
	db := newTestDB(t)

	// A caller trying to smuggle in a balance or admin flag gets neither.
	user := &model.User{
		Username:      "sneaky",
		PasswordHash:  "hash",
		IsAdmin:       true,
		PointsBalance: 9999,
	}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	stored, err := db.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.IsAdmin {
		t.Error("stored user should not be admin")
	}
	if stored.PointsBalance != 0 {
		t.Errorf("stored balance = %d, want 0", stored.PointsBalance)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "getbyid_user")

	found, err := db.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.Username != "getbyid_user" {
		t.Errorf("Username = %q, want %q", found.Username, "getbyid_user")
	}
	if found.PasswordHash != created.PasswordHash {
		t.Error("PasswordHash not round-tripped")
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nonexistent-id")
	if err == nil {
		t.Fatal("GetByID() should have returned an error for nonexistent ID")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByUsername(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "lookup_user")

	found, err := db.GetByUsername(context.Background(), "lookup_user")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
}

func TestUserGetByUsername_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByUsername() error = %v, want ErrNotFound", err)
	}
}

// TestUserGetByUsername_DuplicatesPickOldest: the schema has no UNIQUE
// constraint on username, so a hand-edited database can contain duplicates.
// The lookup must deterministically return the oldest row.
func TestUserGetByUsername_DuplicatesPickOldest(t *testing.T) {
	db := newTestDB(t)

	first := createTestUser(t, db, "twin")
	createTestUser(t, db, "twin")

	found, err := db.GetByUsername(context.Background(), "twin")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if found.ID != first.ID {
		t.Errorf("GetByUsername() returned %q, want the oldest row %q", found.ID, first.ID)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestListOthers(t *testing.T) {
	db := newTestDB(t)

	admin := createTestUser(t, db, "boss")
	createTestUser(t, db, "kid1")
	createTestUser(t, db, "kid2")

	others, err := db.ListOthers(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("ListOthers() error = %v", err)
	}

	if len(others) != 2 {
		t.Fatalf("ListOthers() returned %d users, want 2", len(others))
	}
	for _, u := range others {
		if u.ID == admin.ID {
			t.Error("ListOthers() must exclude the requesting user")
		}
	}
	// Ordered by creation time
	if others[0].Username != "kid1" || others[1].Username != "kid2" {
		t.Errorf("ListOthers() order = [%s, %s], want [kid1, kid2]",
			others[0].Username, others[1].Username)
	}
}

func TestListOthers_Empty(t *testing.T) {
	db := newTestDB(t)
	only := createTestUser(t, db, "alone")

	others, err := db.ListOthers(context.Background(), only.ID)
	if err != nil {
		t.Fatalf("ListOthers() error = %v", err)
	}
	if len(others) != 0 {
		t.Errorf("ListOthers() returned %d users, want 0", len(others))
	}
}

// =========================================================================
// BOOTSTRAP TESTS
// =========================================================================

func TestSeedAdmin(t *testing.T) {
	db := newTestDB(t)

	if err := db.SeedAdmin("admin-hash"); err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}

	admin, err := db.GetByUsername(context.Background(), AdminUsername)
	if err != nil {
		t.Fatalf("seeded admin not found: %v", err)
	}
	if !admin.IsAdmin {
		t.Error("seeded admin must have IsAdmin = true")
	}
	if admin.PointsBalance != 0 {
		t.Errorf("seeded admin balance = %d, want 0", admin.PointsBalance)
	}
	if admin.PasswordHash != "admin-hash" {
		t.Errorf("seeded admin hash = %q, want %q", admin.PasswordHash, "admin-hash")
	}
}

// TestSeedAdmin_Idempotent: re-running bootstrap must not create a second
// admin row or alter the existing one.
func TestSeedAdmin_Idempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.SeedAdmin("original-hash"); err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	first, _ := db.GetByUsername(context.Background(), AdminUsername)

	// Second run with a DIFFERENT hash — must be a no-op.
	if err := db.SeedAdmin("different-hash"); err != nil {
		t.Fatalf("second SeedAdmin() error = %v", err)
	}

	again, err := db.GetByUsername(context.Background(), AdminUsername)
	if err != nil {
		t.Fatalf("admin not found after second seed: %v", err)
	}
	if again.ID != first.ID {
		t.Error("second SeedAdmin() created a new admin row")
	}
	if again.PasswordHash != "original-hash" {
		t.Errorf("second SeedAdmin() altered the hash to %q", again.PasswordHash)
	}

	// And there is exactly one admin row in total.
	others, err := db.ListOthers(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("ListOthers() error = %v", err)
	}
	if len(others) != 0 {
		t.Errorf("found %d unexpected extra rows after double seed", len(others))
	}
}
