package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/points-ledger/internal/apperror"
	"github.com/sakif/points-ledger/internal/model"
)

// applyTestTransaction records a signed amount and fails the test on error.
func applyTestTransaction(t *testing.T, db *DB, userID string, amount int64, description string) *model.Transaction {
	t.Helper()
	tx := &model.Transaction{
		UserID:      userID,
		Amount:      amount,
		Description: description,
	}
	if err := db.Apply(context.Background(), tx); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	return tx
}

// balanceOf re-reads the user row so tests assert against the stored
// balance, not an in-memory copy.
func balanceOf(t *testing.T, db *DB, userID string) int64 {
	t.Helper()
	u, err := db.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	return u.PointsBalance
}

// =========================================================================
// APPLY TESTS
// =========================================================================

func TestApply_SetsIDAndTimestamp(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "kid1")

	tx := applyTestTransaction(t, db, user.ID, 50, "allowance")

	if tx.ID == "" {
		t.Error("Apply() did not set tx.ID")
	}
	if tx.CreatedAt.IsZero() {
		t.Error("Apply() did not set tx.CreatedAt")
	}
}

func TestApply_UpdatesBalance(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "kid1")

	applyTestTransaction(t, db, user.ID, 50, "allowance")
	if got := balanceOf(t, db, user.ID); got != 50 {
		t.Errorf("balance after deposit = %d, want 50", got)
	}

	applyTestTransaction(t, db, user.ID, -20, "toy")
	if got := balanceOf(t, db, user.ID); got != 30 {
		t.Errorf("balance after withdrawal = %d, want 30", got)
	}
}

// TestApply_BalanceEqualsSum: the core invariant — after any sequence of
// applied transactions, the stored balance equals the sum of the stored
// amounts.
func TestApply_BalanceEqualsSum(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "kid1")

	amounts := []int64{100, -30, 7, -7, 250, -99}
	var want int64
	for _, a := range amounts {
		applyTestTransaction(t, db, user.ID, a, "entry")
		want += a
	}

	if got := balanceOf(t, db, user.ID); got != want {
		t.Errorf("balance = %d, want sum of amounts %d", got, want)
	}

	rows, err := db.ListByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	var sum int64
	for _, r := range rows {
		sum += r.Amount
	}
	if sum != want {
		t.Errorf("sum of stored rows = %d, want %d", sum, want)
	}
}

// TestApply_UnknownUserAllOrNothing: applying against a nonexistent user
// must fail with NotFound and leave NO transaction row behind — the insert
// and the balance update commit together or not at all.
func TestApply_UnknownUserAllOrNothing(t *testing.T) {
	db := newTestDB(t)

	tx := &model.Transaction{
		UserID:      "no-such-user",
		Amount:      50,
		Description: "ghost deposit",
	}
	err := db.Apply(context.Background(), tx)
	if err == nil {
		t.Fatal("Apply() should fail for an unknown user")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Apply() error = %v, want ErrNotFound", err)
	}

	rows, err := db.ListByUser(context.Background(), "no-such-user")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("found %d orphaned transaction rows after rollback, want 0", len(rows))
	}
}

// TestApply_FaultBetweenWritesRollsBack: simulate a store fault BETWEEN the
// two writes — the balance UPDATE succeeds, then the row INSERT blows up.
// All-or-nothing means the rollback must also undo the already-applied
// balance change: afterwards the balance is unchanged and no row is visible.
//
// A BEFORE INSERT trigger is the cleanest way to inject the fault: it fails
// exactly the second statement of Apply's transaction without touching any
// Go code.
func TestApply_FaultBetweenWritesRollsBack(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "kid1")

	// A real entry first, so the test can show the balance reverts to a
	// non-trivial value rather than just staying zero.
	applyTestTransaction(t, db, user.ID, 50, "allowance")

	_, err := db.conn.Exec(`
		CREATE TRIGGER simulate_fault BEFORE INSERT ON transactions
		BEGIN
			SELECT RAISE(ABORT, 'simulated store fault');
		END`)
	if err != nil {
		t.Fatalf("creating fault trigger: %v", err)
	}

	tx := &model.Transaction{
		UserID:      user.ID,
		Amount:      25,
		Description: "doomed",
	}
	if err := db.Apply(context.Background(), tx); err == nil {
		t.Fatal("Apply() should fail when the insert faults")
	}

	if got := balanceOf(t, db, user.ID); got != 50 {
		t.Errorf("balance = %d after failed Apply, want 50 (update rolled back)", got)
	}

	rows, err := db.ListByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("found %d transaction rows after failed Apply, want 1", len(rows))
	}
	if rows[0].Description != "allowance" {
		t.Errorf("surviving row = %q, want the original %q", rows[0].Description, "allowance")
	}
}

// TestApply_DoesNotTouchOtherUsers: a transaction against one user must not
// move anyone else's balance.
func TestApply_DoesNotTouchOtherUsers(t *testing.T) {
	db := newTestDB(t)
	kid1 := createTestUser(t, db, "kid1")
	kid2 := createTestUser(t, db, "kid2")

	applyTestTransaction(t, db, kid1.ID, 50, "allowance")

	if got := balanceOf(t, db, kid2.ID); got != 0 {
		t.Errorf("kid2 balance = %d, want 0", got)
	}
	rows, _ := db.ListByUser(context.Background(), kid2.ID)
	if len(rows) != 0 {
		t.Errorf("kid2 has %d transaction rows, want 0", len(rows))
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestListByUser_Empty(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "kid1")

	rows, err := db.ListByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("ListByUser() returned %d rows, want 0", len(rows))
	}
}

// TestListByUser_NewestFirst mirrors the classic scenario: deposit 50
// "allowance", withdraw 20 "toy" — the toy must come back first.
func TestListByUser_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "kid1")

	applyTestTransaction(t, db, user.ID, 50, "allowance")
	applyTestTransaction(t, db, user.ID, -20, "toy")

	rows, err := db.ListByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListByUser() returned %d rows, want 2", len(rows))
	}

	if rows[0].Description != "toy" || rows[0].Amount != -20 {
		t.Errorf("rows[0] = {%q, %d}, want {\"toy\", -20}", rows[0].Description, rows[0].Amount)
	}
	if rows[1].Description != "allowance" || rows[1].Amount != 50 {
		t.Errorf("rows[1] = {%q, %d}, want {\"allowance\", 50}", rows[1].Description, rows[1].Amount)
	}

	if got := balanceOf(t, db, user.ID); got != 30 {
		t.Errorf("final balance = %d, want 30", got)
	}
}

func TestListByUser_OnlyOwnRows(t *testing.T) {
	db := newTestDB(t)
	kid1 := createTestUser(t, db, "kid1")
	kid2 := createTestUser(t, db, "kid2")

	applyTestTransaction(t, db, kid1.ID, 10, "mine")
	applyTestTransaction(t, db, kid2.ID, 99, "theirs")

	rows, err := db.ListByUser(context.Background(), kid1.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("ListByUser() returned %d rows, want 1", len(rows))
	}
	if rows[0].Description != "mine" {
		t.Errorf("got someone else's transaction: %q", rows[0].Description)
	}
}
