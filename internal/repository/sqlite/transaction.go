package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/points-ledger/internal/apperror"
	"github.com/sakif/points-ledger/internal/model"
	"github.com/sakif/points-ledger/internal/repository"
)

var _ repository.TransactionRepository = (*DB)(nil)

// Apply records a ledger entry: it inserts the transaction row and adds
// tx.Amount to the owning user's points_balance in a single database
// transaction.
//
// WHY A TRANSACTION?
// The invariant of the whole system is points_balance == SUM(amount) over
// the user's rows. That only holds if the two writes are all-or-nothing: a
// crash (or a missing user) between one write and the other must leave no
// trace of either. BeginTx/Commit gives us exactly that, and SQLite's
// isolation means a concurrent read sees the pre-commit or post-commit
// state, never the row-without-balance in between.
//
// THE defer tx.Rollback() PATTERN:
// Rollback after a successful Commit is a harmless no-op (it returns
// sql.ErrTxDone, which we ignore). Deferring it right after BeginTx means
// every early return — FK violation, missing user, scan error — unwinds the
// transaction without each call site having to remember to.
func (db *DB) Apply(ctx context.Context, tx *model.Transaction) error {
	tx.ID = xid.New().String()
	tx.CreatedAt = time.Now()

	dbTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	// The UPDATE runs first: RowsAffected doubles as the existence check for
	// the target user, so a bad ID becomes NotFound before anything is
	// inserted. (The FOREIGN KEY on transactions.user_id would catch it too,
	// but as an opaque constraint error.)
	result, err := dbTx.ExecContext(ctx,
		`UPDATE users SET points_balance = points_balance + ? WHERE id = ?`,
		tx.Amount,
		tx.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating balance for user %s: %w", tx.UserID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// No such user — the deferred Rollback unwinds the open transaction.
		return apperror.NotFound("user", tx.UserID)
	}

	_, err = dbTx.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, amount, description, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		tx.ID,
		tx.UserID,
		tx.Amount,
		tx.Description,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting transaction for user %s: %w", tx.UserID, err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction for user %s: %w", tx.UserID, err)
	}

	return nil
}

// ListByUser returns all transactions for a user, newest first.
//
// created_at is written by Apply with Go's full time precision, so the
// DESC ordering is stable even for entries recorded within the same second.
func (db *DB) ListByUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, amount, description, created_at
		 FROM transactions
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating transactions: %w", err)
	}

	return transactions, nil
}
