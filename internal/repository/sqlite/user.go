package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/points-ledger/internal/apperror"
	"github.com/sakif/points-ledger/internal/model"
	"github.com/sakif/points-ledger/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y doesn't implement X, the compiler errors immediately instead of at
// some distant call site. A Go best practice for any interface implementation.
var _ repository.UserRepository = (*DB)(nil)

// Create inserts a new user row.
//
// The caller provides Username and PasswordHash; this method generates the
// ID (xid: 20 chars, URL-safe, sortable by creation time) and the creation
// timestamp, and writes them back through the pointer so the caller sees
// the canonical record.
//
// New accounts always start with a zero balance and no admin rights — the
// only admin row is the one seeded at bootstrap, and no operation ever
// flips is_admin afterwards.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()
	user.IsAdmin = false
	user.PointsBalance = 0

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password, is_admin, points_balance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.IsAdmin,
		user.PointsBalance,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password, is_admin, points_balance, created_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.PointsBalance,
		&u.CreatedAt,
	)
	if err != nil {
		// sql.ErrNoRows isn't really an error — it means "no matching row".
		// Translate it to the domain's NotFound so handlers can return 404.
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by username.
//
// The schema carries no UNIQUE constraint on username (uniqueness is
// enforced at sign-up), so ORDER BY created_at, id pins the result to the
// oldest row should a hand-edited database ever contain duplicates.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password, is_admin, points_balance, created_at
		 FROM users WHERE username = ?
		 ORDER BY created_at, id
		 LIMIT 1`,
		username,
	).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.PointsBalance,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user by username %q: %w", username, err)
	}

	return &u, nil
}

// ListOthers returns a summary of every account except excludeID, ordered by
// creation time. Feeds the admin dashboard's user table.
func (db *DB) ListOthers(ctx context.Context, excludeID string) ([]model.UserSummary, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, username, points_balance
		 FROM users
		 WHERE id != ?
		 ORDER BY created_at, id`,
		excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	// sql.Rows holds a pool connection — always close it, or the pool leaks.
	defer rows.Close()

	users := []model.UserSummary{}
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.PointsBalance); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}

	// rows.Err() catches errors that happened DURING iteration.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}
