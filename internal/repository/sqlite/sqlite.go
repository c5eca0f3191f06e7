// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for a
// single-server app where the whole state is one ledger file.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	// BLANK IMPORT:
	// `_ "modernc.org/sqlite"` is a side-effect only import. The package's
	// init() registers itself with database/sql as a driver named "sqlite",
	// after which sql.Open("sqlite", ...) knows how to talk to SQLite.
	_ "modernc.org/sqlite"
)

// AdminUsername is the reserved account seeded at first boot.
const AdminUsername = "admin"

// DB wraps a sql.DB connection pool and provides repository methods.
// It implements both repository.UserRepository and
// repository.TransactionRepository.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/ledger.db" → file-based database (persistent)
//   - ":memory:"       → in-memory database (great for tests, lost on close)
//
// sql.Open() does NOT actually open a connection — it creates a pool
// manager. We call Ping() to force an immediate connection so a bad path or
// permissions issue surfaces here rather than on the first query.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection, total. SQLite allows a single writer at a time anyway,
	// and a pool of one means the PRAGMAs below apply to every statement —
	// and that ":memory:" databases behave (each new pooled connection to
	// ":memory:" would otherwise be a separate, empty database).
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write transaction is in
	// flight — a reader sees either the pre-commit or post-commit state,
	// never a half-applied one.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (backwards compatibility).
	// We need them ON: transactions.user_id references users.id, and the
	// constraint is what guarantees a ledger row can't exist for a user
	// that doesn't.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer Close() wherever
// New() is called — it flushes the WAL and releases the file lock.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema.
//
// CREATE TABLE IF NOT EXISTS makes this idempotent — safe to run on every
// startup against both a fresh file and an existing one.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id             TEXT PRIMARY KEY,
			username       TEXT NOT NULL,
			password       TEXT NOT NULL,
			is_admin       BOOLEAN DEFAULT FALSE,
			points_balance INTEGER DEFAULT 0,
			created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			amount      INTEGER NOT NULL,
			description TEXT NOT NULL,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(user_id) REFERENCES users(id)
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating transactions table: %w", err)
	}

	return nil
}

// SeedAdmin inserts the reserved admin account if it doesn't exist yet.
//
// passwordHash is the bcrypt hash of the admin password — hashing is the
// auth package's job, so the repository never sees a plaintext credential.
//
// IDEMPOTENT BY CHECK-THEN-INSERT:
// We look the username up first instead of relying on INSERT OR IGNORE,
// because the users table has no UNIQUE constraint on username — OR IGNORE
// would happily insert a second admin row. Re-running never creates a
// duplicate and never touches an existing admin (so a changed admin
// password survives restarts).
func (db *DB) SeedAdmin(passwordHash string) error {
	var existing string
	err := db.conn.QueryRow(
		`SELECT id FROM users WHERE username = ? ORDER BY created_at, id LIMIT 1`,
		AdminUsername,
	).Scan(&existing)

	if err == nil {
		return nil // admin already seeded
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: checking for admin account: %w", err)
	}

	_, err = db.conn.Exec(
		`INSERT INTO users (id, username, password, is_admin, points_balance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		xid.New().String(),
		AdminUsername,
		passwordHash,
		true,
		0,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: seeding admin account: %w", err)
	}

	return nil
}
