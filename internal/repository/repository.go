package repository

import (
	"context"

	"github.com/sakif/points-ledger/internal/model"
)

// UserRepository is the persistence interface for accounts.
//
// GetByUsername returns apperror.ErrNotFound when no account has that
// username. If a hand-edited database holds duplicates, the oldest row wins
// (ordered by created_at, then id) so sign-in stays deterministic.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// ListOthers returns a summary of every account except excludeID,
	// ordered by creation time. Used for the admin dashboard.
	ListOthers(ctx context.Context, excludeID string) ([]model.UserSummary, error)
}

// TransactionRepository is the persistence interface for the ledger.
type TransactionRepository interface {
	// Apply atomically inserts the transaction row AND adds tx.Amount to the
	// owning user's points_balance. Both writes commit together or neither
	// does. Returns apperror.ErrNotFound if tx.UserID does not exist; in that
	// case nothing is written.
	Apply(ctx context.Context, tx *model.Transaction) error
	// ListByUser returns all transactions for a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Transaction, error)
}
