package model

import "time"

// Transaction is one recorded balance-changing event. The ledger is
// append-only: rows are inserted exactly once and never updated or deleted.
//
// Amount is SIGNED: positive for a deposit, negative for a withdrawal.
// The sign is baked in at creation time so that a user's balance is always
// the plain sum of their transaction amounts — no per-row "type" column to
// interpret when auditing the ledger.
type Transaction struct {
	ID          string    `json:"id"          db:"id"`
	UserID      string    `json:"userId"      db:"user_id"`
	Amount      int64     `json:"amount"      db:"amount"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}

// TransactionKind is the caller-facing direction of a transaction.
// It exists only at the API boundary — by the time a Transaction row is
// built, the kind has been folded into the sign of Amount.
type TransactionKind string

const (
	KindDeposit  TransactionKind = "deposit"
	KindWithdraw TransactionKind = "withdraw"
)
