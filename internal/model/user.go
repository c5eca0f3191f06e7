// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// WHY PasswordHash AND NOT Password?
// The database column is called "password" (the schema predates hashing), but
// what we store in it is a bcrypt hash, never the plaintext. Naming the field
// PasswordHash in Go makes it impossible to confuse the two at a call site.
//
// The `json:"-"` tag on PasswordHash means the field is NEVER serialized.
// A User struct can be written straight into an API response without leaking
// the credential hash.
type User struct {
	ID            string    `json:"id"            db:"id"`
	Username      string    `json:"username"      db:"username"`
	PasswordHash  string    `json:"-"             db:"password"`
	IsAdmin       bool      `json:"isAdmin"       db:"is_admin"`
	PointsBalance int64     `json:"pointsBalance" db:"points_balance"`
	CreatedAt     time.Time `json:"createdAt"     db:"created_at"`
}

// UserSummary is the subset of User that an admin sees for every other
// account: enough to pick a target for a balance adjustment, nothing more.
// No credential hash, no timestamps.
type UserSummary struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	PointsBalance int64  `json:"pointsBalance"`
}

// Dashboard is everything a signed-in user needs to render their view:
// their own profile, their full transaction history (newest first), and —
// only when IsAdmin is true — a summary of every other account.
//
// Users is nil for non-admins; the `omitempty` tag keeps it out of the JSON
// entirely, so a non-admin response carries no hint of other accounts.
type Dashboard struct {
	Username      string        `json:"username"`
	PointsBalance int64         `json:"pointsBalance"`
	IsAdmin       bool          `json:"isAdmin"`
	Transactions  []Transaction `json:"transactions"`
	Users         []UserSummary `json:"users,omitempty"`
}
