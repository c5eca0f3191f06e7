// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept primitives and a context, never *http.Request, and they
// return domain errors (apperror), never HTTP status codes. The same
// AuthService could sit behind a CLI or a gRPC server without changing a line.
//
// DEPENDENCY INJECTION:
// Each service takes repository INTERFACES, not *sqlite.DB. Tests inject
// in-memory mocks; main injects SQLite. The service can't tell the difference.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/points-ledger/internal/apperror"
	"github.com/sakif/points-ledger/internal/auth"
	"github.com/sakif/points-ledger/internal/model"
	"github.com/sakif/points-ledger/internal/repository"
)

// MaxUsernameLength is a storage sanity cap, not a policy choice — any
// non-empty username below it is accepted.
const MaxUsernameLength = 50

// AuthService handles account creation and credential verification.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// CreateAccount registers a new user with a zero balance and no admin rights.
//
// USERNAME UNIQUENESS:
// The schema doesn't enforce it, so the service does: a pre-insert lookup
// turns a collision into a conflict error before anything is written. Two
// accounts sharing a username would make sign-in ambiguous, so sign-up is
// where the door closes.
//
// The plaintext password never reaches the repository — it is bcrypt-hashed
// here and only the hash is stored.
func (s *AuthService) CreateAccount(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	// Any non-empty password is accepted — no strength rules. The account
	// model here is a family points ledger, not a bank login.
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	// Uniqueness check: we EXPECT NotFound here. Finding a user means the
	// name is taken; any other error is a real store failure.
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil, apperror.Conflict("username", username)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking username %q: %w", username, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("failed to create account",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating account: %w", err)
	}

	s.logger.Info("account created",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Authenticate verifies a username/password pair and returns the matching
// user.
//
// Both failure modes — unknown username and wrong password — collapse into
// the same unauthorized error, so a caller probing for valid usernames
// learns nothing from the response.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("looking up user %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Info("sign-in rejected", slog.String("username", username))
		return nil, apperror.Unauthorized("invalid credentials")
	}

	s.logger.Info("user signed in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}
