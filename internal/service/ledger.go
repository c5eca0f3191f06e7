package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/points-ledger/internal/apperror"
	"github.com/sakif/points-ledger/internal/model"
	"github.com/sakif/points-ledger/internal/repository"
)

const MaxDescriptionLength = 200

// LedgerService owns the two core operations of the system: assembling a
// user's dashboard and applying a balance-changing transaction.
type LedgerService struct {
	users        repository.UserRepository
	transactions repository.TransactionRepository
	logger       *slog.Logger
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(
	users repository.UserRepository,
	transactions repository.TransactionRepository,
	logger *slog.Logger,
) *LedgerService {
	return &LedgerService{
		users:        users,
		transactions: transactions,
		logger:       logger,
	}
}

// LoadDashboard returns everything the signed-in user's view needs: profile,
// transaction history (newest first), and — for admins only — a summary of
// every other account.
//
// Read-only: no call path from here mutates the store.
func (s *LedgerService) LoadDashboard(ctx context.Context, userID string) (*model.Dashboard, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err // already a proper apperror (NotFound) or store failure
	}

	transactions, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list transactions",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	dashboard := &model.Dashboard{
		Username:      user.Username,
		PointsBalance: user.PointsBalance,
		IsAdmin:       user.IsAdmin,
		Transactions:  transactions,
	}

	// Only admins see other accounts. For everyone else Users stays nil and
	// is omitted from the JSON entirely.
	if user.IsAdmin {
		others, err := s.users.ListOthers(ctx, userID)
		if err != nil {
			s.logger.Error("failed to list users",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("listing users: %w", err)
		}
		dashboard.Users = others
	}

	return dashboard, nil
}

// ApplyTransaction validates and records a deposit or withdrawal.
//
// targetUserID defaults to actingUserID when empty (the everyday case: a
// user moving their own points).
//
// AUTHORIZATION IS CHECKED HERE, NOT IN THE UI:
// Hiding a button is not a security boundary. When the acting user targets
// someone else's balance, this method demands is_admin on the ACTING user
// and rejects with a forbidden error otherwise — regardless of what the
// client claimed.
//
// All input validation happens before any write: a rejected call leaves the
// store untouched. The insert-row-plus-update-balance pair is atomic inside
// the repository's Apply.
func (s *LedgerService) ApplyTransaction(
	ctx context.Context,
	actingUserID, targetUserID string,
	kind model.TransactionKind,
	amount int64,
	description string,
) (*model.Transaction, error) {
	actingUserID = strings.TrimSpace(actingUserID)
	if actingUserID == "" {
		return nil, apperror.ValidationFailed("actingUserId", "acting user ID is required")
	}

	targetUserID = strings.TrimSpace(targetUserID)
	if targetUserID == "" {
		targetUserID = actingUserID
	}

	if kind != model.KindDeposit && kind != model.KindWithdraw {
		return nil, apperror.ValidationFailed("kind",
			fmt.Sprintf("kind must be %q or %q", model.KindDeposit, model.KindWithdraw))
	}
	if amount <= 0 {
		return nil, apperror.ValidationFailed("amount", "amount must be a positive integer")
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperror.ValidationFailed("description", "description is required")
	}
	if len(description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}

	if targetUserID != actingUserID {
		actor, err := s.users.GetByID(ctx, actingUserID)
		if err != nil {
			return nil, err
		}
		if !actor.IsAdmin {
			s.logger.Warn("cross-user transaction rejected",
				slog.String("actingUserID", actingUserID),
				slog.String("targetUserID", targetUserID),
			)
			return nil, apperror.Forbidden("admin rights required to adjust another user's balance")
		}
	}

	// Fold the direction into the sign. From here on the ledger only knows
	// signed amounts.
	signed := amount
	if kind == model.KindWithdraw {
		signed = -amount
	}

	tx := &model.Transaction{
		UserID:      targetUserID,
		Amount:      signed,
		Description: description,
	}

	if err := s.transactions.Apply(ctx, tx); err != nil {
		// Don't log NotFound as an error — it's a normal "no such target"
		// outcome. Only real store failures are worth an error line.
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to apply transaction",
			slog.String("targetUserID", targetUserID),
			slog.Int64("amount", signed),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("applying transaction: %w", err)
	}

	s.logger.Info("transaction applied",
		slog.String("transactionID", tx.ID),
		slog.String("actingUserID", actingUserID),
		slog.String("targetUserID", targetUserID),
		slog.Int64("amount", signed),
	)

	return tx, nil
}
