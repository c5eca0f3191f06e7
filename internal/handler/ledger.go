package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/points-ledger/internal/apperror"
	"github.com/sakif/points-ledger/internal/auth"
	"github.com/sakif/points-ledger/internal/model"
	"github.com/sakif/points-ledger/internal/service"
)

// LedgerHandler exposes the dashboard and transaction endpoints.
// Both routes sit behind RequireAuth, so the acting user always comes from
// the validated session — never from the request body.
type LedgerHandler struct {
	ledger *service.LedgerService
	logger *slog.Logger
}

// NewLedgerHandler creates a LedgerHandler.
func NewLedgerHandler(ledger *service.LedgerService, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledger: ledger,
		logger: logger,
	}
}

// HandleDashboard returns the signed-in user's dashboard.
//
// HTTP: GET /api/dashboard
// Auth: required
//
// RESPONSE: {"username":"kid1","pointsBalance":30,"isAdmin":false,
//            "transactions":[...newest first...]}
// plus a "users" array of all other accounts when the caller is an admin.
func (h *LedgerHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Should never happen on a RequireAuth-protected route, but be safe.
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	dashboard, err := h.ledger.LoadDashboard(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// transactionRequest is the body of POST /api/transactions.
//
// TargetUserID is optional — empty means "my own balance". Only admins may
// set it to another user's ID; the service enforces that, not this handler.
type transactionRequest struct {
	TargetUserID string `json:"targetUserId"`
	Kind         string `json:"kind"`
	Amount       int64  `json:"amount"`
	Description  string `json:"description"`
}

// HandleCreateTransaction records a deposit or withdrawal.
//
// HTTP: POST /api/transactions
// Auth: required
// BODY: {"kind":"deposit","amount":50,"description":"allowance"}
//   or  {"targetUserId":"<id>","kind":"withdraw","amount":20,"description":"toy"}
//
// 201 with the recorded transaction (signed amount) on success.
//
// WHY DisallowUnknownFields?
// A client sending {"amout": 50} would otherwise silently become amount 0
// and fail with a confusing "must be positive" message. Rejecting unknown
// fields turns the typo into an immediate 400.
func (h *LedgerHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req transactionRequest
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("invalid transaction JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	tx, err := h.ledger.ApplyTransaction(
		r.Context(),
		userID,
		req.TargetUserID,
		model.TransactionKind(req.Kind),
		req.Amount,
		req.Description,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tx)
}
