package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/points-ledger/internal/apperror"
	"github.com/sakif/points-ledger/internal/auth"
	"github.com/sakif/points-ledger/internal/service"
)

// sessionMaxAge mirrors the JWT lifetime so the cookie and the token inside
// it expire together.
const sessionMaxAge = 24 * time.Hour

// AuthHandler manages sign-up, sign-in and sign-out.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignUp  → create the account, issue the session cookie
//   - HandleSignIn  → verify credentials, issue the session cookie
//   - HandleSignOut → clear the session cookie
//
// The handler owns everything cookie-shaped; the AuthService it delegates to
// knows nothing about HTTP.
type AuthHandler struct {
	authService *service.AuthService
	tokens      *auth.TokenService
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(
	authService *service.AuthService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		logger:      logger,
	}
}

// credentialsRequest is the shared body of sign-up and sign-in.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleSignUp creates a new account and signs the user straight in.
//
// HTTP: POST /api/signup
// BODY: {"username": "kid1", "password": "pw"}
//
// 201 with the new user on success; 409 if the username is taken.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	user, err := h.authService.CreateAccount(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.setSession(w, user.ID); err != nil {
		h.logger.Error("sign-up: token generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleSignIn verifies credentials and issues a session cookie.
//
// HTTP: POST /api/signin
// BODY: {"username": "kid1", "password": "pw"}
//
// 200 with the user on success; 401 on any credential mismatch.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	user, err := h.authService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.setSession(w, user.ID); err != nil {
		h.logger.Error("sign-in: token generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleSignOut clears the session cookie.
//
// HTTP: POST /api/signout
//
// WHY POST AND NOT GET?
// Sign-out is a state-changing operation. A GET would be vulnerable to CSRF
// and to browsers pre-fetching the URL. Since sessions are stateless JWTs,
// "sign out" just means deleting the client-side cookie — the token remains
// technically valid until expiry, but the browser can no longer send it.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// setSession issues a JWT for userID and sets it as the session cookie.
//
// HttpOnly = JavaScript cannot read the cookie (XSS protection).
// SameSite=Lax = sent on top-level navigations but not cross-site POSTs.
// Secure should be true in production (HTTPS only); left false for local dev.
func (h *AuthHandler) setSession(w http.ResponseWriter, userID string) error {
	tokenStr, err := h.tokens.Generate(userID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // Uncomment in production (requires HTTPS)
	})

	return nil
}
