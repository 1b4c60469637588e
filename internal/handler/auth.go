package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/learninfive/internal/apperror"
	"github.com/sakif/learninfive/internal/auth"
	"github.com/sakif/learninfive/internal/model"
	"github.com/sakif/learninfive/internal/service"
)

// LoginFailedMessage is the one answer to any failed login, whatever the
// cause.
const LoginFailedMessage = "Incorrect email or password"

// AuthHandler serves registration, login and the current-user endpoint.
//
//   - HandleRegister → POST /api/auth/register
//   - HandleLogin    → POST /api/auth/login
//   - HandleMe       → GET  /api/auth/me (behind auth.RequireAuth)
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   svc,
		logger: logger,
	}
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        *model.User `json:"user"`
}

func newTokenResponse(res *service.AuthResult) TokenResponse {
	return TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresAt:   res.ExpiresAt,
		User:        res.User,
	}
}

// HandleRegister creates an account and logs it straight in.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.IssueToken(user)
	if err != nil {
		h.logger.Error("issuing token after registration", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTokenResponse(res))
}

// HandleLogin exchanges credentials for a token.
//
// Malformed input, an unknown email and a wrong password all produce the
// same 401, so the endpoint can't be used to probe for accounts. Only a
// server-side failure answers differently.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeLoginFailed(w)
		return
	}

	res, err := h.auth.Login(r.Context(), in)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthenticated) || errors.Is(err, apperror.ErrValidation) {
			writeLoginFailed(w)
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newTokenResponse(res))
}

func writeLoginFailed(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthenticated",
		Message: LoginFailedMessage,
	})
}

// HandleMe returns the user the bearer token resolved to.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated())
		return
	}
	writeJSON(w, http.StatusOK, user)
}
