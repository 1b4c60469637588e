package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/learninfive/internal/apperror"
	"github.com/sakif/learninfive/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// context.WithValue uses any as the key type. A package-private key type
// means only this package can store or read the user value.
type contextKey string

const userKey contextKey = "user"

// SessionResolver turns a presented bearer token into the user it belongs
// to. Implementations return an error matching apperror.ErrUnauthenticated
// for every kind of bad session; any other error is an internal failure.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*model.User, error)
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads "Authorization: Bearer <token>", resolves it through the
// SessionResolver and stores the resulting *model.User in the request
// context. Handlers behind it read the user with UserFromContext; this is
// the only place identity gets established for a request.
//
// MIDDLEWARE PATTERN IN GO:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... before ...
//	        next.ServeHTTP(w, r)
//	        // ... after ...
//	    })
//	}
func RequireAuth(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.ResolveSession(r.Context(), BearerToken(r))
			if err != nil {
				writeAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// BearerToken returns the credential from the Authorization header, or ""
// when the header is absent or uses another scheme. The scheme name is
// matched case-insensitively.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext retrieves the authenticated user from the request context.
//
// Returns (nil, false) when no RequireAuth ran for this request.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// authErrorBody mirrors handler.ErrorResponse. It's duplicated rather than
// imported because handler already depends on this package.
type authErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeAuthError sends 401 for session failures and a generic 500 for
// anything the resolver couldn't classify (e.g. the store is down).
func writeAuthError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if !errors.Is(err, apperror.ErrUnauthenticated) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(authErrorBody{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(authErrorBody{
		Error:   "unauthenticated",
		Message: apperror.UnauthenticatedMessage,
	})
}
