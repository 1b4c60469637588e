package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sakif/learninfive/internal/apperror"
	"github.com/sakif/learninfive/internal/model"
)

// stubResolver accepts exactly one token.
type stubResolver struct {
	token string
	user  *model.User
	err   error // returned for every call when set
	seen  string
}

func (s *stubResolver) ResolveSession(_ context.Context, token string) (*model.User, error) {
	s.seen = token
	if s.err != nil {
		return nil, s.err
	}
	if token == "" || token != s.token {
		return nil, apperror.Unauthenticated()
	}
	return s.user, nil
}

func protectedHandler(t *testing.T, wantUser *model.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			t.Error("UserFromContext() returned false inside a protected handler")
		}
		if wantUser != nil && u.ID != wantUser.ID {
			t.Errorf("context user ID = %d, want %d", u.ID, wantUser.ID)
		}
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestRequireAuth(t *testing.T) {
	alice := &model.User{ID: 7, Email: "alice@example.com", Username: "alice"}

	tests := []struct {
		name       string
		header     string
		resolver   *stubResolver
		wantStatus int
	}{
		{"valid bearer token", "Bearer good-token", &stubResolver{token: "good-token", user: alice}, http.StatusTeapot},
		{"scheme is case-insensitive", "bearer good-token", &stubResolver{token: "good-token", user: alice}, http.StatusTeapot},
		{"missing header", "", &stubResolver{token: "good-token", user: alice}, http.StatusUnauthorized},
		{"wrong scheme", "Basic good-token", &stubResolver{token: "good-token", user: alice}, http.StatusUnauthorized},
		{"unknown token", "Bearer bad-token", &stubResolver{token: "good-token", user: alice}, http.StatusUnauthorized},
		{"store failure", "Bearer good-token", &stubResolver{err: errors.New("database is locked")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireAuth(tt.resolver)(protectedHandler(t, alice))

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if got := rr.Header().Get("WWW-Authenticate"); got != "Bearer" {
					t.Errorf("WWW-Authenticate = %q, want Bearer", got)
				}
				if !strings.Contains(rr.Body.String(), apperror.UnauthenticatedMessage) {
					t.Errorf("body = %s, want the generic unauthenticated message", rr.Body.String())
				}
			}
			if tt.wantStatus == http.StatusInternalServerError && strings.Contains(rr.Body.String(), "locked") {
				t.Errorf("internal error text leaked: %s", rr.Body.String())
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"BEARER   abc", "abc"},
		{"Bearer", ""},
		{"Token abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := BearerToken(req); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestUserFromContext_Anonymous(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Error("UserFromContext() = true on a bare context")
	}
}
