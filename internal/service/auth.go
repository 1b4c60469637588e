// Package service holds the business rules between the HTTP handlers and
// the stores:
//
//	Handler (HTTP) → Service (validation, rules) → Repository (SQL)
//
// Services take repository interfaces, never a concrete database, and
// return apperror values that the handler layer maps to status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/learninfive/internal/apperror"
	"github.com/sakif/learninfive/internal/auth"
	"github.com/sakif/learninfive/internal/metrics"
	"github.com/sakif/learninfive/internal/model"
	"github.com/sakif/learninfive/internal/repository"
)

// TokenTypeBearer is the token_type reported alongside every access token.
const TokenTypeBearer = "bearer"

// Operation labels for the auth metrics.
const (
	opRegister = "register"
	opLogin    = "login"
	opResolve  = "resolve"
)

// RegisterInput is what a new account is created from. The json tags double
// as the field names reported in validation errors.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult bundles a user with a freshly issued access token.
type AuthResult struct {
	User        *model.User
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// AuthService owns registration, credential checks and session resolution.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → account records
//   - tokens     *auth.TokenService         → issue/verify bearer tokens
//   - passwords  *auth.PasswordService      → bcrypt hash/verify
//   - metrics    *metrics.Metrics           → may be nil
//   - logger     *slog.Logger
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		metrics:   m,
		logger:    logger,
	}
}

// NormalizeEmail is the canonical form used for storage, lookup and as the
// token subject. Emails are unique case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the input, checks both unique fields and creates the
// account.
//
// The pre-checks exist to report WHICH field collides. They are not what
// keeps two racing registrations apart: the store's UNIQUE constraints do
// that, and Create reports the same conflicts when it loses the race.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	if err := validateInput(in); err != nil {
		s.metrics.AuthAttempt(opRegister, metrics.OutcomeInvalid)
		return nil, err
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		s.metrics.AuthAttempt(opRegister, metrics.OutcomeInvalid)
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}

	if err := s.ensureAvailable(ctx, in.Email, in.Username); err != nil {
		return nil, s.registerFailed(err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, s.registerFailed(fmt.Errorf("service/auth: hashing password: %w", err))
	}

	user := &model.User{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.registerFailed(fmt.Errorf("service/auth: creating user: %w", err))
	}

	s.metrics.AuthAttempt(opRegister, metrics.OutcomeOK)
	s.logger.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return repository.EmailTaken()
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("service/auth: checking email: %w", err)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return repository.UsernameTaken()
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("service/auth: checking username: %w", err)
	}
	return nil
}

func (s *AuthService) registerFailed(err error) error {
	if errors.Is(err, apperror.ErrConflict) {
		s.metrics.AuthAttempt(opRegister, metrics.OutcomeConflict)
		return err
	}
	s.metrics.AuthAttempt(opRegister, metrics.OutcomeError)
	s.logger.Error("registration failed", slog.String("error", err.Error()))
	return err
}

// Authenticate checks an email/password pair.
//
// An unknown email and a wrong password both return apperror.Unauthenticated.
// For the unknown email a throwaway bcrypt comparison still runs, so the two
// cases also take about the same time. Only the log line says which it was.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.VerifyDummy(password)
			s.logger.Info("authentication rejected", slog.String("reason", "unknown_email"))
			return nil, apperror.Unauthenticated()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if !s.passwords.Verify(user.PasswordHash, password) {
		s.logger.Info("authentication rejected",
			slog.String("reason", "wrong_password"),
			slog.Int64("user_id", user.ID),
		)
		return nil, apperror.Unauthenticated()
	}
	return user, nil
}

// Login authenticates and issues an access token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = NormalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		s.metrics.AuthAttempt(opLogin, metrics.OutcomeInvalid)
		return nil, err
	}

	user, err := s.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthenticated) {
			s.metrics.AuthAttempt(opLogin, metrics.OutcomeRejected)
			return nil, err
		}
		s.metrics.AuthAttempt(opLogin, metrics.OutcomeError)
		s.logger.Error("login failed", slog.String("error", err.Error()))
		return nil, err
	}

	result, err := s.IssueToken(user)
	if err != nil {
		s.metrics.AuthAttempt(opLogin, metrics.OutcomeError)
		return nil, err
	}

	s.metrics.AuthAttempt(opLogin, metrics.OutcomeOK)
	s.logger.Info("user logged in", slog.Int64("user_id", user.ID))
	return result, nil
}

// IssueToken signs a new access token whose subject is the user's email.
func (s *AuthService) IssueToken(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Generate(user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %d: %w", user.ID, err)
	}
	return &AuthResult{
		User:        user,
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

// ResolveSession turns a presented bearer token into the user it names.
//
// Every protected route goes through here. An absent token, a token that
// fails verification, and a valid token for a user who no longer exists
// all produce the same apperror.Unauthenticated. The token itself is never
// logged.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, s.sessionRejected(string(auth.ReasonMissing))
	}

	subject, err := s.tokens.Validate(token)
	if err != nil {
		return nil, s.sessionRejected(string(auth.RejectionReason(err)))
	}

	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, s.sessionRejected("user_gone")
		}
		s.metrics.AuthAttempt(opResolve, metrics.OutcomeError)
		s.logger.Error("resolving session failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/auth: resolving session: %w", err)
	}

	s.metrics.AuthAttempt(opResolve, metrics.OutcomeOK)
	return user, nil
}

func (s *AuthService) sessionRejected(reason string) error {
	s.metrics.AuthAttempt(opResolve, metrics.OutcomeRejected)
	s.logger.Info("session rejected", slog.String("reason", reason))
	return apperror.Unauthenticated()
}
