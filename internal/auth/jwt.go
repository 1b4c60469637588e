// Package auth provides password hashing, bearer token issuance/validation
// and the HTTP middleware that gates protected routes.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. Client POSTs email + password to /api/auth/login
//  2. The auth service verifies the password and issues a JWT access token
//  3. Client sends it back on every protected call: Authorization: Bearer <jwt>
//  4. RequireAuth resolves the token to a user and stores it in the request context
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"sub":"alice@example.com","exp":...,"iat":...,"jti":"..."}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The signature covers subject and expiry, so neither can be edited without
// the secret. There is no revocation list: expiry is the only way a token
// stops working.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const (
	// DefaultTokenTTL is the access token lifetime when none is configured.
	DefaultTokenTTL = 30 * time.Minute

	issuer = "learninfive"

	minSecretLength = 16
)

// ErrTokenRejected is the only failure Validate reports to callers.
// Use RejectionReason to get the specific cause for logging.
var ErrTokenRejected = errors.New("auth: token rejected")

// RejectReason names why a token failed validation. It is meant for logs
// and metrics only, never for responses.
type RejectReason string

const (
	ReasonMissing       RejectReason = "missing"
	ReasonMalformed     RejectReason = "malformed"
	ReasonSignature     RejectReason = "signature"
	ReasonExpired       RejectReason = "expired"
	ReasonInvalidClaims RejectReason = "invalid_claims"
	ReasonNoSubject     RejectReason = "no_subject"
)

// rejectionError matches ErrTokenRejected under errors.Is and prints the
// same text whatever the cause, so it is safe to bubble up unmodified.
type rejectionError struct {
	reason RejectReason
	cause  error
}

func (e *rejectionError) Error() string        { return ErrTokenRejected.Error() }
func (e *rejectionError) Is(target error) bool { return target == ErrTokenRejected }
func (e *rejectionError) Unwrap() error        { return e.cause }

// RejectionReason extracts the cause from an error returned by Validate.
// It returns "" for errors that aren't token rejections.
func RejectionReason(err error) RejectReason {
	var re *rejectionError
	if errors.As(err, &re) {
		return re.reason
	}
	return ""
}

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The secret is
// loaded once at startup and never changes; TokenService is safe for
// concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithTTL sets the lifetime used by Generate. Non-positive values are ignored.
func WithTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now for both issuing and validating. Tests use it
// to step past an expiry without sleeping.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: SECRET_KEY=$(openssl rand -hex 32)
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("auth: token secret must be at least %d characters", minSecretLength)
	}
	s := &TokenService{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL reports the lifetime Generate uses.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload. "sub" carries the user's canonical email.
type claims struct {
	jwt.RegisteredClaims
}

// Generate issues a token for subject with the configured lifetime.
func (s *TokenService) Generate(subject string) (string, time.Time, error) {
	return s.GenerateWithDuration(subject, s.ttl)
}

// GenerateWithDuration issues a token for subject that expires after d.
//
// Every token carries a fresh xid in "jti". exp and iat only have one-second
// resolution, so without it two logins in the same second would produce
// byte-identical tokens.
//
// Signing algorithm: HS256 (HMAC-SHA256), symmetric: the same key signs
// and verifies.
func (s *TokenService) GenerateWithDuration(subject string, d time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("auth: token subject must not be empty")
	}
	if d <= 0 {
		return "", time.Time{}, fmt.Errorf("auth: token lifetime must be positive, got %s", d)
	}

	now := s.now()
	expiresAt := now.Add(d)

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, c.ExpiresAt.Time, nil
}

// Validate parses and verifies a JWT string and returns its subject.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired, judged by this service's clock
//   - Issuer matches (prevents tokens minted for other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
//
// Every failure returns an error matching ErrTokenRejected.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", &rejectionError{reason: ReasonMissing}
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", &rejectionError{reason: classify(err), cause: err}
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", &rejectionError{reason: ReasonInvalidClaims}
	}
	if c.Subject == "" {
		return "", &rejectionError{reason: ReasonNoSubject}
	}

	return c.Subject, nil
}

// classify maps jwt library errors onto a RejectReason.
func classify(err error) RejectReason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	default:
		return ReasonInvalidClaims
	}
}
