package auth

// WHY BCRYPT?
// bcrypt is a password hashing function specifically designed to be slow.
// That slowness is a security feature: it makes brute-force attacks expensive.
//
// bcrypt automatically:
//   - Generates a random salt (so two users with the same password get different hashes)
//   - Embeds the salt in the output hash (no separate salt column needed)
//   - Controls the work factor via "cost" (higher = slower = harder to crack)
//
// Hash format (the full output of bcrypt.GenerateFromPassword):
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 rounds → 2^12 = 4096 iterations)
//	 version

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
//
// COST TUNING RULE OF THUMB:
// Set cost so that hashing takes ~200–300ms on your production hardware.
// Too low → easy to crack. Too high → login is sluggish and your server
// spends all its time on bcrypt during traffic spikes.
const DefaultCost = 12

// MaxPasswordBytes is bcrypt's input limit. Longer inputs would be silently
// truncated by the algorithm, so Hash refuses them.
const MaxPasswordBytes = 72

// dummyPassword is hashed once per PasswordService and compared against when
// the account being logged into doesn't exist. See VerifyDummy.
const dummyPassword = "learninfive-timing-equalizer"

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected
// in tests. Using cost 4 makes tests run much faster without changing
// the logic being tested.
type PasswordService struct {
	cost    int
	compare func(hashed, plaintext []byte) error

	dummyOnce sync.Once
	dummyHash []byte
}

// NewPasswordService creates a PasswordService with the given cost. A cost
// outside bcrypt's accepted range falls back to DefaultCost.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordService{cost: cost, compare: bcrypt.CompareHashAndPassword}
}

// Cost reports the work factor new hashes are created with.
func (p *PasswordService) Cost() int {
	return p.cost
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is a self-contained string like:
//
//	$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy
//
// Store this string directly in the database. It includes the salt and
// cost, and bcrypt.CompareHashAndPassword knows how to decode it.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored bcrypt hash.
//
// It never returns an error: a malformed hash, an empty password and a
// mismatch all come back as false. Callers only ever need the yes/no.
//
// TIMING SAFETY:
// bcrypt.CompareHashAndPassword recomputes the hash with the embedded salt
// and compares in constant time. Inputs that can't reach that comparison
// (empty password, empty or malformed hash) run VerifyDummy instead, so
// every false answer costs one full bcrypt round.
func (p *PasswordService) Verify(hash, plaintext string) bool {
	if plaintext == "" || hash == "" {
		return p.VerifyDummy(plaintext)
	}
	err := p.compare([]byte(hash), []byte(plaintext))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		p.VerifyDummy(plaintext)
	}
	return false
}

// VerifyDummy burns the same amount of CPU as a real Verify and always
// returns false. The authenticator calls it when the email is unknown, so
// "no such user" and "wrong password" take the same time.
//
// The dummy hash is built lazily with the service's own cost, keeping the
// two paths in the same latency class.
func (p *PasswordService) VerifyDummy(plaintext string) bool {
	p.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), p.cost)
		if err == nil {
			p.dummyHash = h
		}
	})
	if p.dummyHash != nil {
		_ = p.compare(p.dummyHash, []byte(plaintext))
	}
	return false
}
