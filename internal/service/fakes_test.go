package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sakif/learninfive/internal/apperror"
	"github.com/sakif/learninfive/internal/auth"
	"github.com/sakif/learninfive/internal/metrics"
	"github.com/sakif/learninfive/internal/model"
	"github.com/sakif/learninfive/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// In-memory stand-ins for the repository interfaces. They apply the same
// uniqueness and ownership rules as the SQL stores so the service tests
// exercise real behaviour, and each has error fields for simulating a
// failing database.

type fakeUserRepo struct {
	mu     sync.Mutex
	byID   map[int64]*model.User
	nextID int64

	createErr error
	getErr    error
	// createHook runs inside Create before the uniqueness check.
	createHook func()
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[int64]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if f.createHook != nil {
		f.createHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.byID {
		if u.Email == user.Email {
			return repository.EmailTaken()
		}
		if u.Username == user.Username {
			return repository.UsernameTaken()
		}
	}

	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	stored := *user
	f.byID[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Username == username })
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return apperror.NotFound("user")
	}
	delete(f.byID, id)
	return nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []model.HistoryEntry
	nextID  int64
	clock   time.Time

	createErr error
	listErr   error
	deleteErr error
	lastOpts  repository.ListOptions
}

var _ repository.HistoryRepository = (*fakeHistoryRepo)(nil)

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{clock: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeHistoryRepo) Create(_ context.Context, entry *model.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	f.clock = f.clock.Add(time.Second)
	entry.ID = f.nextID
	entry.CreatedAt = f.clock
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListByOwner(_ context.Context, ownerID int64, opts repository.ListOptions) ([]model.HistoryEntry, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOpts = opts
	if f.listErr != nil {
		return nil, 0, f.listErr
	}

	var owned []model.HistoryEntry
	for _, e := range f.entries {
		if e.UserID == ownerID {
			owned = append(owned, e)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		}
		return owned[i].ID > owned[j].ID
	})

	total := len(owned)
	if opts.Offset >= total {
		return []model.HistoryEntry{}, total, nil
	}
	owned = owned[opts.Offset:]
	if opts.Limit < len(owned) {
		owned = owned[:opts.Limit]
	}
	return owned, total, nil
}

func (f *fakeHistoryRepo) GetOwned(_ context.Context, ownerID, id int64) (*model.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ID == id && e.UserID == ownerID {
			out := e
			return &out, nil
		}
	}
	return nil, apperror.NotFound("History entry")
}

func (f *fakeHistoryRepo) DeleteOwned(_ context.Context, ownerID, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	for i, e := range f.entries {
		if e.ID == id && e.UserID == ownerID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// =========================================================================
// HELPERS
// =========================================================================

const testSecret = "test-secret-at-least-16-chars!!"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClock is a settable time source for the token service.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

type authFixture struct {
	svc     *AuthService
	users   *fakeUserRepo
	tokens  *auth.TokenService
	clock   *testClock
	metrics *metrics.Metrics
}

// newTestAuthService wires an AuthService over a fake repo with bcrypt at
// its minimum cost and a controllable token clock.
func newTestAuthService(t *testing.T) *authFixture {
	t.Helper()

	clock := &testClock{t: time.Now()}
	tokens, err := auth.NewTokenService(testSecret, auth.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	users := newFakeUserRepo()
	m := metrics.New(prometheus.NewRegistry())
	svc := NewAuthService(users, tokens, auth.NewPasswordService(4), m, discardLogger())

	return &authFixture{svc: svc, users: users, tokens: tokens, clock: clock, metrics: m}
}

func newTestHistoryService(t *testing.T) (*HistoryService, *fakeHistoryRepo) {
	t.Helper()
	repo := newFakeHistoryRepo()
	return NewHistoryService(repo, nil, discardLogger()), repo
}
