package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"helpdesk-service/internal/domain/auth"
	xerrors "helpdesk-service/internal/pkg/errors"
)

type fakeUserStore struct {
	mu          sync.Mutex
	nextID      int64
	byID        map[int64]*auth.User
	assignments map[int64][]auth.RoleAssignment
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		nextID:      1,
		byID:        make(map[int64]*auth.User),
		assignments: make(map[int64][]auth.RoleAssignment),
	}
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == strings.ToLower(email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeUserStore) FindByID(_ context.Context, id int64) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) Create(_ context.Context, user *auth.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range f.byID {
		if u.Email == user.Email {
			return xerrors.ErrDuplicateEntry
		}
	}
	user.ID = f.nextID
	f.nextID++
	clone := *user
	f.byID[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) ListAssignments(_ context.Context, userID int64) ([]auth.RoleAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]auth.RoleAssignment(nil), f.assignments[userID]...), nil
}

func (f *fakeUserStore) AssignRole(_ context.Context, userID int64, code string, companyID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments[userID] = append(f.assignments[userID], auth.RoleAssignment{Code: code, CompanyID: companyID})
	return nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*auth.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{nextID: 1, rows: make(map[int64]*auth.RefreshToken)}
}

func (f *fakeTokenStore) Insert(_ context.Context, t *auth.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextID
	f.nextID++
	t.CreatedAt = time.Now()
	clone := *t
	f.rows[t.ID] = &clone
	return nil
}

func (f *fakeTokenStore) FindByHash(_ context.Context, hash string) (*auth.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.TokenHash == hash {
			clone := *row
			return &clone, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeTokenStore) FindByID(_ context.Context, id int64) (*auth.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (f *fakeTokenStore) RevokeIfActive(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.RevokedAt.Valid {
		return false, nil
	}
	row.RevokedAt.Valid = true
	row.RevokedAt.Time = time.Now()
	return true, nil
}

func (f *fakeTokenStore) RevokeAllForUser(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.UserID == userID && !row.RevokedAt.Valid {
			row.RevokedAt.Valid = true
			row.RevokedAt.Time = time.Now()
			n++
		}
	}
	return n, nil
}

func (f *fakeTokenStore) ListActiveByUser(_ context.Context, userID int64) ([]*auth.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var out []*auth.RefreshToken
	for _, row := range f.rows {
		if row.UserID == userID && row.Active(now) {
			clone := *row
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeTokenStore) TouchLastUsed(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[id]; ok {
		row.LastUsedAt = time.Now()
	}
	return nil
}

type fakeBlacklist struct {
	mu      sync.Mutex
	jtis    map[string]bool
	userRev map[int64]time.Time
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{jtis: make(map[string]bool), userRev: make(map[int64]time.Time)}
}

func (f *fakeBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ttl > 0 {
		f.jtis[jti] = true
	}
	return nil
}

func (f *fakeBlacklist) IsTokenBlacklisted(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jtis[jti], nil
}

func (f *fakeBlacklist) MarkUserRevoked(_ context.Context, userID int64, at time.Time, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userRev[userID] = at
	return nil
}

func (f *fakeBlacklist) UserRevokedAt(_ context.Context, userID int64) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.userRev[userID]
	return at, ok, nil
}

type fakeLimiter struct {
	mu       sync.Mutex
	attempts map[string]int64
	max      int64
}

func newFakeLimiter(max int64) *fakeLimiter {
	return &fakeLimiter{attempts: make(map[string]int64), max: max}
}

func (f *fakeLimiter) CheckLoginAttempt(_ context.Context, ip, email string) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ip + "|" + email
	f.attempts[key]++
	remaining := f.max - f.attempts[key]
	if remaining < 0 {
		remaining = 0
	}
	return f.attempts[key] <= f.max, remaining, nil
}

func (f *fakeLimiter) ResetLoginAttempts(_ context.Context, ip, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.attempts, ip+"|"+email)
	return nil
}

type forceLogoutEvent struct {
	userID    int64
	sessionID string
	reason    string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []forceLogoutEvent
}

func (f *fakeNotifier) ForceLogout(userID int64, sessionID string, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, forceLogoutEvent{userID, sessionID, reason})
}
