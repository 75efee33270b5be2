package otp

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
	"github.com/stretchr/testify/mock"
)

// memVerifications is an in-memory verificationStore with the same
// retirement semantics as the real repositories.
type memVerifications struct {
	mu      sync.Mutex
	rows    []*domain.Verification
	failErr error

	// lagged, when set, is returned by LatestActive as a lagging index would.
	lagged *domain.Verification
}

func (m *memVerifications) Insert(_ context.Context, v *domain.Verification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	cp := *v
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memVerifications) CountSince(_ context.Context, email string, purpose domain.Purpose, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return 0, m.failErr
	}
	n := 0
	for _, r := range m.rows {
		if r.Email == email && r.Purpose == purpose && !r.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memVerifications) LatestActive(_ context.Context, email string, purpose domain.Purpose) (*domain.Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lagged != nil {
		cp := *m.lagged
		return &cp, nil
	}
	var active []*domain.Verification
	for _, r := range m.rows {
		if r.Email == email && r.Purpose == purpose && !r.Verified {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		return nil, domain.ErrNotFound
	}
	sort.Slice(active, func(i, j int) bool { return active[i].CreatedAt.After(active[j].CreatedAt) })
	cp := *active[0]
	return &cp, nil
}

func (m *memVerifications) RetireActive(_ context.Context, email string, purpose domain.Purpose, reason domain.RetireReason, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == email && r.Purpose == purpose && !r.Verified {
			retireRow(r, reason, at)
		}
	}
	return nil
}

func (m *memVerifications) IncrementAttempts(_ context.Context, verificationID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.find(verificationID)
	if r == nil || r.Verified {
		return 0, domain.ErrNotFound
	}
	r.Attempts++
	return r.Attempts, nil
}

func (m *memVerifications) Retire(_ context.Context, verificationID string, reason domain.RetireReason, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.find(verificationID)
	if r == nil || r.Verified {
		return domain.ErrNotFound
	}
	retireRow(r, reason, at)
	return nil
}

func (m *memVerifications) find(verificationID string) *domain.Verification {
	for _, r := range m.rows {
		if r.VerificationID == verificationID {
			return r
		}
	}
	return nil
}

func (m *memVerifications) active(email string) []*domain.Verification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Verification
	for _, r := range m.rows {
		if r.Email == email && !r.Verified {
			out = append(out, r)
		}
	}
	return out
}

func retireRow(r *domain.Verification, reason domain.RetireReason, at time.Time) {
	r.Verified = true
	r.RetiredReason = reason
	t := at
	r.RetiredAt = &t
}

type memUsers struct {
	mu        sync.Mutex
	byEmail   map[string]*domain.User
	createErr error
}

func newMemUsers() *memUsers { return &memUsers{byEmail: map[string]*domain.User{}} }

func (m *memUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return domain.ErrConflict
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.UserID == userID {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return domain.ErrNotFound
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// clock is a manually advanced time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var errStoreDown = errors.New("store unavailable")
