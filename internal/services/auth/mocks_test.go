package auth_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// UserRepoMock мок хранилища пользователей.
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) TouchLastAccess(ctx context.Context, userUID string, at time.Time) error {
	args := m.Called(ctx, userUID, at)
	return args.Error(0)
}

func (m *UserRepoMock) UpdateProfile(ctx context.Context, userUID string, upd models.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, userUID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) SetOperator(ctx context.Context, userUID string) (bool, error) {
	args := m.Called(ctx, userUID)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepoMock) SetVerified(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

// RevokerMock мок списка отозванных токенов.
type RevokerMock struct {
	mock.Mock
}

func (m *RevokerMock) RevokeToken(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, jti, ttl)
	return args.Bool(0), args.Error(1)
}

// memoryUsers хранит пользователей в памяти.
type memoryUsers struct {
	mu    sync.Mutex
	byID  map[string]*models.User
	byKey map[string]string
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[string]*models.User{}, byKey: map[string]string{}}
}

func (m *memoryUsers) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, ok := m.byKey[key]; ok {
		return nil, models.ErrDuplicateEmail
	}
	u := *user
	u.UUID = uuid.NewString()
	u.CreatedAt = time.Now()
	m.byID[u.UUID] = &u
	m.byKey[key] = u.UUID
	res := u
	return &res, nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byKey[strings.ToLower(email)]
	if !ok {
		return nil, models.ErrNotFound
	}
	u := *m.byID[id]
	return &u, nil
}

func (m *memoryUsers) GetUserByID(_ context.Context, userUID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userUID]
	if !ok {
		return nil, models.ErrNotFound
	}
	res := *u
	return &res, nil
}

func (m *memoryUsers) TouchLastAccess(_ context.Context, userUID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[userUID]; ok {
		u.LastAccessAt = &at
	}
	return nil
}

func (m *memoryUsers) delete(userUID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[userUID]; ok {
		delete(m.byKey, strings.ToLower(u.Email))
		delete(m.byID, userUID)
	}
}

// memoryRevoker повторяет семантику SETNX.
type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newMemoryRevoker() *memoryRevoker {
	return &memoryRevoker{revoked: map[string]bool{}}
}

func (r *memoryRevoker) RevokeToken(_ context.Context, jti string, _ time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked[jti] {
		return false, nil
	}
	r.revoked[jti] = true
	return true, nil
}
