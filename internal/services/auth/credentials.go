// Package auth содержит бизнес-логику учётных записей: регистрацию и проверку
// паролей, выпуск и обновление токенов, изменение профиля и роли пользователя.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/tour-reservations/internal/lib/password"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// UserRepository описывает контракт хранилища пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
	TouchLastAccess(ctx context.Context, userUID string, at time.Time) error
}

// PasswordHasher вычисляет и сравнивает хэши паролей.
type PasswordHasher interface {
	GetHash(password string) (string, error)
	CompareHash(originalHash, externalPassword string) error
	CompareDummy(externalPassword string) error
}

// RegisterInput содержит данные регистрации.
type RegisterInput struct {
	Email      string
	Password   string
	Profile    models.Profile
	IsOperator bool
}

// CredentialStore регистрирует пользователей и проверяет их пароли.
type CredentialStore struct {
	users  UserRepository
	hasher PasswordHasher
	log    *slog.Logger
	now    func() time.Time
}

// NewCredentialStore создаёт CredentialStore.
func NewCredentialStore(users UserRepository, hasher PasswordHasher, log *slog.Logger) *CredentialStore {
	return &CredentialStore{
		users:  users,
		hasher: hasher,
		log:    log,
		now:    time.Now,
	}
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создаёт пользователя с bcrypt-хэшем пароля. Новый пользователь не проверен.
func (s *CredentialStore) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "auth.Register"
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%s: %w: email and password are required", op, models.ErrValidation)
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s: %w", op, models.ErrDuplicateEmail)
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := s.hasher.GetHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, &models.User{
		Email:        email,
		PasswordHash: hashed,
		IsOperator:   in.IsOperator,
		IsVerified:   false,
		Profile:      in.Profile,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("user_uid", user.UUID), slog.String("role", user.Role()))
	return user, nil
}

// Verify возвращает пользователя, если пароль совпал. Для неизвестного email и
// неверного пароля ошибка одна и та же: models.ErrAuthenticationFailed.
func (s *CredentialStore) Verify(ctx context.Context, email, rawPassword string) (*models.User, error) {
	const op = "auth.Verify"
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		_ = s.hasher.CompareDummy(rawPassword)
		s.log.Info("login attempt for unknown email")
		return nil, fmt.Errorf("%s: %w", op, models.ErrAuthenticationFailed)
	}

	if err := s.hasher.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.log.Info("login attempt with wrong password", slog.String("user_uid", user.UUID))
			return nil, fmt.Errorf("%s: %w", op, models.ErrAuthenticationFailed)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	if err := s.users.TouchLastAccess(ctx, user.UUID, now); err != nil {
		s.log.Warn("failed to update last access", slog.String("user_uid", user.UUID), sl.Err(err))
	} else {
		user.LastAccessAt = &now
	}
	return user, nil
}
