// Package guard определяет текущего пользователя по access-токену и проверяет его роль.
// Решения принимаются по актуальной записи пользователя, токен подтверждает только личность.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/tour-reservations/internal/lib/jwt"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// TokenVerifier проверяет токен заданного назначения.
type TokenVerifier interface {
	VerifyKind(tokenStr string, kind jwt.Kind) (*jwt.CustomClaims, error)
}

// UserReader читает пользователя по UID.
type UserReader interface {
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
}

// Guard проверяет access-токены и возвращает актуальную запись пользователя из хранилища.
type Guard struct {
	verifier TokenVerifier
	users    UserReader
}

// New создаёт Guard.
func New(verifier TokenVerifier, users UserReader) *Guard {
	return &Guard{verifier: verifier, users: users}
}

// CurrentUser возвращает пользователя по access-токену.
// Любая проблема с токеном или отсутствие пользователя дают models.ErrUnauthorized.
func (g *Guard) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	const op = "guard.CurrentUser"
	if token == "" {
		return nil, fmt.Errorf("%s: %w: missing token", op, models.ErrUnauthorized)
	}
	claims, err := g.verifier.VerifyKind(token, jwt.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrUnauthorized, err)
	}
	user, err := g.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: user no longer exists", op, models.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// OptionalUser работает как CurrentUser, но для пустого токена возвращает nil без ошибки.
func (g *Guard) OptionalUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	return g.CurrentUser(ctx, token)
}

// RequireVerifiedTourist пропускает только туристов.
func RequireVerifiedTourist(user *models.User) error {
	if user == nil {
		return fmt.Errorf("guard.RequireVerifiedTourist: %w", models.ErrUnauthorized)
	}
	if user.IsOperator {
		return fmt.Errorf("guard.RequireVerifiedTourist: %w: tourists only", models.ErrForbidden)
	}
	return nil
}

// RequireVerifiedOperator пропускает только проверенных операторов.
func RequireVerifiedOperator(user *models.User) error {
	if user == nil {
		return fmt.Errorf("guard.RequireVerifiedOperator: %w", models.ErrUnauthorized)
	}
	if !user.IsOperator || !user.IsVerified {
		return fmt.Errorf("guard.RequireVerifiedOperator: %w: verified operators only", models.ErrForbidden)
	}
	return nil
}
